package issue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected Severity
	}{
		{ImpossibleTypeComparison, SeverityWarning},
		{RedundantTypeComparison, SeverityInfo},
		{InvalidArrayOffset, SeverityError},
		{DuplicateArrayKey, SeverityError},
		{Kind("SomethingNew"), SeverityError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.Severity())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("RedundantIssetCheck")
	assert.True(t, ok)
	assert.Equal(t, RedundantIssetCheck, k)

	_, ok = ParseKind("redundantissetcheck")
	assert.False(t, ok)

	assert.Contains(t, Kinds(), MixedArrayAccess)
}

func TestFingerprintStable(t *testing.T) {
	a := New(ImpossibleTypeComparison, Span{File: "a.php", Start: 1, End: 5}, "Type int for $x is never null")
	b := New(ImpossibleTypeComparison, Span{File: "a.php", Start: 1, End: 5}, "Type int for $x is never null",
		Annotation{Message: "declared here"})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}

func TestFingerprintDistinguishesFields(t *testing.T) {
	base := New(RedundantTypeComparison, Span{File: "a.php", Start: 1, End: 5}, "m")

	other := []Issue{
		New(ImpossibleTypeComparison, base.Span, "m"),
		New(RedundantTypeComparison, Span{File: "b.php", Start: 1, End: 5}, "m"),
		New(RedundantTypeComparison, Span{File: "a.php", Start: 2, End: 5}, "m"),
		New(RedundantTypeComparison, base.Span, "n"),
	}
	for _, o := range other {
		assert.NotEqual(t, base.Fingerprint(), o.Fingerprint(), o.String())
	}
}

func TestFingerprintNormalisesUnicode(t *testing.T) {
	composed := New(RedundantKeyCheck, Span{}, "caf\u00e9")
	decomposed := New(RedundantKeyCheck, Span{}, "cafe\u0301")

	assert.Equal(t, composed.Fingerprint(), decomposed.Fingerprint())
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Report(Newf(DuplicateArrayKey, Span{}, "Key %s duplicated", "0"))
	c.Report(New(RedundantIssetCheck, Span{}, "always set"))
	c.Report(New(DuplicateArrayKey, Span{}, "again"))

	require.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Count(DuplicateArrayKey))
	assert.Equal(t, []Kind{DuplicateArrayKey, RedundantIssetCheck, DuplicateArrayKey}, c.Kinds())
	assert.Equal(t, "Key 0 duplicated", c.Issues()[0].Message)
	assert.Equal(t, "2 errors, 0 warnings, 1 infos", c.Summary())

	c.Reset()
	assert.Zero(t, c.Len())
}

func TestCollectorSummaryGroupsThousands(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 1200; i++ {
		c.Report(New(InvalidArrayOffset, Span{}, "x"))
	}
	assert.Equal(t, "1,200 errors, 0 warnings, 0 infos", c.Summary())
}

func TestCollectorConcurrentReports(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Report(New(MixedArrayAccess, Span{}, "m"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, c.Len())
}

func TestReporterFunc(t *testing.T) {
	var got []Kind
	r := ReporterFunc(func(i Issue) { got = append(got, i.Kind) })
	r.Report(New(NullArrayAccess, Span{}, "null"))
	Discard.Report(New(NullArrayAccess, Span{}, "dropped"))

	assert.Equal(t, []Kind{NullArrayAccess}, got)
}
