package varpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phpnarrow/internal/ttype"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{"$a", []string{"$a"}},
		{"$a[0]->b[2]", []string{"$a", "[", "0", "]", "->", "b", "[", "2", "]"}},
		{"$a['x]y']", []string{"$a", "[", "'x]y'", "]"}},
		{`$a["->"]`, []string{"$a", "[", `"->"`, "]"}},
		{"$a[$b[0]]['k']", []string{"$a", "[", "$b[0]", "]", "[", "'k'", "]"}},
		{"Foo::$cache[1]", []string{"Foo", "::$", "cache", "[", "1", "]"}},
		{`$a['it\'s']`, []string{"$a", "[", `'it\'s'`, "]"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Tokenize(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, in := range []string{"$a[0", "$a]", "$a['x]", "$a'x'"} {
		t.Run(in, func(t *testing.T) {
			_, err := Tokenize(in)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("$a['0']->b[$i]::$c")
	require.NoError(t, err)

	assert.Equal(t, "$a", p.Root)
	require.Len(t, p.Segments, 4)
	assert.Equal(t, Segment{Kind: Index, Key: ttype.IntKey(0)}, p.Segments[0])
	assert.Equal(t, Segment{Kind: Property, Name: "b"}, p.Segments[1])
	assert.Equal(t, Segment{Kind: Index, Expr: "$i"}, p.Segments[2])
	assert.Equal(t, Segment{Kind: StaticProperty, Name: "c"}, p.Segments[3])
	assert.Equal(t, "$a[0]->b[$i]::$c", p.String())
}

func TestParseCanonicalisesKeys(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{`$a["x"]`, "$a['x']"},
		{"$a['08']", "$a['08']"},
		{"$a['8']", "$a[8]"},
		{"$a[-1]", "$a[-1]"},
		{`$a['it\'s']`, `$a['it\'s']`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, MustParse(tt.in).String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "[0]", "$a[]", "$a->", "$a->[0]", "$a[0]b"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestParentAndPrefixes(t *testing.T) {
	p := MustParse("$a['x'][0]->y")

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, "$a['x'][0]", parent.String())

	var got []string
	for _, q := range p.Prefixes() {
		got = append(got, q.String())
	}
	assert.Equal(t, []string{"$a", "$a['x']", "$a['x'][0]"}, got)

	_, ok = Var("$a").Parent()
	assert.False(t, ok)
}

func TestParentDoesNotAlias(t *testing.T) {
	p := MustParse("$a[0][1]")
	parent, _ := p.Parent()
	child := parent.ChildIndex(ttype.IntKey(9))

	assert.Equal(t, "$a[0][9]", child.String())
	assert.Equal(t, "$a[0][1]", p.String())
}

func TestPredicates(t *testing.T) {
	p := MustParse("$a->b['c']")
	assert.True(t, p.HasArrayIndex())
	assert.False(t, MustParse("$a->b").HasArrayIndex())

	assert.True(t, p.HasPrefix(MustParse("$a->b")))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, p.HasPrefix(MustParse("$a->c")))
	assert.False(t, p.HasPrefix(MustParse("$b")))

	last, ok := p.Last()
	require.True(t, ok)
	assert.True(t, last.IsLiteralIndex())
	assert.Equal(t, "$x->b['c']", p.WithRoot("$x").String())
	assert.True(t, Path{}.IsZero())
	assert.Equal(t, 2, p.Depth())
}
