package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
	"github.com/roach88/phpnarrow/internal/varpath"
)

func scopeOf(types map[string]string) *Scope {
	s := NewScope()
	for path, spec := range types {
		s.Set(varpath.MustParse(path), p(spec))
	}
	return s
}

func typeAt(t *testing.T, s *Scope, path string) string {
	t.Helper()
	u, ok := s.Get(varpath.MustParse(path))
	require.True(t, ok, "no type at %s", path)
	return u.ID()
}

func clause(path string, groups ...[]assertion.Assertion) Clause {
	return Clause{Path: varpath.MustParse(path), Groups: groups}
}

func TestKeyedIssetNarrowsAncestors(t *testing.T) {
	r, c := newReconciler()
	s := scopeOf(map[string]string{
		"$a": "{kind: array, items: [{key: x, type: {kind: union, of: [int, null]}, optional: true}]}",
	})

	changed := r.ReconcileKeyedTypes(s, nil, []Clause{
		clause("$a['x']", []assertion.Assertion{assertion.Of(assertion.IsIsset)}),
	}, KeyedOptions{CanReportIssues: true})

	assert.Equal(t, []string{"$a", "$a['x']"}, changed)
	assert.Equal(t, "array{'x': int}", typeAt(t, s, "$a"))
	assert.Equal(t, "int", typeAt(t, s, "$a['x']"))
	assert.Zero(t, c.Len())
}

func TestKeyedPropagatesToParent(t *testing.T) {
	r, _ := newReconciler()
	s := scopeOf(map[string]string{
		"$a":      "{kind: array, items: [{key: x, type: {kind: union, of: [int, string]}}]}",
		"$a['x']": "{kind: union, of: [int, string]}",
	})

	changed := r.ReconcileKeyedTypes(s, nil, []Clause{
		clause("$a['x']", []assertion.Assertion{assertion.Type(ttype.TInt{})}),
	}, KeyedOptions{})

	assert.Equal(t, []string{"$a", "$a['x']"}, changed)
	assert.Equal(t, "int", typeAt(t, s, "$a['x']"))
	assert.Equal(t, "array{'x': int}", typeAt(t, s, "$a"))
}

func TestKeyedFansOutToAliases(t *testing.T) {
	r, _ := newReconciler()
	refs := NewRefGraph(map[string]string{"$b": "$a"})
	s := scopeOf(map[string]string{
		"$a": "{kind: array, items: [{key: k, type: string, optional: true}]}",
		"$b": "{kind: array, items: [{key: k, type: string, optional: true}]}",
	})

	changed := r.ReconcileKeyedTypes(s, refs, []Clause{
		clause("$a['k']", []assertion.Assertion{assertion.Of(assertion.Truthy)}),
	}, KeyedOptions{})

	assert.Equal(t, []string{"$a", "$a['k']", "$b", "$b['k']"}, changed)
	assert.Equal(t, "truthy-string", typeAt(t, s, "$b['k']"))
	assert.Equal(t, "array{'k': truthy-string}", typeAt(t, s, "$a"))
	assert.Equal(t, "array{'k': truthy-string}", typeAt(t, s, "$b"))
}

func TestKeyedOrGroup(t *testing.T) {
	r, c := newReconciler()
	s := scopeOf(map[string]string{"$x": "{kind: union, of: [int, string, null]}"})

	changed := r.ReconcileKeyedTypes(s, nil, []Clause{
		clause("$x", []assertion.Assertion{assertion.Type(ttype.TInt{}), assertion.Type(ttype.TString{})}),
	}, KeyedOptions{CanReportIssues: true})

	assert.Equal(t, []string{"$x"}, changed)
	assert.Equal(t, "int|string", typeAt(t, s, "$x"))
	assert.Zero(t, c.Len())
}

func TestKeyedReportsButKeepsUnchanged(t *testing.T) {
	r, c := newReconciler()
	s := scopeOf(map[string]string{"$x": "int"})

	changed := r.ReconcileKeyedTypes(s, nil, []Clause{
		clause("$x", []assertion.Assertion{assertion.NotType(ttype.TNull{})}),
	}, KeyedOptions{CanReportIssues: true})

	assert.Empty(t, changed)
	assert.Equal(t, []issue.Kind{issue.RedundantNonnullTypeComparison}, c.Kinds())
}

func TestKeyedAndGroupsApplyInOrder(t *testing.T) {
	r, _ := newReconciler()
	s := scopeOf(map[string]string{"$x": "{kind: union, of: [int, string, null]}"})

	r.ReconcileKeyedTypes(s, nil, []Clause{
		clause("$x",
			[]assertion.Assertion{assertion.NotType(ttype.TNull{})},
			[]assertion.Assertion{assertion.NotType(ttype.TString{})}),
	}, KeyedOptions{})

	assert.Equal(t, "int", typeAt(t, s, "$x"))
}

func TestScope(t *testing.T) {
	s := scopeOf(map[string]string{
		"$b":         "int",
		"$a":         "array",
		"$a['x']":    "string",
		"$a['x'][0]": "string",
	})

	var paths []string
	for _, q := range s.Paths() {
		paths = append(paths, q.String())
	}
	assert.Equal(t, []string{"$a", "$a['x']", "$a['x'][0]", "$b"}, paths)

	c := s.Clone()
	s.Delete(varpath.MustParse("$a['x']"))
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(varpath.MustParse("$a['x'][0]"))
	assert.False(t, ok)
	assert.Equal(t, 4, c.Len())

	u, ok := s.Get(varpath.MustParse(`$a`))
	require.True(t, ok)
	assert.Equal(t, "array<array-key, mixed>", u.ID())
}

func TestScopeCanonicalKeys(t *testing.T) {
	s := NewScope()
	s.Set(varpath.MustParse(`$a["k"]`), ttype.Int())
	_, ok := s.Get(varpath.MustParse("$a['k']"))
	assert.True(t, ok)
}

func TestRefGraph(t *testing.T) {
	g := NewRefGraph(map[string]string{"$b": "$a", "$c": "$b", "$y": "$z"})

	assert.Equal(t, "$a", g.Find("$c"))
	assert.Equal(t, []string{"$b", "$c"}, g.Aliases("$a"))
	assert.Equal(t, []string{"$a", "$b"}, g.Aliases("$c"))
	assert.Equal(t, []string{"$z"}, g.Aliases("$y"))
	assert.Nil(t, g.Aliases("$q"))
	assert.Equal(t, "$q", g.Find("$q"))

	var none *RefGraph
	assert.Nil(t, none.Aliases("$a"))
	assert.Equal(t, "$a", none.Find("$a"))
}
