package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/testutil"
	"github.com/roach88/phpnarrow/internal/ttype"
	"github.com/roach88/phpnarrow/internal/typespec"
	"github.com/roach88/phpnarrow/internal/varpath"
)

var p = typespec.MustParse

func newReconciler() (*Reconciler, *issue.Collector) {
	c := issue.NewCollector()
	return New(testutil.Codebase(), c), c
}

func reconcile(t *testing.T, a assertion.Assertion, existing string) (*ttype.Union, []issue.Kind) {
	t.Helper()
	r, c := newReconciler()
	var ex *ttype.Union
	if existing != "" {
		ex = p(existing)
	}
	got := r.Reconcile(Request{
		Assertion:       a,
		Existing:        ex,
		Key:             varpath.Var("$x"),
		CanReportIssues: true,
	})
	require.NotNil(t, got)
	return got, c.Kinds()
}

func nullT() ttype.Atomic { return ttype.TNull{} }

func TestNullRoundTrip(t *testing.T) {
	r, c := newReconciler()
	nullable := p("{kind: union, of: [int, null]}")

	isNull := r.Reconcile(Request{Assertion: assertion.Type(nullT()), Existing: nullable, Key: varpath.Var("$x"), CanReportIssues: true})
	assert.Equal(t, "null", isNull.ID())

	notNull := r.Reconcile(Request{Assertion: assertion.NotType(nullT()), Existing: nullable, Key: varpath.Var("$x"), CanReportIssues: true})
	assert.Equal(t, "int", notNull.ID())
	assert.Zero(t, c.Len())

	again := r.Reconcile(Request{Assertion: assertion.NotType(nullT()), Existing: notNull, Key: varpath.Var("$x"), CanReportIssues: true})
	assert.Equal(t, "int", again.ID())
	assert.Equal(t, []issue.Kind{issue.RedundantNonnullTypeComparison}, c.Kinds())
	assert.Equal(t, "Type int for $x is always !null", c.Issues()[0].Message)
}

func TestReconcileTypes(t *testing.T) {
	tests := []struct {
		name      string
		assertion assertion.Assertion
		existing  string
		expected  string
		issues    []issue.Kind
	}{
		{"is null on int", assertion.Type(nullT()), "int", "never", []issue.Kind{issue.ImpossibleNullTypeComparison}},
		{"is string", assertion.Type(ttype.TString{}), "{kind: union, of: [int, string]}", "string", nil},
		{"is int on mixed", assertion.Type(ttype.TInt{}), "mixed", "int", nil},
		{"is int on int", assertion.Type(ttype.TInt{}), "int", "int", []issue.Kind{issue.RedundantTypeComparison}},
		{"is string on int", assertion.Type(ttype.TString{}), "int", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"is int on array-key", assertion.Type(ttype.TInt{}), "array-key", "int", nil},
		{"is int on range", assertion.Type(ttype.TInt{}), "{kind: int-range, min: 0, max: 10}", "int<0, 10>", []issue.Kind{issue.RedundantTypeComparison}},
		{"is range on int", assertion.Type(zeroToTen()), "int", "int<0, 10>", nil},
		{"is range on overlapping range", assertion.Type(zeroToTen()), "{kind: int-range, min: 5, max: 20}", "int<5, 10>", nil},
		{"is range on literal inside", assertion.Type(zeroToTen()), "{literal: 7}", "7", []issue.Kind{issue.RedundantTypeComparison}},
		{"is range on literal outside", assertion.Type(zeroToTen()), "{literal: 20}", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"is bool on mixed", assertion.Type(ttype.TBool{}), "mixed", "bool", nil},
		{"is true on bool", assertion.Type(ttype.TTrue{}), "bool", "true", nil},
		{"is float on numeric", assertion.Type(ttype.TFloat{}), "numeric", "float", nil},
		{"is object", assertion.Type(ttype.TObject{}), "{kind: union, of: [{kind: class, name: Bag}, int]}", "Bag", nil},
		{"is array on iterable", assertion.Type(ttype.PlaceholderArray()), "iterable", "array<array-key, mixed>", nil},
		{"is nonnull", assertion.Type(ttype.TMixed{NonNull: true}), "{kind: union, of: [string, null]}", "string", nil},
		{"not int on array-key", assertion.NotType(ttype.TInt{}), "array-key", "string", nil},
		{"not true on bool", assertion.NotType(ttype.TTrue{}), "bool", "false", nil},
		{"not null on mixed", assertion.NotType(nullT()), "mixed", "nonnull", nil},
		{"not string on string", assertion.NotType(ttype.TString{}), "string", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"not array", assertion.NotType(ttype.PlaceholderArray()), "{kind: union, of: [{kind: list, element: int}, string]}", "string", nil},
		{"not array on iterable", assertion.NotType(ttype.PlaceholderArray()), "iterable", "Traversable<mixed, mixed>", nil},
		{"not nonnull", assertion.NotType(ttype.TMixed{NonNull: true}), "{kind: union, of: [string, null]}", "null", nil},
		{"missing variable", assertion.Type(ttype.TInt{}), "", "int", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := reconcile(t, tt.assertion, tt.existing)
			assert.Equal(t, tt.expected, got.ID())
			assert.Equal(t, tt.issues, issues)
		})
	}
}

func zeroToTen() ttype.Atomic { return ttype.IntRange(ttype.Int64(0), ttype.Int64(10)) }

func TestReconcileIssetAndTruthiness(t *testing.T) {
	tests := []struct {
		name      string
		assertion assertion.Assertion
		existing  string
		expected  string
		issues    []issue.Kind
	}{
		{"isset on nullable", assertion.Of(assertion.IsIsset), "{kind: union, of: [int, null]}", "int", nil},
		{"isset on int", assertion.Of(assertion.IsIsset), "int", "int", []issue.Kind{issue.RedundantIssetCheck}},
		{"isset on null", assertion.Of(assertion.IsIsset), "null", "never", []issue.Kind{issue.ImpossibleNullTypeComparison}},
		{"isset on mixed", assertion.Of(assertion.IsIsset), "mixed", "nonnull", nil},
		{"not isset on nullable", assertion.Of(assertion.IsNotIsset), "{kind: union, of: [int, null]}", "null", nil},
		{"not isset on int", assertion.Of(assertion.IsNotIsset), "int", "never", []issue.Kind{issue.ImpossibleNullTypeComparison}},
		{"not isset on null", assertion.Of(assertion.IsNotIsset), "null", "null", []issue.Kind{issue.RedundantIssetCheck}},
		{"truthy drops null", assertion.Of(assertion.Truthy), "{kind: union, of: [string, null]}", "truthy-string", nil},
		{"truthy on bool", assertion.Of(assertion.Truthy), "bool", "true", nil},
		{"truthy on object", assertion.Of(assertion.Truthy), "object", "object", []issue.Kind{issue.RedundantTruthinessCheck}},
		{"truthy on null", assertion.Of(assertion.Truthy), "null", "never", []issue.Kind{issue.ImpossibleTruthinessCheck}},
		{"truthy on missing", assertion.Of(assertion.Truthy), "", "truthy-mixed", nil},
		{"falsy", assertion.Of(assertion.Falsy), "{kind: union, of: [bool, string]}", "''|'0'|false", nil},
		{"falsy on object", assertion.Of(assertion.Falsy), "object", "never", []issue.Kind{issue.ImpossibleTruthinessCheck}},
		{"falsy on false", assertion.Of(assertion.Falsy), "false", "false", []issue.Kind{issue.RedundantTruthinessCheck}},
		{"empty on list", assertion.Of(assertion.Empty), "{kind: list, element: int}", "array<never, never>", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := reconcile(t, tt.assertion, tt.existing)
			assert.Equal(t, tt.expected, got.ID())
			assert.Equal(t, tt.issues, issues)
		})
	}
}

func TestReconcileLiterals(t *testing.T) {
	five := ttype.TLiteralInt{Value: 5}
	hearts := ttype.TEnumCase{Enum: "Suit", Case: "Hearts"}

	tests := []struct {
		name      string
		assertion assertion.Assertion
		existing  string
		expected  string
		issues    []issue.Kind
	}{
		{"identical on int", assertion.Identical(five), "int", "5", nil},
		{"identical on same literal", assertion.Identical(five), "{literal: 5}", "5", []issue.Kind{issue.RedundantTypeComparison}},
		{"identical on string", assertion.Identical(five), "string", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"not identical removes literal", assertion.NotIdentical(five), "{kind: union, of: [{literal: 5}, {literal: 6}]}", "6", nil},
		{"not identical never matches", assertion.NotIdentical(five), "{literal: 6}", "6", []issue.Kind{issue.RedundantTypeComparison}},
		{"not identical on same literal", assertion.NotIdentical(five), "{literal: 5}", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"not identical true", assertion.NotIdentical(ttype.TTrue{}), "bool", "false", nil},
		{"not identical range edge", assertion.NotIdentical(ttype.TLiteralInt{Value: 0}), "{kind: int-range, min: 0, max: 10}", "int<1, 10>", nil},
		{"not identical enum case", assertion.NotIdentical(hearts), "{kind: enum, name: Suit}", "Suit::Spades", nil},
		{"equal on int", assertion.Equal(five), "int", "5", nil},
		{"equal number on string", assertion.Equal(five), "string", "non-empty-numeric-string", nil},
		{"equal on numeric literal string", assertion.Equal(five), "{literal: '5.0'}", "'5.0'", nil},
		{"equal word on int", assertion.Equal(ttype.TLiteralString{Value: "abc"}), "int", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"equal null", assertion.Equal(nullT()), "{kind: union, of: [int, null]}", "0|null", nil},
		{"not equal null", assertion.NotEqual(nullT()), "{kind: union, of: [string, null]}", "non-empty-string", nil},
		{"not equal literal", assertion.NotEqual(five), "{kind: union, of: [{literal: 5}, string]}", "string", nil},
		{"not equal never matches", assertion.NotEqual(five), "{literal: abc}", "'abc'", []issue.Kind{issue.RedundantTypeComparison}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := reconcile(t, tt.assertion, tt.existing)
			assert.Equal(t, tt.expected, got.ID())
			assert.Equal(t, tt.issues, issues)
		})
	}
}

func TestReconcileKeysAndCounts(t *testing.T) {
	shape := "{kind: array, items: [{key: a, type: int}]}"
	optional := "{kind: array, items: [{key: a, type: int, optional: true}]}"

	tests := []struct {
		name      string
		assertion assertion.Assertion
		existing  string
		expected  string
		issues    []issue.Kind
	}{
		{"has optional key", assertion.ArrayKey(ttype.StringKey("a")), optional, "array{'a': int}", nil},
		{"has unknown key on closed shape", assertion.ArrayKey(ttype.StringKey("b")), shape, "never", []issue.Kind{issue.ImpossibleKeyCheck}},
		{"has key on open array", assertion.ArrayKey(ttype.StringKey("k")), "{kind: array, key: string, value: int}", "array{'k': int, ...<string, int>}", nil},
		{"nonnull entry", assertion.NonnullEntry(ttype.StringKey("a")), "{kind: array, items: [{key: a, type: {kind: union, of: [int, null]}}]}", "array{'a': int}", nil},
		{"without required key", assertion.ArrayKey(ttype.StringKey("a")).Negation(), "{kind: union, of: [" + shape + ", null]}", "null", nil},
		{"without optional key", assertion.ArrayKey(ttype.StringKey("a")).Negation(), optional, "array<never, never>", nil},
		{"without absent key", assertion.ArrayKey(ttype.StringKey("b")).Negation(), shape, "array{'a': int}", []issue.Kind{issue.RedundantKeyCheck}},
		{"exact count", assertion.ExactCount(2), "{kind: list, element: int}", "list{0: int, 1: int}", nil},
		{"exact count zero", assertion.ExactCount(0), "{kind: list, element: int}", "array<never, never>", nil},
		{"exact count too big", assertion.ExactCount(3), "{kind: list, items: [{type: int}]}", "never", []issue.Kind{issue.ImpossibleKeyCheck}},
		{"not exact count", assertion.ExactCount(1).Negation(), "{kind: list, items: [{type: int}]}", "never", []issue.Kind{issue.ImpossibleKeyCheck}},
		{"non-empty", assertion.Of(assertion.NonEmptyCountable), "{kind: list, element: int}", "non-empty-list<int>", nil},
		{"empty countable", assertion.Of(assertion.EmptyCountable), "{kind: union, of: [{kind: list, element: int}, null]}", "array<never, never>|null", nil},
		{"in array", assertion.In(p("{kind: union, of: [{literal: 1}, {literal: 2}]}")), "int", "1|2", nil},
		{"not in array", assertion.In(p("{literal: 1}")).Negation(), "{kind: union, of: [{literal: 1}, {literal: 3}]}", "3", nil},
		{"not in array of both bools", assertion.In(bothBools()).Negation(), "bool", "never", []issue.Kind{issue.ImpossibleTypeComparison}},
		{"not in array of true", assertion.In(ttype.Single(ttype.TTrue{})).Negation(), "bool", "false", nil},
		{"not in array of unrelated values", assertion.In(p("{kind: union, of: [{literal: 1}, {literal: 2}]}")).Negation(), "string", "string", []issue.Kind{issue.RedundantTypeComparison}},
		{"not in array of wider values", assertion.In(p("{kind: union, of: [{literal: 1}, {literal: 2}]}")).Negation(), "int", "int", nil},
		{"countable", assertion.Of(assertion.IsCountable), "{kind: union, of: [{kind: list, element: int}, int]}", "list<int>", nil},
		{"not countable", assertion.Of(assertion.NotCountable), "{kind: union, of: [{kind: class, name: Bag}, int]}", "int", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := reconcile(t, tt.assertion, tt.existing)
			assert.Equal(t, tt.expected, got.ID())
			assert.Equal(t, tt.issues, issues)
		})
	}
}

func TestNegatedFlagSwapsDiagnostics(t *testing.T) {
	shape := "{kind: array, items: [{key: a, type: int}]}"
	oneOrTwo := p("{kind: union, of: [{literal: 1}, {literal: 2}]}")

	tests := []struct {
		name      string
		assertion assertion.Assertion
		existing  string
		expected  issue.Kind
		message   string // checked when set
	}{
		{"redundant becomes impossible", assertion.NotType(nullT()), "int", issue.ImpossibleNullTypeComparison, "Type int for $x is never null"},
		{"impossible becomes redundant", assertion.Type(nullT()), "int", issue.RedundantNonnullTypeComparison, "Type int for $x is always !null"},
		{"type", assertion.Type(ttype.TString{}), "int", issue.RedundantTypeComparison, ""},
		{"class", assertion.Type(ttype.TNamedObject{Name: "Bag"}), "int", issue.RedundantTypeComparison, ""},
		{"missing key", assertion.ArrayKey(ttype.StringKey("b")), shape, issue.RedundantKeyCheck, ""},
		{"without missing key", assertion.ArrayKey(ttype.StringKey("b")).Negation(), shape, issue.ImpossibleKeyCheck, ""},
		{"count", assertion.ExactCount(3), "{kind: list, items: [{type: int}]}", issue.RedundantKeyCheck, ""},
		{"truthy object", assertion.Of(assertion.Truthy), "object", issue.ImpossibleTruthinessCheck, ""},
		{"truthy null", assertion.Of(assertion.Truthy), "null", issue.RedundantTruthinessCheck, ""},
		{"isset", assertion.Of(assertion.IsIsset), "int", issue.ImpossibleNullTypeComparison, ""},
		{"not in array of both bools", assertion.In(bothBools()).Negation(), "bool", issue.RedundantTypeComparison, ""},
		{"not in array of unrelated values", assertion.In(oneOrTwo).Negation(), "string", issue.ImpossibleTypeComparison, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := newReconciler()
			r.Reconcile(Request{
				Assertion:       tt.assertion,
				Existing:        p(tt.existing),
				Key:             varpath.Var("$x"),
				CanReportIssues: true,
				Negated:         true,
			})
			require.Equal(t, 1, c.Len())
			assert.Equal(t, tt.expected, c.Issues()[0].Kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, c.Issues()[0].Message)
			}
		})
	}
}

func bothBools() *ttype.Union {
	return ttype.NewUnion([]ttype.Atomic{ttype.TTrue{}, ttype.TFalse{}})
}

func TestReconcileQuietWhenNotReporting(t *testing.T) {
	r, c := newReconciler()
	got := r.Reconcile(Request{Assertion: assertion.Type(nullT()), Existing: ttype.Int(), Key: varpath.Var("$x")})
	assert.True(t, got.IsNever())
	assert.Zero(t, c.Len())
}

func TestReconcilePossiblyUndefined(t *testing.T) {
	r, _ := newReconciler()
	got := r.Reconcile(Request{
		Assertion:         assertion.Of(assertion.IsIsset),
		Existing:          ttype.Int(),
		PossiblyUndefined: true,
		Key:               varpath.Var("$x"),
	})
	assert.Equal(t, "int", got.ID())
	assert.False(t, got.PossiblyUndefined)
}

func TestReconcileGenericConstraint(t *testing.T) {
	r, c := newReconciler()
	existing := ttype.Single(ttype.Generic("T", "fn", p("{kind: union, of: [int, null]}")))

	got := r.Reconcile(Request{Assertion: assertion.NotType(nullT()), Existing: existing, Key: varpath.Var("$x"), CanReportIssues: true})
	g, ok := got.Single()
	require.True(t, ok)
	require.IsType(t, ttype.TGenericParam{}, g)
	assert.Equal(t, "int", g.(ttype.TGenericParam).As.ID())
	assert.Zero(t, c.Len())
}

func TestMaxDepthStopsRecursion(t *testing.T) {
	r := New(testutil.Codebase(), nil, WithMaxDepth(0))
	existing := ttype.Single(ttype.Generic("T", "fn", p("{kind: union, of: [int, null]}")))

	got := r.Reconcile(Request{Assertion: assertion.NotType(nullT()), Existing: existing})
	assert.Equal(t, existing.ID(), got.ID())
}
