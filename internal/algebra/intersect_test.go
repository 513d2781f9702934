package algebra

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/phpnarrow/internal/ttype"
)

func TestIntersectUnionWithUnion(t *testing.T) {
	cb := hierarchy()
	tests := []struct {
		name     string
		a, b     string
		expected string // empty means disjoint
	}{
		{"list element narrows", "{kind: list, element: int}", "{kind: list, element: {kind: union, of: [int, string]}}", "list<int>"},
		{"closed shapes with different keys", "{kind: array, items: [{key: a, type: int}]}", "{kind: array, items: [{key: b, type: string}]}", ""},
		{"int and string", "int", "string", ""},
		{"shared member", "{kind: union, of: [int, string]}", "{kind: union, of: [int, null]}", "int"},
		{"array-key and numeric", "array-key", "numeric", "int|non-empty-numeric-string"},
		{"overlapping ranges", "{kind: int-range, min: 0, max: 10}", "{kind: int-range, min: 5, max: 20}", "int<5, 10>"},
		{"separate ranges", "{kind: int-range, min: 0, max: 3}", "{kind: int-range, min: 5, max: 9}", ""},
		{"mixed keeps the other side", "mixed", "int", "int"},
		{"truthy bool", "truthy-mixed", "bool", "true"},
		{"falsy scalars", "falsy-mixed", "{kind: union, of: [int, string, null]}", "''|'0'|0|null"},
		{"nonnull drops null", "nonnull", "{kind: union, of: [int, null]}", "int"},
		{"string refinements or together", "non-empty-string", "lowercase-string", "non-empty-lowercase-string"},
		{"subclass wins", "{kind: class, name: Circle}", "{kind: class, name: Shape}", "Circle"},
		{"class and interface", "{kind: class, name: Base}", "{kind: class, name: Shape}", "Base&Shape"},
		{"final class and interface", "{kind: class, name: Square}", "{kind: class, name: Shape}", ""},
		{"two classes", "{kind: class, name: Circle}", "{kind: class, name: Square}", ""},
		{"different enum cases", "{kind: enum-case, name: Suit, case: Hearts}", "{kind: enum-case, name: Suit, case: Spades}", ""},
		{"generic narrows", "{kind: generic, name: T, entity: fn, as: array-key}", "int", "T:fn as int"},
		{"generic disjoint", "{kind: generic, name: T, entity: fn, as: int}", "string", ""},
		{"optional list entry narrows", "{kind: list, element: {kind: union, of: [int, null]}}", "{kind: list, items: [{type: {kind: union, of: [int, string]}}]}", "list{0: int}"},
		{"open array narrows closed shape", "{kind: array, items: [{key: a, type: {kind: union, of: [int, string]}}]}", "{kind: array, key: string, value: {kind: union, of: [int, null]}}", "array{'a': int}"},
		{"required index missing", "{kind: list, items: [{type: int}]}", "{kind: array, items: [{key: x, type: int}]}", ""},
		{"disjoint keys leave empty array", "{kind: array, key: int, value: string}", "{kind: array, key: string, value: string}", "array<never, never>"},
		{"list and iterable", "{kind: list, element: {kind: union, of: [int, string]}}", "{kind: iterable, key: int, value: int}", "list<int>"},
		{"iterable and class", "{kind: iterable, key: mixed, value: mixed}", "{kind: class, name: Base}", "Base&Traversable"},
		{"callable string", "callable", "string", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectUnionWithUnion(cb, p(tt.a), p(tt.b))
			if tt.expected == "" {
				assert.False(t, ok)
				assert.True(t, got.IsNever())
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got.ID())
		})
	}
}

func TestIntersectIsSymmetricOnMembers(t *testing.T) {
	cb := hierarchy()
	pairs := [][2]string{
		{"array-key", "numeric"},
		{"{kind: int-range, min: 0, max: 10}", "positive-int"},
		{"{kind: class, name: Base}", "{kind: class, name: Shape}"},
		{"falsy-mixed", "bool"},
	}
	for _, pair := range pairs {
		ab, okAB := IntersectUnionWithUnion(cb, p(pair[0]), p(pair[1]))
		ba, okBA := IntersectUnionWithUnion(cb, p(pair[1]), p(pair[0]))
		assert.Equal(t, okAB, okBA, pair)
		assert.Equal(t, ab.ID(), ba.ID(), pair)
	}
}

func TestIntersectFlags(t *testing.T) {
	a := ttype.Int().WithPossiblyUndefined(true)
	b := ttype.Scalar()

	got, ok := IntersectUnionWithUnion(nil, a, b)
	assert.True(t, ok)
	assert.Equal(t, "int", got.ID())
	assert.False(t, got.PossiblyUndefined)

	got, ok = IntersectUnionWithUnion(nil, a, a)
	assert.True(t, ok)
	assert.True(t, got.PossiblyUndefined)
}

func TestIntersectAtomicWithAtomic(t *testing.T) {
	out, ok := IntersectAtomicWithAtomic(nil, ttype.TScalar{}, ttype.TArrayKey{})
	assert.True(t, ok)
	assert.Equal(t, "array-key", ttype.NewUnion(out).ID())

	out, ok = IntersectAtomicWithAtomic(nil, ttype.TBool{}, ttype.TMixed{Truthiness: ttype.TruthinessFalsy})
	assert.True(t, ok)
	assert.Equal(t, "false", ttype.NewUnion(out).ID())

	_, ok = IntersectAtomicWithAtomic(nil, ttype.TTrue{}, ttype.TFalse{})
	assert.False(t, ok)
}

func TestCanBeIdentical(t *testing.T) {
	assert.True(t, CanBeIdentical(nil, ttype.Int(), ttype.LiteralInt(4)))
	assert.False(t, CanBeIdentical(nil, ttype.Int(), ttype.String()))
	assert.True(t, CanBeIdentical(nil, ttype.Mixed(), ttype.Null()))
	assert.False(t, CanBeIdentical(nil, ttype.NonNull(), ttype.Null()))
}

func TestIntersectDepthLimit(t *testing.T) {
	inner := ttype.Int()
	outer := ttype.Int()
	for i := 0; i < MaxDepth+5; i++ {
		inner = ttype.Single(ttype.ListOf(inner))
		outer = ttype.Single(ttype.ListOf(outer))
	}
	got, ok := IntersectUnionWithUnion(nil, inner, outer)
	assert.True(t, ok)
	assert.False(t, got.IsNever())
}
