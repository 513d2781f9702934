package algebra

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/phpnarrow/internal/ttype"
)

func combineIDs(specs ...string) string {
	var types []ttype.Atomic
	for _, s := range specs {
		types = append(types, p(s).Types...)
	}
	return ttype.NewUnion(Combine(types, hierarchy(), false)).ID()
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{"true and false make bool", []string{"true", "false"}, "bool"},
		{"int literals stay literal", []string{"{literal: 1}", "{literal: 2}", "{literal: 1}"}, "1|2"},
		{"int absorbs literal", []string{"{literal: 5}", "int"}, "int"},
		{"adjacent ranges join", []string{"{kind: int-range, min: 0, max: 5}", "{kind: int-range, min: 6, max: 10}"}, "int<0, 10>"},
		{"range absorbs literal", []string{"{literal: 3}", "{kind: int-range, min: 0, max: 5}"}, "int<0, 5>"},
		{"disjoint ranges stay apart", []string{"negative-int", "positive-int"}, "int<1, max>|int<min, -1>"},
		{"empty literal weakens non-empty string", []string{"{literal: ''}", "non-empty-string"}, "string"},
		{"string literals stay literal", []string{"{literal: b}", "{literal: a}"}, "'a'|'b'"},
		{"numeric absorbs numeric literals", []string{"numeric", "{literal: '5'}", "{literal: x}"}, "'x'|numeric"},
		{"array-key absorbs int and string", []string{"array-key", "int", "{literal: a}"}, "array-key"},
		{"scalar absorbs scalars", []string{"scalar", "int", "bool", "{literal: x}"}, "scalar"},
		{"mixed absorbs all", []string{"mixed", "int", "null"}, "mixed"},
		{"truthy mixed survives truthy member", []string{"truthy-mixed", "truthy-string"}, "truthy-mixed"},
		{"truthy mixed lost to falsy member", []string{"truthy-mixed", "false"}, "nonnull"},
		{"nonnull lost to null", []string{"nonnull", "null"}, "mixed"},
		{"null stays", []string{"int", "null"}, "int|null"},
		{"void alone", []string{"void"}, "void"},
		{"void with value becomes null", []string{"void", "int"}, "int|null"},
		{"never vanishes", []string{"never", "int"}, "int"},
		{"only never", []string{"never"}, "never"},
		{"list elements join", []string{"{kind: list, element: int}", "{kind: list, element: string}"}, "list<int|string>"},
		{"empty array drops non-empty", []string{"empty-array", "{kind: non-empty-list, element: int}"}, "list<int>"},
		{"shapes make optional keys", []string{
			"{kind: array, items: [{key: a, type: int}]}",
			"{kind: array, items: [{key: b, type: string}]}",
		}, "array{'a'?: int, 'b'?: string}"},
		{"shared key stays required", []string{
			"{kind: array, items: [{key: a, type: int}]}",
			"{kind: array, items: [{key: a, type: string}]}",
		}, "array{'a': int|string}"},
		{"subclass folds into parent", []string{"{kind: class, name: Circle}", "{kind: class, name: Base}"}, "Base"},
		{"object absorbs named", []string{"object", "{kind: class, name: Circle}"}, "object"},
		{"all enum cases fold", []string{
			"{kind: enum-case, name: Suit, case: Hearts}",
			"{kind: enum-case, name: Suit, case: Spades}",
		}, "enum(Suit)"},
		{"some enum cases stay", []string{"{kind: enum-case, name: Suit, case: Hearts}"}, "Suit::Hearts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, combineIDs(tt.input...))
		})
	}
}

func TestCombineOverwriteEmptyArray(t *testing.T) {
	types := []ttype.Atomic{ttype.TKeyed{}, ttype.TList{Element: ttype.Int(), NonEmpty: true}}
	assert.Equal(t, "list<int>", ttype.NewUnion(Combine(types, nil, false)).ID())
	assert.Equal(t, "non-empty-list<int>", ttype.NewUnion(Combine(types, nil, true)).ID())
}

func TestCombineLiteralLimit(t *testing.T) {
	var ints, strs []ttype.Atomic
	for i := 0; i <= LiteralIntLimit; i++ {
		ints = append(ints, ttype.TLiteralInt{Value: int64(i)})
	}
	for i := 0; i <= LiteralStringLimit; i++ {
		strs = append(strs, ttype.TLiteralString{Value: fmt.Sprintf("k%d", i)})
	}
	assert.Equal(t, "int", ttype.NewUnion(Combine(ints, nil, false)).ID())
	assert.Equal(t, "truthy-lowercase-string", ttype.NewUnion(Combine(strs, nil, false)).ID())
}

func TestCombineShapeBound(t *testing.T) {
	known := make(map[ttype.ArrayKey]*ttype.Union, MaxShapeItems+1)
	for i := 0; i <= MaxShapeItems; i++ {
		known[ttype.StringKey(fmt.Sprintf("k%d", i))] = ttype.Int()
	}
	shape := ttype.Shape(known)
	out := Combine([]ttype.Atomic{shape, shape}, nil, false)
	assert.Equal(t, "non-empty-array<string, int>", ttype.NewUnion(out).ID())
}

func TestCombineIsOrderIndependent(t *testing.T) {
	a := []ttype.Atomic{ttype.TLiteralInt{Value: 2}, ttype.TNull{}, ttype.TString{}, ttype.TLiteralInt{Value: 1}}
	b := []ttype.Atomic{ttype.TString{}, ttype.TLiteralInt{Value: 1}, ttype.TNull{}, ttype.TLiteralInt{Value: 2}}
	assert.Equal(t, ttype.NewUnion(Combine(a, nil, false)).ID(), ttype.NewUnion(Combine(b, nil, false)).ID())
}

func TestCombineUnionsFlags(t *testing.T) {
	a := ttype.Int().WithPossiblyUndefined(true)
	b := ttype.String()
	b.Populated = true

	out := CombineUnions(a, b, nil)
	assert.Equal(t, "int|string", out.ID())
	assert.True(t, out.PossiblyUndefined)
	assert.False(t, out.Populated)

	assert.Same(t, b, CombineUnions(nil, b, nil))
	assert.Equal(t, "never", CombineUnionList(nil, nil).ID())
	assert.Equal(t, "1|2|3", CombineUnionList([]*ttype.Union{ttype.LiteralInt(1), ttype.LiteralInt(2), ttype.LiteralInt(3)}, nil).ID())
}
