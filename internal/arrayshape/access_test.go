package arrayshape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
)

func TestResolveAccess(t *testing.T) {
	tests := []struct {
		name      string
		container string
		index     string
		ctx       Context
		expected  string
		issues    []issue.Kind
	}{
		{"known index", "{kind: array, items: [{key: 0, type: int}]}", "{literal: 0}", Context{}, "int", nil},
		{"missing index", "{kind: array, items: [{key: 0, type: int}]}", "{literal: 1}", Context{}, "null", []issue.Kind{issue.UndefinedIntArrayOffset}},
		{"missing index in isset", "{kind: array, items: [{key: 0, type: int}]}", "{literal: 1}", Context{InIsset: true}, "null", nil},
		{"string index on int keys", "{kind: array, items: [{key: 0, type: int}]}", "string", Context{}, "mixed", []issue.Kind{issue.InvalidArrayOffset}},
		{"missing string key", "{kind: array, items: [{key: a, type: int}]}", "{literal: b}", Context{}, "null", []issue.Kind{issue.UndefinedStringArrayOffset}},
		{"optional key", "{kind: array, items: [{key: a, type: int, optional: true}]}", "{literal: a}", Context{}, "int", []issue.Kind{issue.PossiblyUndefinedStringArrayOffset}},
		{"optional key in isset", "{kind: array, items: [{key: a, type: int, optional: true}]}", "{literal: a}", Context{InIsset: true}, "int|null", nil},
		{"list fallback", "{kind: list, element: string}", "{literal: 3}", Context{}, "string", []issue.Kind{issue.PossiblyUndefinedIntArrayOffset}},
		{"list fallback in assignment", "{kind: list, element: string}", "{literal: 3}", Context{InAssignment: true}, "string", nil},
		{"list fallback in isset", "{kind: list, element: string}", "{literal: 3}", Context{InIsset: true}, "null|string", nil},
		{"list fallback past tuple", "{kind: list, items: [{type: int}], element: string}", "{literal: 1}", Context{}, "string", []issue.Kind{issue.PossiblyUndefinedIntArrayOffset}},
		{"list with array-key index", "{kind: list, element: string}", "array-key", Context{}, "mixed", []issue.Kind{issue.MismatchingArrayOffset}},
		{"mixed index", "{kind: list, element: string}", "mixed", Context{}, "mixed", []issue.Kind{issue.MixedArrayOffset}},
		{"non-literal index", "{kind: array, items: [{key: a, type: int}, {key: b, type: string}]}", "string", Context{}, "int|string", nil},
		{"cast index", "{kind: array, items: [{key: 1, type: int}]}", "true", Context{}, "int", nil},
		{"numeric string index", "{kind: list, items: [{type: int}]}", "{literal: '0'}", Context{}, "int", nil},
		{"open array", "{kind: array, key: string, value: float}", "{literal: x}", Context{}, "float", nil},
		{"union container", "{kind: union, of: [{kind: list, items: [{type: int}]}, {kind: list, items: [{type: string}]}]}", "{literal: 0}", Context{}, "int|string", nil},
		{"mixed container", "mixed", "{literal: 0}", Context{}, "mixed", []issue.Kind{issue.MixedArrayAccess}},
		{"mixed container in isset", "mixed", "{literal: 0}", Context{InIsset: true}, "mixed", nil},
		{"null container", "null", "{literal: 0}", Context{}, "null", []issue.Kind{issue.NullArrayAccess}},
		{"null container in assignment", "null", "{literal: 0}", Context{InAssignment: true}, "null", nil},
		{"int container", "int", "{literal: 0}", Context{}, "mixed", []issue.Kind{issue.InvalidArrayAccess}},
		{"literal string offset", "{literal: abc}", "{literal: 1}", Context{}, "'b'", nil},
		{"negative string offset", "{literal: abc}", "{literal: -1}", Context{}, "'c'", nil},
		{"string offset out of range", "{literal: abc}", "{literal: 5}", Context{}, "mixed", []issue.Kind{issue.InvalidArrayOffset}},
		{"general string offset", "string", "int", Context{}, "non-empty-string", nil},
		{"array access object", "{kind: class, name: Bag}", "{literal: k}", Context{}, "int", nil},
		{"plain object", "{kind: class, name: Plain}", "{literal: k}", Context{}, "mixed", []issue.Kind{issue.InvalidArrayAccess}},
		{"empty array", "empty-array", "{literal: a}", Context{}, "null", []issue.Kind{issue.UndefinedStringArrayOffset}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := newBuilder(DefaultOptions())
			got := b.ResolveAccess(p(tt.container), p(tt.index), tt.ctx, issue.Span{})
			assert.Equal(t, tt.expected, got.ID())
			assert.Equal(t, tt.issues, c.Kinds())
		})
	}
}

func TestIndexKeyType(t *testing.T) {
	tests := []struct {
		index    *ttype.Union
		expected string
	}{
		{ttype.Null(), "''"},
		{ttype.Bool(), "int<0, 1>"},
		{ttype.Float(), "int"},
		{ttype.LiteralString("15"), "15"},
		{ttype.LiteralString("015"), "'015'"},
		{ttype.NullableOf(ttype.TInt{}), "''|int"},
	}
	for _, tt := range tests {
		t.Run(tt.index.ID(), func(t *testing.T) {
			assert.Equal(t, tt.expected, IndexKeyType(tt.index).ID())
		})
	}
}

func TestAssignOffset(t *testing.T) {
	tests := []struct {
		name      string
		container string
		index     string // empty means append
		value     *ttype.Union
		expected  string
	}{
		{"append to empty", "empty-array", "", ttype.Int(), "list{0: int}"},
		{"append to tuple", "{kind: list, items: [{type: int}]}", "", ttype.String(), "list{0: int, 1: string}"},
		{"append to open list", "{kind: list, element: int}", "", ttype.String(), "non-empty-list<int|string>"},
		{"replace list entry", "{kind: list, items: [{type: int}]}", "{literal: 0}", ttype.String(), "list{0: string}"},
		{"list index at end", "{kind: list, items: [{type: int}]}", "{literal: 1}", ttype.String(), "list{0: int, 1: string}"},
		{"list gap becomes keyed", "{kind: list, items: [{type: int}]}", "{literal: 5}", ttype.String(), "array{0: int, 5: string}"},
		{"set shape key", "{kind: array, items: [{key: a, type: int}]}", "{literal: b}", ttype.String(), "array{'a': int, 'b': string}"},
		{"overwrite shape key", "{kind: array, items: [{key: a, type: int, optional: true}]}", "{literal: a}", ttype.String(), "array{'a': string}"},
		{"append to shape", "{kind: array, items: [{key: 3, type: int}]}", "", ttype.String(), "array{3: int, 4: string}"},
		{"non-literal key widens", "{kind: array, key: string, value: int}", "int", ttype.String(), "non-empty-array<int|string, int|string>"},
		{"null is promoted", "null", "{literal: a}", ttype.Int(), "array{'a': int}"},
		{"mixed stays mixed", "mixed", "{literal: a}", ttype.Int(), "mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBuilder(DefaultOptions())
			var index *ttype.Union
			if tt.index != "" {
				index = p(tt.index)
			}
			assert.Equal(t, tt.expected, b.AssignOffset(p(tt.container), index, tt.value).ID())
		})
	}
}
