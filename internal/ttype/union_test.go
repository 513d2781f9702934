package ttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnionCanonicalisation(t *testing.T) {
	t.Run("never next to int is stripped", func(t *testing.T) {
		u := NewUnion([]Atomic{TNever{}, TInt{}})
		require.Len(t, u.Types, 1)
		assert.Equal(t, "int", u.ID())
	})

	t.Run("empty becomes never", func(t *testing.T) {
		u := NewUnion(nil)
		assert.True(t, u.IsNever())
	})

	t.Run("only never becomes single never", func(t *testing.T) {
		u := NewUnion([]Atomic{TNever{}, TNever{}})
		require.Len(t, u.Types, 1)
		assert.True(t, u.IsNever())
	})
}

func TestUnionEqualityIsOrderIndependent(t *testing.T) {
	a := NewUnion([]Atomic{TInt{}, TString{}})
	b := NewUnion([]Atomic{TString{}, TInt{}})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, "int|string", a.ID())
}

func TestUnionEqualityComparesFlags(t *testing.T) {
	a := Int()
	b := Int().WithPossiblyUndefined(true)

	assert.False(t, a.Equal(b))
	assert.True(t, a.SameTypes(b))

	c := Int()
	c.IgnoreFalsableIssues = true
	assert.False(t, a.Equal(c))
}

func TestUnionEqualityIsMultiset(t *testing.T) {
	a := &Union{Types: []Atomic{TInt{}, TInt{}, TString{}}}
	b := &Union{Types: []Atomic{TInt{}, TString{}, TString{}}}
	assert.False(t, a.Equal(b))
}

func TestAtomicIDs(t *testing.T) {
	tests := []struct {
		name     string
		atomic   Atomic
		expected string
	}{
		{"int", TInt{}, "int"},
		{"literal int", TLiteralInt{Value: -3}, "-3"},
		{"positive range", TIntRange{Min: Int64(1)}, "int<1, max>"},
		{"literal float", TLiteralFloat{Value: 1.5}, "float(1.5)"},
		{"boring string", TString{}, "string"},
		{"truthy string", TString{Truthy: true, NonEmpty: true}, "truthy-string"},
		{"non-empty lowercase", TString{NonEmpty: true, Lowercase: true}, "non-empty-lowercase-string"},
		{"literal string", TLiteralString{Value: "it's"}, `'it\'s'`},
		{"class string", TClassString{As: "Foo"}, "class-string<Foo>"},
		{"literal class string", TLiteralClassString{Name: "Foo"}, "Foo::class"},
		{"nonnull mixed", TMixed{NonNull: true}, "nonnull"},
		{"truthy mixed", TMixed{Truthiness: TruthinessTruthy, NonNull: true}, "truthy-mixed"},
		{"named with params", TNamedObject{Name: "Box", TypeParams: []*Union{Int()}}, "Box<int>"},
		{"intersection", TNamedObject{Name: "A", Extra: []Atomic{TNamedObject{Name: "B"}}}, "A&B"},
		{"enum case", TEnumCase{Enum: "Suit", Case: "Hearts"}, "Suit::Hearts"},
		{"plain generic", Generic("T", "fn-foo", nil), "T:fn-foo"},
		{"bounded generic", Generic("T", "Foo", Int()), "T:Foo as int"},
		{"callable", TCallable{Params: []FnParam{{Type: Int()}, {Type: String(), Optional: true}}, Return: Bool()}, "callable(int, string=): bool"},
		{"empty array", TKeyed{}, "array<never, never>"},
		{"list", ListOf(Int()), "list<int>"},
		{"non-empty list", TList{Element: String(), NonEmpty: true}, "non-empty-list<string>"},
		{"tuple", Tuple(Int(), String()), "list{0: int, 1: string}"},
		{"generic array", ArrayOf(AnyArrayKey(), Mixed()), "array<array-key, mixed>"},
		{"shape", Shape(map[ArrayKey]*Union{StringKey("a"): Int(), IntKey(0): String()}), "array{0: string, 'a': int}"},
		{"resource", TResource{State: ResourceClosed}, "closed-resource"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.atomic.ID())
		})
	}
}

func TestOpenShapeID(t *testing.T) {
	shape := TKeyed{
		Known: map[ArrayKey]KnownItem{
			StringKey("id"):   {Type: Int()},
			StringKey("name"): {Type: String(), PossiblyUndefined: true},
		},
		Params: &KeyedParams{Key: String(), Value: Mixed()},
	}
	assert.Equal(t, "array{'id': int, 'name'?: string, ...<string, mixed>}", shape.ID())
}

func TestAsNullable(t *testing.T) {
	u := Int().AsNullable()
	assert.Equal(t, "int|null", u.ID())

	again := u.AsNullable()
	assert.Same(t, u, again)

	m := Mixed()
	assert.Same(t, m, m.AsNullable())
}

func TestToNonNullable(t *testing.T) {
	tests := []struct {
		name     string
		input    *Union
		expected string
	}{
		{"drops null", NullableOf(TInt{}), "int"},
		{"mixed becomes nonnull", Mixed(), "nonnull"},
		{"void dropped", NewUnion([]Atomic{TVoid{}, TString{}}), "string"},
		{"only null is never", Null(), "never"},
		{"generic constraint narrowed", Single(Generic("T", "Foo", NullableOf(TInt{}))), "T:Foo as int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.ToNonNullable().ID())
		})
	}
}

func TestToTruthy(t *testing.T) {
	tests := []struct {
		name     string
		input    *Union
		expected string
	}{
		{"bool becomes true", Bool(), "true"},
		{"string becomes truthy", String(), "truthy-string"},
		{"zero removed", NewUnion([]Atomic{TLiteralInt{Value: 0}, TLiteralInt{Value: 3}}), "3"},
		{"null removed", NullableOf(TObject{}), "object"},
		{"mixed becomes truthy", Mixed(), "truthy-mixed"},
		{"empty array removed", NewUnion([]Atomic{TKeyed{}, TInt{}}), "int"},
		{"list becomes non-empty", Single(ListOf(Int())), "non-empty-list<int>"},
		{"range loses zero", Single(IntRange(Int64(0), nil)), "int<1, max>"},
		{"all falsy is never", NewUnion([]Atomic{TFalse{}, TNull{}}), "never"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.ToTruthy().ID())
		})
	}
}

func TestTransformsDoNotMutate(t *testing.T) {
	u := NewUnion([]Atomic{TInt{}, TNull{}})
	before := u.ID()

	_ = u.ToNonNullable()
	_ = u.ToTruthy()
	_ = u.WithPossiblyUndefined(true)

	assert.Equal(t, before, u.ID())
	assert.False(t, u.PossiblyUndefined)
}

func TestPredicatesRecurseIntoGenerics(t *testing.T) {
	arrayBound := Single(Generic("T", "Foo", Single(ListOf(Int()))))
	assert.True(t, arrayBound.HasArray())
	assert.True(t, arrayBound.IsAlwaysArray())

	keyBound := Single(Generic("K", "Foo", AnyArrayKey()))
	assert.True(t, keyBound.IsAlwaysArrayKey())

	nullBound := Single(Generic("T", "Foo", NullableOf(TString{})))
	assert.True(t, nullBound.IsNullable())

	plain := Single(Generic("T", "Foo", nil))
	assert.False(t, plain.IsAlwaysArrayKey())
	assert.False(t, plain.HasArray())
}

func TestTruthinessPredicates(t *testing.T) {
	assert.True(t, NewUnion([]Atomic{TLiteralInt{Value: 0}, TFalse{}, TNull{}, TKeyed{}}).IsAlwaysFalsy())
	assert.True(t, NewUnion([]Atomic{TObject{}, TTrue{}, TLiteralString{Value: "a"}}).IsAlwaysTruthy())
	assert.False(t, String().IsAlwaysTruthy())
	assert.False(t, Object().WithPossiblyUndefined(true).IsAlwaysTruthy())
	assert.False(t, Single(TLiteralString{Value: "0"}).IsAlwaysTruthy())
	assert.True(t, Single(TLiteralString{Value: "0"}).IsAlwaysFalsy())
}
