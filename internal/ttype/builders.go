package ttype

// Constructors for the unions the rest of the analyzer reaches for most.
// Each call returns a fresh union so callers may set flags on it.

func Mixed() *Union { return Single(TMixed{}) }
func NonNull() *Union { return Single(TMixed{NonNull: true}) }
func Never() *Union { return Single(TNever{}) }
func Null() *Union { return Single(TNull{}) }
func Void() *Union { return Single(TVoid{}) }
func Int() *Union { return Single(TInt{}) }
func Float() *Union { return Single(TFloat{}) }
func Bool() *Union { return Single(TBool{}) }
func True() *Union { return Single(TTrue{}) }
func False() *Union { return Single(TFalse{}) }
func String() *Union { return Single(TString{}) }
func AnyArrayKey() *Union { return Single(TArrayKey{}) }
func Scalar() *Union { return Single(TScalar{}) }
func Object() *Union { return Single(TObject{}) }

// LiteralInt returns the union of one integer literal.
func LiteralInt(v int64) *Union { return Single(TLiteralInt{Value: v}) }

// LiteralString returns the union of one string literal.
func LiteralString(v string) *Union { return Single(TLiteralString{Value: v}) }

// NullableOf returns a|null.
func NullableOf(a Atomic) *Union {
	return NewUnion([]Atomic{a, TNull{}})
}

// Named returns an instance of the named class.
func Named(name string) *Union {
	return Single(TNamedObject{Name: name})
}

// EmptyArray returns the literal [] type.
func EmptyArray() *Union {
	return Single(TKeyed{})
}

// ListOf returns list<elem>.
func ListOf(elem *Union) TList {
	return TList{Element: elem}
}

// ArrayOf returns array<key, value>.
func ArrayOf(key, value *Union) TKeyed {
	return TKeyed{Params: &KeyedParams{Key: key, Value: value}}
}

// MixedArray returns array<array-key, mixed>.
func MixedArray() TKeyed {
	return ArrayOf(AnyArrayKey(), Mixed())
}

// PlaceholderArray is the array target of an is_array() check; the
// placeholders are resolved against whatever array the value already is.
func PlaceholderArray() TKeyed {
	return ArrayOf(Single(TPlaceholder{}), Single(TPlaceholder{}))
}

// Shape builds a closed shape from key/type pairs; all items are required.
func Shape(items map[ArrayKey]*Union) TKeyed {
	known := make(map[ArrayKey]KnownItem, len(items))
	for k, v := range items {
		known[k] = KnownItem{Type: v}
	}
	return TKeyed{Known: known, NonEmpty: len(items) > 0}
}

// Tuple builds a list whose elements are all known and required.
func Tuple(elems ...*Union) TList {
	known := make(map[int]KnownItem, len(elems))
	for i, e := range elems {
		known[i] = KnownItem{Type: e}
	}
	return TList{Element: Never(), Known: known, NonEmpty: len(elems) > 0}
}

// IntRange returns an int range; a nil bound is open.
func IntRange(lo, hi *int64) TIntRange {
	return TIntRange{Min: lo, Max: hi}
}

// Int64 returns a pointer to v, for range bounds.
func Int64(v int64) *int64 {
	return &v
}

// Generic returns T of entity bounded by as (mixed when nil).
func Generic(name, entity string, as *Union) TGenericParam {
	if as == nil {
		as = Mixed()
	}
	return TGenericParam{Name: name, As: as, DefiningEntity: entity}
}
