package ttype

import (
	"slices"
	"strconv"
	"strings"
)

// ArrayKey is a post-coercion PHP array key: an integer or a string.
// It is comparable and can be used as a map key.
type ArrayKey struct {
	IsString bool
	Int      int64
	Str      string
}

// IntKey creates an integer key.
func IntKey(i int64) ArrayKey {
	return ArrayKey{Int: i}
}

// StringKey creates a string key without coercion. Use CoerceStringKey for
// keys taken from source literals.
func StringKey(s string) ArrayKey {
	return ArrayKey{IsString: true, Str: s}
}

// String renders the key the way shape ids show it: 0 or 'name'.
func (k ArrayKey) String() string {
	if k.IsString {
		return quoteKey(k.Str)
	}
	return strconv.FormatInt(k.Int, 10)
}

// ToAtomic returns the literal type of the key.
func (k ArrayKey) ToAtomic() Atomic {
	if k.IsString {
		return TLiteralString{Value: k.Str}
	}
	return TLiteralInt{Value: k.Int}
}

// CompareKeys orders integer keys before string keys, integers ascending
// and strings by byte order.
func CompareKeys(a, b ArrayKey) int {
	switch {
	case !a.IsString && !b.IsString:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		}
		return 0
	case !a.IsString:
		return -1
	case !b.IsString:
		return 1
	default:
		return strings.Compare(a.Str, b.Str)
	}
}

// KnownItem is a compile-time known entry of a shape or list.
type KnownItem struct {
	PossiblyUndefined bool
	Type              *Union
}

// KeyedParams is the fallback (key, value) pair of an open shape.
type KeyedParams struct {
	Key   *Union
	Value *Union
}

// TList is an array with sequential integer keys starting at 0.
//
// Element is the type of entries beyond Known; never means the list has no
// entries other than Known.
type TList struct {
	Element    *Union
	Known      map[int]KnownItem
	KnownCount *int
	NonEmpty   bool
}

// TKeyed is an array with arbitrary keys. A nil Params makes the shape
// closed: only keys in Known can exist.
type TKeyed struct {
	Known    map[ArrayKey]KnownItem
	Params   *KeyedParams
	NonEmpty bool
}

// KnownIndices returns the known element indices in ascending order.
func (t TList) KnownIndices() []int {
	idx := make([]int, 0, len(t.Known))
	for i := range t.Known {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

// HasFallback reports whether entries beyond Known may exist.
func (t TList) HasFallback() bool {
	return t.Element != nil && !t.Element.IsNever()
}

// IsDefinitelyNonEmpty reports whether the list always has an entry.
func (t TList) IsDefinitelyNonEmpty() bool {
	if t.NonEmpty {
		return true
	}
	for _, item := range t.Known {
		if !item.PossiblyUndefined {
			return true
		}
	}
	return t.KnownCount != nil && *t.KnownCount > 0
}

// SortedKeys returns the known keys in CompareKeys order.
func (t TKeyed) SortedKeys() []ArrayKey {
	keys := make([]ArrayKey, 0, len(t.Known))
	for k := range t.Known {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// IsClosed reports whether only Known keys can exist.
func (t TKeyed) IsClosed() bool {
	return t.Params == nil
}

// IsEmptyArray reports whether this is the literal empty array [].
func (t TKeyed) IsEmptyArray() bool {
	return t.Params == nil && len(t.Known) == 0
}

// IsDefinitelyNonEmpty reports whether the array always has an entry.
func (t TKeyed) IsDefinitelyNonEmpty() bool {
	if t.NonEmpty {
		return true
	}
	for _, item := range t.Known {
		if !item.PossiblyUndefined {
			return true
		}
	}
	return false
}

func (t TList) ID() string {
	var b strings.Builder
	if len(t.Known) == 0 {
		if t.NonEmpty {
			b.WriteString("non-empty-")
		}
		b.WriteString("list<")
		b.WriteString(t.elementID())
		b.WriteByte('>')
	} else {
		b.WriteString("list{")
		for i, idx := range t.KnownIndices() {
			if i > 0 {
				b.WriteString(", ")
			}
			item := t.Known[idx]
			b.WriteString(strconv.Itoa(idx))
			if item.PossiblyUndefined {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			b.WriteString(item.Type.ID())
		}
		if t.HasFallback() {
			b.WriteString(", ...<")
			b.WriteString(t.Element.ID())
			b.WriteByte('>')
		}
		b.WriteByte('}')
	}
	if t.KnownCount != nil {
		b.WriteString("[count=")
		b.WriteString(strconv.Itoa(*t.KnownCount))
		b.WriteByte(']')
	}
	return b.String()
}

func (t TList) elementID() string {
	if t.Element == nil {
		return "never"
	}
	return t.Element.ID()
}

func (t TKeyed) ID() string {
	var b strings.Builder
	if len(t.Known) == 0 {
		if t.Params == nil {
			return "array<never, never>"
		}
		if t.NonEmpty {
			b.WriteString("non-empty-")
		}
		b.WriteString("array<")
		b.WriteString(t.Params.Key.ID())
		b.WriteString(", ")
		b.WriteString(t.Params.Value.ID())
		b.WriteByte('>')
		return b.String()
	}
	b.WriteString("array{")
	for i, k := range t.SortedKeys() {
		if i > 0 {
			b.WriteString(", ")
		}
		item := t.Known[k]
		b.WriteString(k.String())
		if item.PossiblyUndefined {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		b.WriteString(item.Type.ID())
	}
	if t.Params != nil {
		b.WriteString(", ...<")
		b.WriteString(t.Params.Key.ID())
		b.WriteString(", ")
		b.WriteString(t.Params.Value.ID())
		b.WriteByte('>')
	}
	b.WriteByte('}')
	return b.String()
}

// CloneKnown copies a list's known elements so the copy can be modified.
func (t TList) CloneKnown() map[int]KnownItem {
	out := make(map[int]KnownItem, len(t.Known))
	for k, v := range t.Known {
		out[k] = v
	}
	return out
}

// CloneKnown copies a shape's known items so the copy can be modified.
func (t TKeyed) CloneKnown() map[ArrayKey]KnownItem {
	out := make(map[ArrayKey]KnownItem, len(t.Known))
	for k, v := range t.Known {
		out[k] = v
	}
	return out
}

// AsKeyed views a list as a keyed array with integer keys. The fallback
// element type becomes (int, element) parameters.
func (t TList) AsKeyed() TKeyed {
	known := make(map[ArrayKey]KnownItem, len(t.Known))
	for i, item := range t.Known {
		known[IntKey(int64(i))] = item
	}
	out := TKeyed{Known: known, NonEmpty: t.NonEmpty}
	if t.HasFallback() {
		out.Params = &KeyedParams{Key: Single(TIntRange{Min: ptrInt64(0)}), Value: t.Element}
	}
	return out
}

// ValueAt returns the type stored under key, whether the key may be absent
// and whether the array can hold the key at all.
func (t TList) ValueAt(key ArrayKey) (typ *Union, possiblyUndefined, ok bool) {
	if key.IsString || key.Int < 0 {
		return nil, false, false
	}
	if item, found := t.Known[int(key.Int)]; found {
		return item.Type, item.PossiblyUndefined, true
	}
	if t.HasFallback() {
		return t.Element, true, true
	}
	return nil, false, false
}

// ValueAt returns the type stored under key, whether the key may be absent
// and whether the array can hold the key at all.
func (t TKeyed) ValueAt(key ArrayKey) (typ *Union, possiblyUndefined, ok bool) {
	if item, found := t.Known[key]; found {
		return item.Type, item.PossiblyUndefined, true
	}
	if t.Params != nil && keyFitsUnion(key, t.Params.Key) {
		return t.Params.Value, true, true
	}
	return nil, false, false
}

// keyFitsUnion is a structural check used before the comparator is
// available: does any member of keyType admit key.
func keyFitsUnion(key ArrayKey, keyType *Union) bool {
	for _, a := range keyType.Types {
		switch t := a.(type) {
		case TArrayKey, TMixed, TScalar, TPlaceholder:
			return true
		case TInt:
			if !key.IsString {
				return true
			}
		case TLiteralInt:
			if !key.IsString && key.Int == t.Value {
				return true
			}
		case TIntRange:
			if !key.IsString && (t.Min == nil || key.Int >= *t.Min) && (t.Max == nil || key.Int <= *t.Max) {
				return true
			}
		case TString:
			if key.IsString && (!t.NonEmpty || key.Str != "") && (!t.Truthy || (key.Str != "" && key.Str != "0")) {
				return true
			}
		case TLiteralString:
			if key.IsString && key.Str == t.Value {
				return true
			}
		case TClassString, TLiteralClassString:
			if key.IsString {
				return true
			}
		case TGenericParam:
			if t.As != nil && keyFitsUnion(key, t.As) {
				return true
			}
		}
	}
	return false
}

func ptrInt64(v int64) *int64 {
	return &v
}
