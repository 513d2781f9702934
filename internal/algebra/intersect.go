package algebra

import (
	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// IntersectUnionWithUnion returns the type of values in both a and b.
// ok is false when the two are disjoint; the returned union is then never.
// The result keeps a's flags, except that it is possibly undefined only if
// both inputs are.
func IntersectUnionWithUnion(cb codebase.Codebase, a, b *ttype.Union) (*ttype.Union, bool) {
	x := intersector{cb: cb}
	types := x.unions(a, b)
	if len(types) == 0 {
		return ttype.Never(), false
	}
	u := a.WithTypes(Combine(types, cb, false))
	u.PossiblyUndefined = a.PossiblyUndefined && b.PossiblyUndefined
	if !u.PossiblyUndefined {
		u.PossiblyUndefinedFromTry = false
	}
	return u, true
}

// IntersectAtomicWithAtomic returns the members satisfying both a and b.
// Usually that is one atomic; compound scalars (scalar, numeric,
// array-key, bool) may split into several. ok is false when a and b are
// disjoint.
func IntersectAtomicWithAtomic(cb codebase.Codebase, a, b ttype.Atomic) ([]ttype.Atomic, bool) {
	x := intersector{cb: cb}
	out := x.atomic(a, b)
	return out, len(out) > 0
}

// CanBeIdentical reports whether some value belongs to both a and b.
func CanBeIdentical(cb codebase.Codebase, a, b *ttype.Union) bool {
	_, ok := IntersectUnionWithUnion(cb, a, b)
	return ok
}

type intersector struct {
	cb    codebase.Codebase
	depth int
}

func (x *intersector) unions(a, b *ttype.Union) []ttype.Atomic {
	var out []ttype.Atomic
	for _, ta := range a.Types {
		for _, tb := range b.Types {
			out = append(out, x.atomic(ta, tb)...)
		}
	}
	return out
}

// union intersects two member unions of a compound type.
func (x *intersector) union(a, b *ttype.Union) (*ttype.Union, bool) {
	types := x.unions(a, b)
	if len(types) == 0 {
		return ttype.Never(), false
	}
	return ttype.NewUnion(Combine(types, x.cb, false)), true
}

func (x *intersector) contains(in, cont ttype.Atomic) bool {
	c := comparator{cb: x.cb, depth: x.depth}
	return c.atomic(in, cont, &ComparisonResult{})
}

func (x *intersector) atomic(a, b ttype.Atomic) []ttype.Atomic {
	x.depth++
	defer func() { x.depth-- }()
	if x.depth > MaxDepth {
		return []ttype.Atomic{a}
	}

	if g, ok := a.(ttype.TGenericParam); ok {
		return x.generic(g, b)
	}
	if g, ok := b.(ttype.TGenericParam); ok {
		return x.generic(g, a)
	}

	if x.contains(a, b) {
		return []ttype.Atomic{a}
	}
	if x.contains(b, a) {
		return []ttype.Atomic{b}
	}

	if m, ok := a.(ttype.TMixed); ok {
		return intersectMixed(m, b)
	}
	if m, ok := b.(ttype.TMixed); ok {
		return intersectMixed(m, a)
	}

	if out, handled := x.structural(a, b); handled {
		return out
	}
	if out, handled := x.structural(b, a); handled {
		return out
	}

	if parts := expandCompound(a); parts != nil {
		var out []ttype.Atomic
		for _, p := range parts {
			out = append(out, x.atomic(p, b)...)
		}
		return out
	}
	if parts := expandCompound(b); parts != nil {
		var out []ttype.Atomic
		for _, p := range parts {
			out = append(out, x.atomic(a, p)...)
		}
		return out
	}
	return nil
}

// generic narrows a template parameter's constraint by other.
func (x *intersector) generic(g ttype.TGenericParam, other ttype.Atomic) []ttype.Atomic {
	if o, ok := other.(ttype.TGenericParam); ok && o.Name == g.Name && o.DefiningEntity == g.DefiningEntity {
		return []ttype.Atomic{g}
	}
	as := g.As
	if as == nil {
		as = ttype.Mixed()
	}
	narrowed, ok := x.union(as, ttype.Single(other))
	if !ok {
		return nil
	}
	g.As = narrowed
	return []ttype.Atomic{g}
}

// expandCompound splits the scalars that are themselves unions.
func expandCompound(a ttype.Atomic) []ttype.Atomic {
	switch a.(type) {
	case ttype.TScalar:
		return []ttype.Atomic{ttype.TBool{}, ttype.TInt{}, ttype.TFloat{}, ttype.TString{}}
	case ttype.TNumeric:
		return []ttype.Atomic{ttype.TInt{}, ttype.TFloat{}, ttype.TString{NonEmpty: true, Numeric: true}}
	case ttype.TArrayKey:
		return []ttype.Atomic{ttype.TInt{}, ttype.TString{}}
	case ttype.TBool:
		return []ttype.Atomic{ttype.TTrue{}, ttype.TFalse{}}
	}
	return nil
}

// intersectMixed handles a refined mixed that does not contain other.
func intersectMixed(m ttype.TMixed, other ttype.Atomic) []ttype.Atomic {
	if o, ok := other.(ttype.TMixed); ok {
		if m.Truthiness != ttype.TruthinessUnknown && o.Truthiness != ttype.TruthinessUnknown && m.Truthiness != o.Truthiness {
			return nil
		}
		out := ttype.TMixed{Truthiness: m.Truthiness, NonNull: m.NonNull || o.NonNull}
		if out.Truthiness == ttype.TruthinessUnknown {
			out.Truthiness = o.Truthiness
		}
		if out.Truthiness == ttype.TruthinessTruthy {
			out.NonNull = true
		}
		return []ttype.Atomic{out}
	}

	switch m.Truthiness {
	case ttype.TruthinessTruthy:
		if v, ok := ttype.TruthyVariant(other); ok {
			return []ttype.Atomic{v}
		}
		return nil
	case ttype.TruthinessFalsy:
		out := FalsyVariants(other)
		if m.NonNull {
			out = dropNull(out)
		}
		return out
	}
	if m.NonNull {
		switch other.(type) {
		case ttype.TNull, ttype.TVoid:
			return nil
		}
	}
	return []ttype.Atomic{other}
}

func dropNull(in []ttype.Atomic) []ttype.Atomic {
	out := in[:0]
	for _, a := range in {
		switch a.(type) {
		case ttype.TNull, ttype.TVoid:
			continue
		}
		out = append(out, a)
	}
	return out
}

// FalsyVariants returns the falsy values of a, or nil when a is always
// truthy.
func FalsyVariants(a ttype.Atomic) []ttype.Atomic {
	if ttype.IsAtomicAlwaysFalsy(a) {
		return []ttype.Atomic{a}
	}
	if ttype.IsAtomicAlwaysTruthy(a) {
		return nil
	}
	zero := ttype.TLiteralInt{Value: 0}
	zeroF := ttype.TLiteralFloat{Value: 0}
	empty := ttype.TLiteralString{Value: ""}
	zeroS := ttype.TLiteralString{Value: "0"}

	switch t := a.(type) {
	case ttype.TBool:
		return []ttype.Atomic{ttype.TFalse{}}
	case ttype.TInt:
		return []ttype.Atomic{zero}
	case ttype.TIntRange:
		if rangeContains(t, 0) {
			return []ttype.Atomic{zero}
		}
		return nil
	case ttype.TFloat:
		return []ttype.Atomic{zeroF}
	case ttype.TString:
		if t.NonEmpty {
			return []ttype.Atomic{zeroS}
		}
		if t.Numeric {
			return []ttype.Atomic{zeroS}
		}
		return []ttype.Atomic{empty, zeroS}
	case ttype.TArrayKey:
		return []ttype.Atomic{zero, empty, zeroS}
	case ttype.TNumeric:
		return []ttype.Atomic{zero, zeroF, zeroS}
	case ttype.TScalar:
		return []ttype.Atomic{ttype.TFalse{}, zero, zeroF, empty, zeroS}
	case ttype.TList, ttype.TKeyed, ttype.TIterable:
		return []ttype.Atomic{ttype.TKeyed{}}
	case ttype.TMixed:
		return []ttype.Atomic{ttype.TMixed{Truthiness: ttype.TruthinessFalsy}}
	case ttype.TGenericParam:
		if t.As == nil {
			return []ttype.Atomic{t}
		}
		var types []ttype.Atomic
		for _, m := range t.As.Types {
			types = append(types, FalsyVariants(m)...)
		}
		if len(types) == 0 {
			return nil
		}
		t.As = ttype.NewUnion(types)
		return []ttype.Atomic{t}
	case ttype.TReference, ttype.TTypeVariable, ttype.TConditional, ttype.TDerived, ttype.TPlaceholder:
		return []ttype.Atomic{a}
	}
	return nil
}

// structural intersects a and b when a's kind knows how. handled is false
// when the pair should be tried the other way round or by expansion.
func (x *intersector) structural(a, b ttype.Atomic) (out []ttype.Atomic, handled bool) {
	switch at := a.(type) {
	case ttype.TReference, ttype.TTypeVariable, ttype.TConditional, ttype.TDerived:
		return []ttype.Atomic{b}, true
	case ttype.TIntRange:
		if bt, ok := b.(ttype.TIntRange); ok {
			r, ok := overlap(at, bt)
			if !ok {
				return nil, true
			}
			return []ttype.Atomic{r}, true
		}
	case ttype.TString:
		switch bt := b.(type) {
		case ttype.TString:
			s := ttype.TString{
				Truthy:    at.Truthy || bt.Truthy,
				NonEmpty:  at.NonEmpty || bt.NonEmpty || at.Truthy || bt.Truthy,
				Numeric:   at.Numeric || bt.Numeric,
				Lowercase: at.Lowercase || bt.Lowercase,
			}
			if s.Numeric {
				s.NonEmpty = true
			}
			return []ttype.Atomic{s}, true
		case ttype.TNumeric:
			s := at
			s.Numeric, s.NonEmpty = true, true
			return []ttype.Atomic{s}, true
		case ttype.TClassString:
			if at.Numeric {
				return nil, true
			}
			return []ttype.Atomic{bt}, true
		case ttype.TCallable:
			return []ttype.Atomic{at}, true
		}
	case ttype.TClassString:
		if _, ok := b.(ttype.TClassString); ok {
			// Neither extends the other; an interface bound can still
			// overlap, so keep the receiver.
			return []ttype.Atomic{at}, true
		}
	case ttype.TList:
		switch bt := b.(type) {
		case ttype.TList:
			return x.lists(at, bt), true
		case ttype.TKeyed:
			bl, ok := x.keyedAsListBound(bt)
			if !ok {
				return nil, true
			}
			return x.lists(at, bl), true
		case ttype.TIterable:
			return x.listWithIterable(at, bt), true
		case ttype.TCallable:
			return []ttype.Atomic{at}, true
		}
	case ttype.TKeyed:
		switch bt := b.(type) {
		case ttype.TKeyed:
			return x.keyed(at, bt), true
		case ttype.TIterable:
			return x.keyedWithIterable(at, bt), true
		case ttype.TCallable:
			return []ttype.Atomic{at}, true
		}
	case ttype.TIterable:
		switch bt := b.(type) {
		case ttype.TIterable:
			k, okK := x.union(at.Key, bt.Key)
			v, okV := x.union(at.Value, bt.Value)
			if !okK || !okV {
				return []ttype.Atomic{ttype.TKeyed{}}, true
			}
			return []ttype.Atomic{ttype.TIterable{Key: k, Value: v}}, true
		case ttype.TNamedObject:
			c := comparator{cb: x.cb}
			if c.namedSatisfies(bt, "Traversable") {
				return []ttype.Atomic{bt}, true
			}
			if x.isFinalClass(bt.Name) {
				return nil, true
			}
			n := bt
			n.Extra = append(append([]ttype.Atomic(nil), bt.Extra...), ttype.TNamedObject{Name: "Traversable"})
			return []ttype.Atomic{n}, true
		}
	case ttype.TNamedObject:
		switch bt := b.(type) {
		case ttype.TNamedObject:
			return x.named(at, bt), true
		case ttype.TCallable:
			return []ttype.Atomic{at}, true
		case ttype.TEnum, ttype.TEnumCase:
			return nil, true
		}
	case ttype.TObject:
		if _, ok := b.(ttype.TCallable); ok {
			return []ttype.Atomic{ttype.TNamedObject{Name: "Closure"}}, true
		}
	}
	return nil, false
}

func overlap(a, b ttype.TIntRange) (ttype.TIntRange, bool) {
	out := ttype.TIntRange{Min: a.Min, Max: a.Max}
	if b.Min != nil && (out.Min == nil || *b.Min > *out.Min) {
		out.Min = b.Min
	}
	if b.Max != nil && (out.Max == nil || *b.Max < *out.Max) {
		out.Max = b.Max
	}
	if out.Min != nil && out.Max != nil && *out.Min > *out.Max {
		return ttype.TIntRange{}, false
	}
	return out, true
}

func (x *intersector) isFinalClass(name string) bool {
	return x.cb != nil && x.cb.ClassExists(name) && x.cb.IsFinal(name)
}

func (x *intersector) isInterfaceLike(name string) bool {
	if x.cb == nil || !x.cb.ClassExists(name) {
		return true
	}
	return x.cb.IsInterface(name)
}

// named intersects two unrelated named objects. Two classes never share an
// instance; a class and an interface do unless the class is final.
func (x *intersector) named(a, b ttype.TNamedObject) []ttype.Atomic {
	aIface, bIface := x.isInterfaceLike(a.Name), x.isInterfaceLike(b.Name)
	switch {
	case !aIface && !bIface:
		return nil
	case !aIface && x.isFinalClass(a.Name):
		return nil
	case !bIface && x.isFinalClass(b.Name):
		return nil
	}
	base, extra := a, b
	if aIface && !bIface {
		base, extra = b, a
	}
	out := base
	out.Extra = append(append([]ttype.Atomic(nil), base.Extra...), ttype.TNamedObject{Name: extra.Name, TypeParams: extra.TypeParams})
	out.Extra = append(out.Extra, extra.Extra...)
	return []ttype.Atomic{out}
}

// lists intersects two lists element-wise. A required index one side
// cannot hold makes the lists disjoint.
func (x *intersector) lists(a, b ttype.TList) []ttype.Atomic {
	out := ttype.TList{Element: ttype.Never(), NonEmpty: a.NonEmpty || b.NonEmpty}
	if a.HasFallback() && b.HasFallback() {
		if e, ok := x.union(a.Element, b.Element); ok {
			out.Element = e
		}
	}
	switch {
	case a.KnownCount != nil && b.KnownCount != nil:
		if *a.KnownCount != *b.KnownCount {
			return nil
		}
		out.KnownCount = a.KnownCount
	case a.KnownCount != nil:
		out.KnownCount = a.KnownCount
	case b.KnownCount != nil:
		out.KnownCount = b.KnownCount
	}

	indices := map[int]struct{}{}
	for i := range a.Known {
		indices[i] = struct{}{}
	}
	for i := range b.Known {
		indices[i] = struct{}{}
	}
	for idx := range indices {
		key := ttype.IntKey(int64(idx))
		at, aOpt, aok := a.ValueAt(key)
		bt, bOpt, bok := b.ValueAt(key)
		if !aok || !bok {
			if (aok && !aOpt) || (bok && !bOpt) {
				return nil
			}
			continue
		}
		t, ok := x.union(at, bt)
		required := !aOpt || !bOpt
		if !ok {
			if required {
				return nil
			}
			continue
		}
		if out.Known == nil {
			out.Known = map[int]ttype.KnownItem{}
		}
		out.Known[idx] = ttype.KnownItem{Type: t, PossiblyUndefined: !required}
	}

	if !out.HasFallback() && len(out.Known) == 0 {
		if out.NonEmpty {
			return nil
		}
		return []ttype.Atomic{ttype.TKeyed{}}
	}
	return []ttype.Atomic{out}
}

// keyed intersects two keyed arrays key-wise.
func (x *intersector) keyed(a, b ttype.TKeyed) []ttype.Atomic {
	out := ttype.TKeyed{NonEmpty: a.NonEmpty || b.NonEmpty}
	if a.Params != nil && b.Params != nil {
		k, okK := x.union(a.Params.Key, b.Params.Key)
		v, okV := x.union(a.Params.Value, b.Params.Value)
		if okK && okV {
			out.Params = &ttype.KeyedParams{Key: k, Value: v}
		}
	}

	keys := map[ttype.ArrayKey]struct{}{}
	for k := range a.Known {
		keys[k] = struct{}{}
	}
	for k := range b.Known {
		keys[k] = struct{}{}
	}
	for key := range keys {
		at, aOpt, aok := a.ValueAt(key)
		bt, bOpt, bok := b.ValueAt(key)
		if !aok || !bok {
			if (aok && !aOpt) || (bok && !bOpt) {
				return nil
			}
			continue
		}
		t, ok := x.union(at, bt)
		required := !aOpt || !bOpt
		if !ok {
			if required {
				return nil
			}
			continue
		}
		if out.Known == nil {
			out.Known = map[ttype.ArrayKey]ttype.KnownItem{}
		}
		out.Known[key] = ttype.KnownItem{Type: t, PossiblyUndefined: !required}
	}

	if out.IsEmptyArray() && out.NonEmpty {
		return nil
	}
	return []ttype.Atomic{out}
}

// keyedAsListBound views a keyed array as the list it constrains: string
// and negative keys cannot occur in a list, so required ones make the pair
// disjoint and optional ones are dropped.
func (x *intersector) keyedAsListBound(k ttype.TKeyed) (ttype.TList, bool) {
	out := ttype.TList{Element: ttype.Never(), NonEmpty: k.NonEmpty}
	if k.Params != nil && keyAdmitsListIndex(k.Params.Key) {
		out.Element = k.Params.Value
	}
	for key, item := range k.Known {
		if key.IsString || key.Int < 0 {
			if !item.PossiblyUndefined {
				return ttype.TList{}, false
			}
			continue
		}
		if out.Known == nil {
			out.Known = map[int]ttype.KnownItem{}
		}
		out.Known[int(key.Int)] = item
	}
	return out, true
}

func keyAdmitsListIndex(u *ttype.Union) bool {
	for _, a := range u.Types {
		switch t := a.(type) {
		case ttype.TInt, ttype.TArrayKey, ttype.TMixed, ttype.TScalar, ttype.TNumeric, ttype.TPlaceholder:
			return true
		case ttype.TLiteralInt:
			if t.Value >= 0 {
				return true
			}
		case ttype.TIntRange:
			if t.Max == nil || *t.Max >= 0 {
				return true
			}
		case ttype.TGenericParam:
			if t.As == nil || keyAdmitsListIndex(t.As) {
				return true
			}
		}
	}
	return false
}

func (x *intersector) listWithIterable(l ttype.TList, it ttype.TIterable) []ttype.Atomic {
	if !keyAdmitsListIndex(it.Key) {
		return []ttype.Atomic{ttype.TKeyed{}}
	}
	out := ttype.TList{Element: ttype.Never(), NonEmpty: l.NonEmpty, KnownCount: l.KnownCount}
	if l.HasFallback() {
		if e, ok := x.union(l.Element, it.Value); ok {
			out.Element = e
		}
	}
	for idx, item := range l.Known {
		t, ok := x.union(item.Type, it.Value)
		if !ok {
			if !item.PossiblyUndefined {
				return nil
			}
			continue
		}
		if out.Known == nil {
			out.Known = map[int]ttype.KnownItem{}
		}
		out.Known[idx] = ttype.KnownItem{Type: t, PossiblyUndefined: item.PossiblyUndefined}
	}
	if !out.HasFallback() && len(out.Known) == 0 {
		if out.IsDefinitelyNonEmpty() {
			return nil
		}
		return []ttype.Atomic{ttype.TKeyed{}}
	}
	return []ttype.Atomic{out}
}

func (x *intersector) keyedWithIterable(k ttype.TKeyed, it ttype.TIterable) []ttype.Atomic {
	out := ttype.TKeyed{NonEmpty: k.NonEmpty}
	if k.Params != nil {
		kk, okK := x.union(k.Params.Key, it.Key)
		vv, okV := x.union(k.Params.Value, it.Value)
		if okK && okV {
			out.Params = &ttype.KeyedParams{Key: kk, Value: vv}
		}
	}
	for key, item := range k.Known {
		keyOK := IsContainedBy(x.cb, ttype.Single(key.ToAtomic()), it.Key, nil)
		t, ok := x.union(item.Type, it.Value)
		if !ok || !keyOK {
			if !item.PossiblyUndefined {
				return nil
			}
			continue
		}
		if out.Known == nil {
			out.Known = map[ttype.ArrayKey]ttype.KnownItem{}
		}
		out.Known[key] = ttype.KnownItem{Type: t, PossiblyUndefined: item.PossiblyUndefined}
	}
	if out.IsEmptyArray() && out.NonEmpty {
		return nil
	}
	return []ttype.Atomic{out}
}
