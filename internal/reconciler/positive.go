package reconciler

import (
	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/ttype"
)

func (rn *run) positive(existing *ttype.Union) (*ttype.Union, verdict) {
	a := rn.assertion()
	switch a.Kind {
	case assertion.IsType, assertion.IsIdentical:
		return rn.isType(existing, a.Type)
	case assertion.IsEqual:
		if _, ok := a.Type.(ttype.TNull); ok {
			return rn.looseNull(existing)
		}
		return rn.isType(existing, a.Type)
	case assertion.IsIsset:
		return rn.isset(existing)
	case assertion.Falsy, assertion.Empty:
		return rn.falsy(existing)
	case assertion.HasArrayKey:
		return rn.hasKey(existing, a.Key, false)
	case assertion.HasNonnullEntryForKey:
		return rn.hasKey(existing, a.Key, true)
	case assertion.NonEmptyCountable:
		return rn.nonEmptyCountable(existing)
	case assertion.HasExactCount:
		return rn.exactCount(existing, a.Count)
	case assertion.InArray:
		return rn.inArray(existing, a.Values)
	case assertion.IsCountable:
		return rn.countable(existing)
	}
	return existing, verdictNone
}

// isType narrows existing to target: the direct table first, structural
// intersection otherwise.
func (rn *run) isType(existing *ttype.Union, target ttype.Atomic) (*ttype.Union, verdict) {
	if target == nil {
		return existing, verdictNone
	}
	if g, ok := target.(ttype.TGenericParam); ok {
		return rn.isGeneric(existing, g)
	}

	var out *ttype.Union
	if types, ok := rn.simple(existing, target); ok {
		out = rn.combine(existing, types)
	} else {
		res, ok := algebra.IntersectUnionWithUnion(rn.r.cb, existing, ttype.Single(target))
		if !ok {
			return existing.WithTypes(nil), verdictImpossible
		}
		out = stripPlaceholders(res)
	}
	if assertionDefines(target) {
		out = out.WithPossiblyUndefined(false)
	}
	return out, verdictFor(existing, out)
}

// isGeneric narrows to a template type: the values must satisfy its
// constraint, and when nothing more specific is known the template itself
// is the answer.
func (rn *run) isGeneric(existing *ttype.Union, g ttype.TGenericParam) (*ttype.Union, verdict) {
	if existing.IsPlainMixed() {
		return existing.WithTypes([]ttype.Atomic{g}), verdictNone
	}
	if g.As == nil || g.As.IsPlainMixed() {
		return existing, verdictNone
	}
	res, ok := algebra.IntersectUnionWithUnion(rn.r.cb, existing, g.As)
	if !ok {
		return existing.WithTypes(nil), verdictImpossible
	}
	return res, verdictNone
}

func assertionDefines(target ttype.Atomic) bool {
	switch target.(type) {
	case ttype.TNull, ttype.TVoid, ttype.TMixed:
		return false
	}
	return true
}

// simple answers type assertions whose target is one fixed atomic. ok is
// false when target is not in the table.
func (rn *run) simple(existing *ttype.Union, target ttype.Atomic) ([]ttype.Atomic, bool) {
	if !inSimpleTable(target) {
		return nil, false
	}
	var out []ttype.Atomic
	for _, m := range existing.Types {
		out = append(out, rn.simpleMember(m, target)...)
	}
	return out, true
}

func inSimpleTable(target ttype.Atomic) bool {
	switch t := target.(type) {
	case ttype.TObject, ttype.TBool, ttype.TFloat, ttype.TArrayKey, ttype.TNull,
		ttype.TTrue, ttype.TFalse, ttype.TInt, ttype.TIntRange:
		return true
	case ttype.TString:
		return t.IsBoring()
	case ttype.TResource:
		return t.State == ttype.ResourceUnknown
	case ttype.TMixed:
		return t.NonNull && t.Truthiness == ttype.TruthinessUnknown
	case ttype.TList:
		return len(t.Known) == 0 && t.Element != nil && t.Element.IsPlainMixed() && !t.NonEmpty
	case ttype.TKeyed:
		return isPlaceholderArray(t)
	}
	return false
}

func isPlaceholderArray(t ttype.TKeyed) bool {
	if len(t.Known) != 0 || t.Params == nil {
		return false
	}
	_, k := t.Params.Key.Single()
	_, v := t.Params.Value.Single()
	if !k || !v {
		return false
	}
	_, kp := t.Params.Key.Types[0].(ttype.TPlaceholder)
	_, vp := t.Params.Value.Types[0].(ttype.TPlaceholder)
	return kp && vp
}

// simpleMember maps one existing member under a table target.
func (rn *run) simpleMember(m, target ttype.Atomic) []ttype.Atomic {
	if g, ok := m.(ttype.TGenericParam); ok {
		return rn.simpleGeneric(g, target)
	}
	if _, ok := m.(ttype.TNever); ok {
		return nil
	}

	switch target.(type) {
	case ttype.TObject:
		return simpleObject(m)
	case ttype.TBool, ttype.TTrue, ttype.TFalse:
		return simpleBool(m, target)
	case ttype.TFloat:
		return simpleFloat(m)
	case ttype.TInt, ttype.TIntRange:
		return rn.simpleInt(m, target)
	case ttype.TString:
		return simpleString(m)
	case ttype.TArrayKey:
		return simpleArrayKey(m)
	case ttype.TNull:
		return simpleNull(m)
	case ttype.TResource:
		switch m.(type) {
		case ttype.TResource:
			return []ttype.Atomic{m}
		case ttype.TMixed:
			return []ttype.Atomic{ttype.TResource{}}
		}
		return nil
	case ttype.TMixed:
		return ttype.Single(m).ToNonNullable().Types
	case ttype.TList:
		return rn.simpleList(m, target)
	case ttype.TKeyed:
		return simpleArray(m)
	}
	return []ttype.Atomic{m}
}

func (rn *run) simpleGeneric(g ttype.TGenericParam, target ttype.Atomic) []ttype.Atomic {
	if rn.tooDeep() {
		return []ttype.Atomic{g}
	}
	as := g.As
	if as == nil {
		as = ttype.Mixed()
	}
	inner := rn.nested()
	var types []ttype.Atomic
	for _, m := range as.Types {
		types = append(types, inner.simpleMember(m, target)...)
	}
	if len(types) == 0 {
		return nil
	}
	g.As = ttype.NewUnion(algebra.Combine(types, rn.r.cb, false))
	return []ttype.Atomic{g}
}

func simpleObject(m ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TObject, ttype.TNamedObject, ttype.TEnum, ttype.TEnumCase, ttype.TClosureAlias:
		return []ttype.Atomic{m}
	case ttype.TMixed:
		if t.Truthiness == ttype.TruthinessFalsy {
			return nil
		}
		return []ttype.Atomic{ttype.TObject{}}
	case ttype.TCallable:
		return []ttype.Atomic{ttype.TNamedObject{Name: "Closure"}}
	case ttype.TIterable:
		return []ttype.Atomic{ttype.TNamedObject{Name: "Traversable"}}
	}
	return nil
}

func simpleBool(m, target ttype.Atomic) []ttype.Atomic {
	var pool []ttype.Atomic
	switch t := m.(type) {
	case ttype.TBool, ttype.TScalar:
		pool = []ttype.Atomic{ttype.TTrue{}, ttype.TFalse{}}
	case ttype.TTrue, ttype.TFalse:
		pool = []ttype.Atomic{m}
	case ttype.TMixed:
		switch t.Truthiness {
		case ttype.TruthinessTruthy:
			pool = []ttype.Atomic{ttype.TTrue{}}
		case ttype.TruthinessFalsy:
			pool = []ttype.Atomic{ttype.TFalse{}}
		default:
			pool = []ttype.Atomic{ttype.TTrue{}, ttype.TFalse{}}
		}
	default:
		return nil
	}
	var out []ttype.Atomic
	for _, p := range pool {
		switch target.(type) {
		case ttype.TTrue:
			if _, ok := p.(ttype.TTrue); !ok {
				continue
			}
		case ttype.TFalse:
			if _, ok := p.(ttype.TFalse); !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// simpleInt narrows one member to int or to an integer range.
func (rn *run) simpleInt(m, target ttype.Atomic) []ttype.Atomic {
	var lo, hi *int64
	if r, ok := target.(ttype.TIntRange); ok {
		lo, hi = r.Min, r.Max
	}
	switch t := m.(type) {
	case ttype.TInt, ttype.TScalar, ttype.TNumeric, ttype.TArrayKey:
		return []ttype.Atomic{target}
	case ttype.TLiteralInt:
		if inBounds(t.Value, lo, hi) {
			return []ttype.Atomic{m}
		}
		return nil
	case ttype.TIntRange:
		return clampRange(t.Min, t.Max, lo, hi)
	case ttype.TMixed:
		switch t.Truthiness {
		case ttype.TruthinessUnknown:
			return []ttype.Atomic{target}
		case ttype.TruthinessFalsy:
			if inBounds(0, lo, hi) {
				return []ttype.Atomic{ttype.TLiteralInt{Value: 0}}
			}
			return nil
		}
	}
	out, _ := algebra.IntersectAtomicWithAtomic(rn.r.cb, m, target)
	return out
}

func inBounds(v int64, lo, hi *int64) bool {
	return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
}

// clampRange intersects [from, to] with [lo, hi]; nil bounds are open.
func clampRange(from, to, lo, hi *int64) []ttype.Atomic {
	if lo != nil && (from == nil || *lo > *from) {
		from = lo
	}
	if hi != nil && (to == nil || *hi < *to) {
		to = hi
	}
	switch {
	case from == nil && to == nil:
		return []ttype.Atomic{ttype.TInt{}}
	case from != nil && to != nil && *from > *to:
		return nil
	case from != nil && to != nil && *from == *to:
		return []ttype.Atomic{ttype.TLiteralInt{Value: *from}}
	}
	return []ttype.Atomic{ttype.IntRange(from, to)}
}

func simpleFloat(m ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TFloat, ttype.TLiteralFloat:
		return []ttype.Atomic{m}
	case ttype.TScalar, ttype.TNumeric:
		return []ttype.Atomic{ttype.TFloat{}}
	case ttype.TMixed:
		if t.Truthiness == ttype.TruthinessFalsy {
			return []ttype.Atomic{ttype.TLiteralFloat{Value: 0}}
		}
		return []ttype.Atomic{ttype.TFloat{}}
	}
	return nil
}

func simpleString(m ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TString, ttype.TLiteralString, ttype.TClassString, ttype.TLiteralClassString:
		return []ttype.Atomic{m}
	case ttype.TNumeric:
		return []ttype.Atomic{ttype.TString{NonEmpty: true, Numeric: true}}
	case ttype.TScalar, ttype.TArrayKey:
		return []ttype.Atomic{ttype.TString{}}
	case ttype.TCallable:
		return []ttype.Atomic{ttype.TString{NonEmpty: true}}
	case ttype.TMixed:
		switch t.Truthiness {
		case ttype.TruthinessTruthy:
			return []ttype.Atomic{ttype.TString{NonEmpty: true, Truthy: true}}
		case ttype.TruthinessFalsy:
			return []ttype.Atomic{ttype.TLiteralString{Value: ""}, ttype.TLiteralString{Value: "0"}}
		}
		return []ttype.Atomic{ttype.TString{}}
	}
	return nil
}

func simpleArrayKey(m ttype.Atomic) []ttype.Atomic {
	switch m.(type) {
	case ttype.TInt, ttype.TLiteralInt, ttype.TIntRange, ttype.TString, ttype.TLiteralString,
		ttype.TClassString, ttype.TLiteralClassString, ttype.TArrayKey:
		return []ttype.Atomic{m}
	case ttype.TScalar, ttype.TMixed:
		return []ttype.Atomic{ttype.TArrayKey{}}
	case ttype.TNumeric:
		return []ttype.Atomic{ttype.TInt{}, ttype.TString{NonEmpty: true, Numeric: true}}
	}
	return nil
}

func simpleNull(m ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TNull:
		return []ttype.Atomic{m}
	case ttype.TVoid:
		return []ttype.Atomic{ttype.TNull{}}
	case ttype.TMixed:
		if t.NonNull || t.Truthiness == ttype.TruthinessTruthy {
			return nil
		}
		return []ttype.Atomic{ttype.TNull{}}
	}
	return nil
}

func (rn *run) simpleList(m, target ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TList:
		return []ttype.Atomic{m}
	case ttype.TKeyed:
		out, _ := algebra.IntersectAtomicWithAtomic(rn.r.cb, t, target)
		return out
	case ttype.TIterable:
		return []ttype.Atomic{ttype.ListOf(t.Value)}
	case ttype.TMixed:
		if t.Truthiness == ttype.TruthinessFalsy {
			return []ttype.Atomic{ttype.TKeyed{}}
		}
		l := ttype.ListOf(ttype.Mixed())
		l.NonEmpty = t.Truthiness == ttype.TruthinessTruthy
		return []ttype.Atomic{l}
	}
	return nil
}

func simpleArray(m ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TList, ttype.TKeyed:
		return []ttype.Atomic{m}
	case ttype.TIterable:
		key := ttype.AnyArrayKey()
		if t.Key.IsAlwaysArrayKey() {
			key = t.Key
		}
		return []ttype.Atomic{ttype.ArrayOf(key, t.Value)}
	case ttype.TMixed:
		if t.Truthiness == ttype.TruthinessFalsy {
			return []ttype.Atomic{ttype.TKeyed{}}
		}
		a := ttype.MixedArray()
		a.NonEmpty = t.Truthiness == ttype.TruthinessTruthy
		return []ttype.Atomic{a}
	}
	return nil
}

// stripPlaceholders replaces unresolved generic slots left by an
// intersection with their widest concrete form.
func stripPlaceholders(u *ttype.Union) *ttype.Union {
	changed := false
	types := make([]ttype.Atomic, len(u.Types))
	for i, t := range u.Types {
		types[i] = t
		switch a := t.(type) {
		case ttype.TPlaceholder:
			types[i] = ttype.TMixed{}
			changed = true
		case ttype.TList:
			if isPlaceholder(a.Element) {
				a.Element = ttype.Mixed()
				types[i] = a
				changed = true
			}
		case ttype.TKeyed:
			if a.Params != nil && (isPlaceholder(a.Params.Key) || isPlaceholder(a.Params.Value)) {
				p := *a.Params
				if isPlaceholder(p.Key) {
					p.Key = ttype.AnyArrayKey()
				}
				if isPlaceholder(p.Value) {
					p.Value = ttype.Mixed()
				}
				a.Params = &p
				types[i] = a
				changed = true
			}
		}
	}
	if !changed {
		return u
	}
	return u.WithTypes(types)
}

func isPlaceholder(u *ttype.Union) bool {
	if u == nil {
		return false
	}
	a, ok := u.Single()
	if !ok {
		return false
	}
	_, ok = a.(ttype.TPlaceholder)
	return ok
}

// isset removes null. A possibly-undefined variable becomes defined.
func (rn *run) isset(existing *ttype.Union) (*ttype.Union, verdict) {
	out := existing.ToNonNullable()
	out.PossiblyUndefined = false
	out.PossiblyUndefinedFromTry = false
	if out.IsNever() {
		return out, verdictImpossible
	}
	if !existing.CanBeNull() && !existing.PossiblyUndefined && !rn.req.Key.HasArrayIndex() && !opaqueNullability(existing) {
		return out, verdictRedundant
	}
	return out, verdictNone
}

// opaqueNullability reports members whose nullability is unknown.
func opaqueNullability(u *ttype.Union) bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case ttype.TPlaceholder, ttype.TReference, ttype.TTypeVariable, ttype.TConditional, ttype.TDerived:
			return true
		case ttype.TGenericParam:
			if a.As == nil || a.As.HasPlainMixed() {
				return true
			}
		}
	}
	return false
}

// falsy keeps the falsy values of each member.
func (rn *run) falsy(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		types = append(types, algebra.FalsyVariants(m)...)
	}
	if existing.PossiblyUndefined && rn.assertion().Kind == assertion.Empty {
		types = append(types, ttype.TNull{})
	}
	out := rn.combine(existing, types)
	switch {
	case out.IsNever():
		return out, verdictImpossible
	case existing.IsAlwaysFalsy() && !opaque(existing):
		return out, verdictRedundant
	}
	return out, verdictNone
}

// hasKey narrows to values holding key. With nonnull the entry must also
// be non-null, as isset($x[key]) requires.
func (rn *run) hasKey(existing *ttype.Union, key ttype.ArrayKey, nonnull bool) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		if a, ok := rn.memberWithKey(m, key, nonnull); ok {
			types = append(types, a)
		}
	}
	out := rn.combine(existing, types)
	out = out.WithPossiblyUndefined(false)
	return out, verdictFor(existing, out)
}

func (rn *run) memberWithKey(m ttype.Atomic, key ttype.ArrayKey, nonnull bool) (ttype.Atomic, bool) {
	switch t := m.(type) {
	case ttype.TList:
		typ, _, ok := t.ValueAt(key)
		if !ok {
			return nil, false
		}
		if nonnull {
			typ = typ.ToNonNullable()
			if typ.IsNever() {
				return nil, false
			}
		}
		idx := int(key.Int)
		if _, known := t.Known[idx]; !known && !denseUpTo(t, idx) {
			// A list holding index idx holds every index before it.
			return m, true
		}
		t.Known = t.CloneKnown()
		t.Known[idx] = ttype.KnownItem{Type: typ}
		t.NonEmpty = true
		return t, true
	case ttype.TKeyed:
		typ, _, ok := t.ValueAt(key)
		if !ok {
			return nil, false
		}
		if nonnull {
			typ = typ.ToNonNullable()
			if typ.IsNever() {
				return nil, false
			}
		}
		t.Known = t.CloneKnown()
		t.Known[key] = ttype.KnownItem{Type: typ}
		t.NonEmpty = true
		return t, true
	case ttype.TGenericParam:
		if t.As == nil || rn.tooDeep() {
			return m, true
		}
		inner := rn.nested()
		var types []ttype.Atomic
		for _, a := range t.As.Types {
			if x, ok := inner.memberWithKey(a, key, nonnull); ok {
				types = append(types, x)
			}
		}
		if len(types) == 0 {
			return nil, false
		}
		t.As = ttype.NewUnion(algebra.Combine(types, rn.r.cb, false))
		return t, true
	case ttype.TNull, ttype.TVoid, ttype.TNever, ttype.TBool, ttype.TTrue, ttype.TFalse,
		ttype.TInt, ttype.TLiteralInt, ttype.TIntRange, ttype.TFloat, ttype.TLiteralFloat,
		ttype.TResource, ttype.TCallable, ttype.TClosureAlias, ttype.TEnum, ttype.TEnumCase:
		return nil, false
	case ttype.TString, ttype.TLiteralString:
		if key.IsString {
			return nil, false
		}
		return m, true
	case ttype.TNamedObject:
		if rn.r.cb != nil && rn.r.cb.ClassExists(t.Name) && !rn.r.cb.ClassExtendsOrImplements(t.Name, "ArrayAccess") {
			return nil, false
		}
		return m, true
	case ttype.TMixed:
		if nonnull && t.Truthiness == ttype.TruthinessFalsy {
			return nil, false
		}
		return m, true
	}
	return m, true
}

// denseUpTo reports whether every index below idx is a known item, so
// idx can be added without leaving a gap in the known map.
func denseUpTo(l ttype.TList, idx int) bool {
	for i := 0; i < idx; i++ {
		if _, ok := l.Known[i]; !ok {
			return false
		}
	}
	return true
}

func (rn *run) nonEmptyCountable(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		switch t := m.(type) {
		case ttype.TList:
			if !t.HasFallback() && len(t.Known) == 0 {
				continue
			}
			t.NonEmpty = true
			types = append(types, t)
		case ttype.TKeyed:
			if t.IsEmptyArray() {
				continue
			}
			t.NonEmpty = true
			types = append(types, t)
		case ttype.TMixed, ttype.TObject, ttype.TNamedObject, ttype.TGenericParam, ttype.TIterable, ttype.TPlaceholder:
			types = append(types, m)
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

func (rn *run) exactCount(existing *ttype.Union, n int) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		if !mayHaveCount(m, n) {
			continue
		}
		switch t := m.(type) {
		case ttype.TList:
			if n == 0 {
				types = append(types, ttype.TKeyed{})
				continue
			}
			c := n
			t.KnownCount = &c
			t.NonEmpty = true
			t.Known = withoutIndexesFrom(t, n)
			t = fillList(t, n)
			types = append(types, t)
		case ttype.TKeyed:
			if n == 0 {
				types = append(types, ttype.TKeyed{})
				continue
			}
			t.NonEmpty = true
			types = append(types, t)
		default:
			types = append(types, m)
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

// mayHaveCount reports whether m can hold exactly n elements.
func mayHaveCount(m ttype.Atomic, n int) bool {
	switch t := m.(type) {
	case ttype.TList:
		if t.KnownCount != nil {
			return *t.KnownCount == n
		}
		// A required item at index i means at least i+1 elements.
		least, most := 0, 0
		for i, item := range t.Known {
			if !item.PossiblyUndefined && i+1 > least {
				least = i + 1
			}
			if i+1 > most {
				most = i + 1
			}
		}
		if n < least || (n == 0 && t.NonEmpty) {
			return false
		}
		return t.HasFallback() || n <= most
	case ttype.TKeyed:
		required := 0
		for _, item := range t.Known {
			if !item.PossiblyUndefined {
				required++
			}
		}
		if n < required || (n == 0 && t.NonEmpty) {
			return false
		}
		return t.Params != nil || n <= len(t.Known)
	case ttype.TMixed, ttype.TObject, ttype.TNamedObject, ttype.TGenericParam, ttype.TIterable, ttype.TPlaceholder:
		return true
	}
	return false
}

func withoutIndexesFrom(l ttype.TList, n int) map[int]ttype.KnownItem {
	out := make(map[int]ttype.KnownItem, n)
	for i, item := range l.Known {
		if i < n {
			out[i] = item
		}
	}
	return out
}

// fillList turns a list of exactly n elements into n required known
// items, taking unknown positions from the fallback element.
func fillList(l ttype.TList, n int) ttype.TList {
	if n > algebra.MaxShapeItems {
		return l
	}
	known := make(map[int]ttype.KnownItem, n)
	for i := 0; i < n; i++ {
		if item, ok := l.Known[i]; ok {
			known[i] = ttype.KnownItem{Type: item.Type}
			continue
		}
		if !l.HasFallback() {
			return l
		}
		known[i] = ttype.KnownItem{Type: l.Element}
	}
	l.Known = known
	l.Element = ttype.Never()
	l.KnownCount = nil
	return l
}

func (rn *run) inArray(existing, values *ttype.Union) (*ttype.Union, verdict) {
	if values == nil {
		return existing, verdictNone
	}
	out, ok := algebra.IntersectUnionWithUnion(rn.r.cb, existing, values)
	if !ok {
		return existing.WithTypes(nil), verdictImpossible
	}
	out = out.WithPossiblyUndefined(false)
	return out, verdictFor(existing, out)
}

func (rn *run) countable(existing *ttype.Union) (*ttype.Union, verdict) {
	countable := ttype.TNamedObject{Name: "Countable"}
	var types []ttype.Atomic
	for _, m := range existing.Types {
		switch t := m.(type) {
		case ttype.TList, ttype.TKeyed:
			types = append(types, m)
		case ttype.TNamedObject:
			if rn.r.cb == nil || rn.r.cb.ClassExtendsOrImplements(t.Name, "Countable") {
				types = append(types, m)
			} else if !rn.isFinal(t.Name) {
				t.Extra = append(append([]ttype.Atomic(nil), t.Extra...), countable)
				types = append(types, t)
			}
		case ttype.TObject:
			types = append(types, countable)
		case ttype.TIterable:
			key := ttype.AnyArrayKey()
			if t.Key.IsAlwaysArrayKey() {
				key = t.Key
			}
			types = append(types, ttype.ArrayOf(key, t.Value),
				ttype.TNamedObject{Name: "Traversable", Extra: []ttype.Atomic{countable}})
		case ttype.TMixed:
			types = append(types, ttype.MixedArray(), countable)
		case ttype.TGenericParam, ttype.TPlaceholder:
			types = append(types, m)
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

func (rn *run) isFinal(name string) bool {
	return rn.r.cb != nil && rn.r.cb.IsFinal(name)
}
