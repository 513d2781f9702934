package reconciler

import (
	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/ttype"
)

func (rn *run) negated(existing *ttype.Union) (*ttype.Union, verdict) {
	a := rn.assertion()
	switch a.Kind {
	case assertion.IsNotType, assertion.IsNotIdentical:
		return rn.notType(existing, a.Type)
	case assertion.IsNotEqual:
		if _, ok := a.Type.(ttype.TNull); ok {
			return rn.notLooseNull(existing)
		}
		// Loose inequality with a whole type proves nothing.
		return existing, verdictNone
	case assertion.IsNotIsset:
		return rn.notIsset(existing)
	case assertion.Truthy, assertion.NonEmpty:
		return rn.truthy(existing)
	case assertion.DoesNotHaveArrayKey:
		return rn.withoutKey(existing, a.Key, false)
	case assertion.DoesNotHaveNonnullEntryForKey:
		return rn.withoutKey(existing, a.Key, true)
	case assertion.EmptyCountable:
		return rn.emptyCountable(existing)
	case assertion.DoesNotHaveExactCount:
		return rn.notExactCount(existing, a.Count)
	case assertion.NotInArray:
		return rn.notInArray(existing, a.Values)
	case assertion.NotCountable:
		return rn.notCountable(existing)
	}
	return existing, verdictNone
}

// notType subtracts target from each member.
func (rn *run) notType(existing *ttype.Union, target ttype.Atomic) (*ttype.Union, verdict) {
	if target == nil {
		return existing, verdictNone
	}
	if _, ok := target.(ttype.TGenericParam); ok {
		return existing, verdictNone
	}
	if m, ok := target.(ttype.TMixed); ok && m.NonNull {
		return rn.onlyNull(existing)
	}

	var types []ttype.Atomic
	for _, m := range existing.Types {
		types = append(types, rn.subtract(m, target)...)
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

func (rn *run) subtract(m, target ttype.Atomic) []ttype.Atomic {
	switch t := m.(type) {
	case ttype.TNever:
		return nil
	case ttype.TGenericParam:
		return rn.subtractGeneric(t, target)
	case ttype.TMixed:
		if _, ok := target.(ttype.TNull); ok {
			t.NonNull = true
			return []ttype.Atomic{t}
		}
		if _, ok := target.(ttype.TMixed); ok {
			return nil
		}
		return []ttype.Atomic{m}
	case ttype.TList, ttype.TKeyed:
		if k, ok := target.(ttype.TKeyed); ok && isPlaceholderArray(k) {
			return nil
		}
	case ttype.TIterable:
		switch tt := target.(type) {
		case ttype.TKeyed:
			if isPlaceholderArray(tt) || algebra.AtomicIsContainedBy(rn.r.cb, ttype.MixedArray(), tt, nil) {
				return []ttype.Atomic{traversableOf(t)}
			}
		case ttype.TObject:
			return []ttype.Atomic{ttype.ArrayOf(iterableKey(t), t.Value)}
		case ttype.TNamedObject:
			if tt.Name == "Traversable" && len(tt.TypeParams) == 0 {
				return []ttype.Atomic{ttype.ArrayOf(iterableKey(t), t.Value)}
			}
		}
	}

	if algebra.AtomicIsContainedBy(rn.r.cb, m, target, nil) {
		return nil
	}
	if parts := splitCompound(m); parts != nil {
		var kept []ttype.Atomic
		for _, p := range parts {
			if !algebra.AtomicIsContainedBy(rn.r.cb, p, target, nil) {
				kept = append(kept, p)
			}
		}
		if len(kept) < len(parts) {
			return kept
		}
	}
	return []ttype.Atomic{m}
}

func iterableKey(t ttype.TIterable) *ttype.Union {
	if t.Key != nil && t.Key.IsAlwaysArrayKey() {
		return t.Key
	}
	return ttype.AnyArrayKey()
}

func traversableOf(t ttype.TIterable) ttype.TNamedObject {
	key, value := t.Key, t.Value
	if key == nil {
		key = ttype.Mixed()
	}
	if value == nil {
		value = ttype.Mixed()
	}
	return ttype.TNamedObject{Name: "Traversable", TypeParams: []*ttype.Union{key, value}}
}

// splitCompound lists the parts of the scalars that are unions of other
// scalars.
func splitCompound(a ttype.Atomic) []ttype.Atomic {
	switch a.(type) {
	case ttype.TBool:
		return []ttype.Atomic{ttype.TTrue{}, ttype.TFalse{}}
	case ttype.TScalar:
		return []ttype.Atomic{ttype.TBool{}, ttype.TInt{}, ttype.TFloat{}, ttype.TString{}}
	case ttype.TNumeric:
		return []ttype.Atomic{ttype.TInt{}, ttype.TFloat{}, ttype.TString{NonEmpty: true, Numeric: true}}
	case ttype.TArrayKey:
		return []ttype.Atomic{ttype.TInt{}, ttype.TString{}}
	}
	return nil
}

func (rn *run) subtractGeneric(g ttype.TGenericParam, target ttype.Atomic) []ttype.Atomic {
	if g.As == nil || rn.tooDeep() {
		return []ttype.Atomic{g}
	}
	inner := rn.nested()
	var types []ttype.Atomic
	for _, m := range g.As.Types {
		types = append(types, inner.subtract(m, target)...)
	}
	if len(types) == 0 {
		return nil
	}
	g.As = ttype.NewUnion(algebra.Combine(types, rn.r.cb, false))
	return []ttype.Atomic{g}
}

// onlyNull keeps the null part of each member, for !($x !== null) style
// checks phrased as a negated nonnull.
func (rn *run) onlyNull(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		switch t := m.(type) {
		case ttype.TNull:
			types = append(types, m)
		case ttype.TVoid:
			types = append(types, ttype.TNull{})
		case ttype.TMixed:
			if !t.NonNull && t.Truthiness != ttype.TruthinessTruthy {
				types = append(types, ttype.TNull{})
			}
		case ttype.TGenericParam:
			if t.As == nil || t.As.CanBeNull() {
				types = append(types, ttype.TNull{})
			}
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

// notIsset leaves null: the variable is unset or holds null.
func (rn *run) notIsset(existing *ttype.Union) (*ttype.Union, verdict) {
	if !existing.CanBeNull() && !existing.PossiblyUndefined && !rn.req.Key.HasArrayIndex() &&
		!opaque(existing) && !opaqueNullability(existing) {
		return existing.WithTypes(nil), verdictImpossible
	}
	out := existing.WithTypes([]ttype.Atomic{ttype.TNull{}})
	if existing.IsNull() && !existing.PossiblyUndefined {
		return out, verdictRedundant
	}
	return out, verdictNone
}

// truthy keeps the truthy values. A possibly-undefined variable becomes
// defined.
func (rn *run) truthy(existing *ttype.Union) (*ttype.Union, verdict) {
	out := existing.ToTruthy().WithPossiblyUndefined(false)
	switch {
	case out.IsNever():
		return out, verdictImpossible
	case existing.IsAlwaysTruthy() && !existing.PossiblyUndefined && !opaque(existing):
		return out, verdictRedundant
	}
	return out, verdictNone
}

// withoutKey removes members that certainly hold key and drops the key
// from shapes where it is optional.
func (rn *run) withoutKey(existing *ttype.Union, key ttype.ArrayKey, nonnull bool) (*ttype.Union, verdict) {
	var (
		types    []ttype.Atomic
		couldHas bool
	)
	for _, m := range existing.Types {
		a, keep, could := rn.memberWithoutKey(m, key, nonnull)
		couldHas = couldHas || could
		if keep {
			types = append(types, a)
		}
	}
	out := rn.combine(existing, types)
	if out.IsNever() {
		return out, verdictImpossible
	}
	if !couldHas && !opaque(existing) {
		return out, verdictRedundant
	}
	return out, verdictNone
}

// memberWithoutKey returns the member narrowed to lack key, whether to
// keep it, and whether it might have held the key.
func (rn *run) memberWithoutKey(m ttype.Atomic, key ttype.ArrayKey, nonnull bool) (ttype.Atomic, bool, bool) {
	switch t := m.(type) {
	case ttype.TKeyed:
		item, ok := t.Known[key]
		if !ok {
			_, _, fits := t.ValueAt(key)
			return m, true, fits
		}
		if nonnull {
			if !item.PossiblyUndefined && !item.Type.CanBeNull() {
				return nil, false, true
			}
			t.Known = t.CloneKnown()
			if item.Type.CanBeNull() {
				t.Known[key] = ttype.KnownItem{Type: ttype.Null(), PossiblyUndefined: item.PossiblyUndefined}
			} else {
				delete(t.Known, key)
			}
			return t, true, true
		}
		if !item.PossiblyUndefined {
			return nil, false, true
		}
		t.Known = t.CloneKnown()
		delete(t.Known, key)
		return t, true, true
	case ttype.TList:
		if key.IsString || key.Int < 0 {
			return m, true, false
		}
		idx := int(key.Int)
		_, _, fits := t.ValueAt(key)
		if !fits {
			return m, true, false
		}
		if nonnull {
			item, ok := t.Known[idx]
			if !ok || item.Type.CanBeNull() {
				return m, true, true
			}
		}
		for i, item := range t.Known {
			if i >= idx && !item.PossiblyUndefined {
				return nil, false, true
			}
		}
		// Without index idx the list has at most idx elements.
		known := make(map[int]ttype.KnownItem, len(t.Known))
		for i, item := range t.Known {
			if i < idx {
				known[i] = item
			}
		}
		t.Known = known
		if denseUpTo(t, idx) {
			t.Element = ttype.Never()
		}
		return t, true, true
	case ttype.TGenericParam:
		if t.As == nil || rn.tooDeep() {
			return m, true, true
		}
		inner := rn.nested()
		var (
			types []ttype.Atomic
			could bool
		)
		for _, a := range t.As.Types {
			x, keep, c := inner.memberWithoutKey(a, key, nonnull)
			could = could || c
			if keep {
				types = append(types, x)
			}
		}
		if len(types) == 0 {
			return nil, false, true
		}
		t.As = ttype.NewUnion(algebra.Combine(types, rn.r.cb, false))
		return t, true, could
	case ttype.TNull, ttype.TVoid, ttype.TBool, ttype.TTrue, ttype.TFalse, ttype.TInt,
		ttype.TLiteralInt, ttype.TIntRange, ttype.TFloat, ttype.TLiteralFloat, ttype.TResource,
		ttype.TEnum, ttype.TEnumCase:
		return m, true, false
	}
	return m, true, true
}

func (rn *run) emptyCountable(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		switch t := m.(type) {
		case ttype.TList:
			if t.IsDefinitelyNonEmpty() {
				continue
			}
			types = append(types, ttype.TKeyed{})
		case ttype.TKeyed:
			if t.IsDefinitelyNonEmpty() {
				continue
			}
			types = append(types, ttype.TKeyed{})
		default:
			types = append(types, m)
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

func (rn *run) notExactCount(existing *ttype.Union, n int) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		if !hasExactly(m, n) {
			types = append(types, m)
		}
	}
	out := rn.combine(existing, types)
	if out.IsNever() {
		return out, verdictImpossible
	}
	for _, m := range existing.Types {
		if mayHaveCount(m, n) {
			return out, verdictNone
		}
	}
	if opaque(existing) {
		return out, verdictNone
	}
	return out, verdictRedundant
}

// hasExactly reports whether m always holds exactly n elements.
func hasExactly(m ttype.Atomic, n int) bool {
	switch t := m.(type) {
	case ttype.TList:
		if t.KnownCount != nil {
			return *t.KnownCount == n
		}
		if t.HasFallback() {
			return false
		}
		return len(t.Known) == n && allRequired(t.Known)
	case ttype.TKeyed:
		if !t.IsClosed() {
			return false
		}
		return len(t.Known) == n && allRequired(t.Known)
	}
	return false
}

func allRequired[K comparable](known map[K]ttype.KnownItem) bool {
	for _, item := range known {
		if item.PossiblyUndefined {
			return false
		}
	}
	return true
}

// notInArray drops literal members that are among the values. It is
// redundant only when no member could be identical to any value.
func (rn *run) notInArray(existing, values *ttype.Union) (*ttype.Union, verdict) {
	if values == nil {
		return existing, verdictNone
	}
	var types []ttype.Atomic
	for _, m := range existing.Types {
		if ttype.IsLiteralAtomic(m) && values.Contains(m) {
			continue
		}
		if _, ok := m.(ttype.TBool); ok {
			hasTrue, hasFalse := values.Contains(ttype.TTrue{}), values.Contains(ttype.TFalse{})
			switch {
			case hasTrue && hasFalse:
				continue
			case hasTrue:
				types = append(types, ttype.TFalse{})
				continue
			case hasFalse:
				types = append(types, ttype.TTrue{})
				continue
			}
		}
		types = append(types, m)
	}
	out := rn.combine(existing, types)
	v := verdictFor(existing, out)
	if v == verdictRedundant && algebra.CanBeIdentical(rn.r.cb, existing, values) {
		v = verdictNone
	}
	return out, v
}

func (rn *run) notCountable(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		switch t := m.(type) {
		case ttype.TList, ttype.TKeyed:
			continue
		case ttype.TNamedObject:
			if rn.r.cb != nil && rn.r.cb.ClassExtendsOrImplements(t.Name, "Countable") {
				continue
			}
		case ttype.TIterable:
			types = append(types, traversableOf(t))
			continue
		}
		types = append(types, m)
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}
