package arrayshape

import (
	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// AssignOffset returns the container's type after container[index] =
// value. A nil index is an append. Null containers become arrays; mixed,
// string and object containers keep their type.
func (b *Builder) AssignOffset(container, index, value *ttype.Union) *ttype.Union {
	value = value.WithPossiblyUndefined(false)
	out := make([]ttype.Atomic, 0, len(container.Types))
	for _, m := range container.Types {
		if a := b.assignMember(m, index, value); a != nil {
			out = append(out, a)
		}
	}
	u := container.WithTypes(algebra.Combine(out, b.cb, true))
	u.PossiblyUndefined = false
	u.PossiblyUndefinedFromTry = false
	return u
}

func (b *Builder) assignMember(m ttype.Atomic, index, value *ttype.Union) ttype.Atomic {
	switch t := m.(type) {
	case ttype.TNull, ttype.TVoid:
		return b.assignList(ttype.TList{Element: ttype.Never()}, index, value)
	case ttype.TList:
		return b.assignList(t, index, value)
	case ttype.TKeyed:
		if t.IsEmptyArray() {
			return b.assignList(ttype.TList{Element: ttype.Never()}, index, value)
		}
		return b.assignKeyed(t, index, value)
	case ttype.TNever:
		return nil
	}
	return m
}

func (b *Builder) assignList(l ttype.TList, index, value *ttype.Union) ttype.Atomic {
	n := len(l.Known)
	dense := !l.HasFallback() && allRequired(l.Known)

	if index == nil {
		if dense {
			known := l.CloneKnown()
			known[n] = ttype.KnownItem{Type: value}
			l.Known = known
			if l.KnownCount != nil {
				c := *l.KnownCount + 1
				l.KnownCount = &c
			}
		} else {
			l.Element = algebra.CombineUnions(l.Element, value, b.cb)
			l.KnownCount = nil
		}
		l.NonEmpty = true
		return l
	}

	key, ok := ttype.KeyFromUnion(IndexKeyType(index))
	if ok && !key.IsString && key.Int >= 0 {
		if _, exists := l.Known[int(key.Int)]; exists {
			known := l.CloneKnown()
			known[int(key.Int)] = ttype.KnownItem{Type: value}
			l.Known = known
			l.NonEmpty = true
			return l
		}
		if dense && key.Int == int64(n) {
			return b.assignList(l, nil, value)
		}
	}
	return b.assignKeyed(l.AsKeyed(), index, value)
}

func (b *Builder) assignKeyed(k ttype.TKeyed, index, value *ttype.Union) ttype.Atomic {
	k.Known = k.CloneKnown()
	k.NonEmpty = true

	if index == nil {
		if k.Params == nil {
			next := int64(0)
			for key := range k.Known {
				if !key.IsString && key.Int >= next {
					next = key.Int + 1
				}
			}
			k.Known[ttype.IntKey(next)] = ttype.KnownItem{Type: value}
			return k
		}
		k.Params = &ttype.KeyedParams{
			Key:   algebra.CombineUnions(k.Params.Key, ttype.Int(), b.cb),
			Value: algebra.CombineUnions(k.Params.Value, value, b.cb),
		}
		return k
	}

	keyType := IndexKeyType(index)
	if key, ok := ttype.KeyFromUnion(keyType); ok {
		k.Known[key] = ttype.KnownItem{Type: value}
		return k
	}
	if k.Params == nil {
		k.Params = &ttype.KeyedParams{Key: keyType, Value: value}
		return k
	}
	k.Params = &ttype.KeyedParams{
		Key:   algebra.CombineUnions(k.Params.Key, keyType, b.cb),
		Value: algebra.CombineUnions(k.Params.Value, value, b.cb),
	}
	return k
}

func allRequired(known map[int]ttype.KnownItem) bool {
	for _, item := range known {
		if item.PossiblyUndefined {
			return false
		}
	}
	return true
}
