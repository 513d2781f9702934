package arrayshape

import (
	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// Context says where an offset expression appears.
type Context struct {
	InIsset      bool
	InUnset      bool
	InAssignment bool
}

func (c Context) guarded() bool {
	return c.InIsset || c.InUnset
}

// ResolveAccess returns the type of container[index]. Each member of
// the container is resolved on its own and the results are combined.
// When no member accepts the index the result is mixed and one offset
// diagnostic is reported.
func (b *Builder) ResolveAccess(container, index *ttype.Union, ctx Context, span issue.Span) *ttype.Union {
	r := &access{b: b, ctx: ctx, span: span, index: index, key: IndexKeyType(index)}
	var results []*ttype.Union
	for _, m := range container.Types {
		if u := r.member(m); u != nil {
			results = append(results, u)
		}
	}

	if r.checked && !r.valid {
		switch {
		case r.key.HasMixed():
			b.report(issue.MixedArrayOffset, span, "Cannot access value on %s using mixed offset", container.ID())
		case r.overlap:
			b.report(issue.MismatchingArrayOffset, span, "Offset of type %s does not match the keys of %s", index.ID(), container.ID())
		default:
			b.report(issue.InvalidArrayOffset, span, "Cannot access value on %s using offset of type %s", container.ID(), index.ID())
		}
		results = append(results, ttype.Mixed())
	}
	if len(results) == 0 {
		return ttype.Mixed()
	}
	return algebra.CombineUnionList(results, b.cb)
}

type access struct {
	b     *Builder
	ctx   Context
	span  issue.Span
	index *ttype.Union
	key   *ttype.Union

	// checked is set once any member had a key type to check against;
	// valid once a member accepted the index; overlap when some member's
	// keys share values with the index without containing it.
	checked bool
	valid   bool
	overlap bool
}

func (r *access) member(m ttype.Atomic) *ttype.Union {
	switch t := m.(type) {
	case ttype.TList:
		return r.list(t)
	case ttype.TKeyed:
		return r.keyed(t)
	case ttype.TString, ttype.TLiteralString, ttype.TClassString, ttype.TLiteralClassString:
		return r.str(m)
	case ttype.TNamedObject:
		return r.object(t)
	case ttype.TMixed, ttype.TNever, ttype.TPlaceholder:
		if !r.ctx.guarded() {
			r.b.report(issue.MixedArrayAccess, r.span, "Cannot access array value on %s", m.ID())
		}
		return ttype.Mixed()
	case ttype.TNull, ttype.TVoid:
		if r.ctx.InAssignment {
			return ttype.Null()
		}
		if !r.ctx.InIsset {
			r.b.report(issue.NullArrayAccess, r.span, "Cannot access array value on null")
		}
		return ttype.Null()
	case ttype.TGenericParam:
		if t.As == nil {
			return r.member(ttype.TMixed{})
		}
		var out []*ttype.Union
		for _, a := range t.As.Types {
			if u := r.member(a); u != nil {
				out = append(out, u)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return algebra.CombineUnionList(out, r.b.cb)
	}
	r.b.report(issue.InvalidArrayAccess, r.span, "Cannot access array value on %s", m.ID())
	return ttype.Mixed()
}

// accepts checks the index against one member's key type.
func (r *access) accepts(keyType *ttype.Union) bool {
	r.checked = true
	if algebra.IsContainedBy(r.b.cb, r.key, keyType, nil) {
		r.valid = true
		return true
	}
	if algebra.CanBeIdentical(r.b.cb, r.key, keyType) {
		r.overlap = true
	}
	return false
}

func (r *access) list(t ttype.TList) *ttype.Union {
	if !r.accepts(ttype.Int()) {
		return nil
	}
	key, ok := ttype.KeyFromUnion(r.key)
	if !ok {
		return r.allValues(listValues(t), !t.HasFallback())
	}
	typ, maybe, found := t.ValueAt(key)
	if !found {
		r.undefined(key)
		return ttype.Null()
	}
	// Indexes past the known prefix fall back to the element type, which
	// an open list may not hold.
	if _, isKnown := t.Known[int(key.Int)]; isKnown && !maybe {
		return typ.WithPossiblyUndefined(false)
	}
	return r.possiblyUndefined(key, typ)
}

func (r *access) keyed(t ttype.TKeyed) *ttype.Union {
	if !r.accepts(keyedKeyType(t)) {
		return nil
	}
	key, ok := ttype.KeyFromUnion(r.key)
	if !ok {
		return r.allValues(keyedValues(t), t.Params == nil)
	}
	typ, maybe, found := t.ValueAt(key)
	if !found {
		r.undefined(key)
		return ttype.Null()
	}
	if _, isKnown := t.Known[key]; isKnown && maybe {
		return r.possiblyUndefined(key, typ)
	}
	return typ.WithPossiblyUndefined(false)
}

// allValues answers a non-literal index: any value may come back, and
// on a closed array the key may be missing.
func (r *access) allValues(values []*ttype.Union, closed bool) *ttype.Union {
	if len(values) == 0 {
		return ttype.Null()
	}
	out := algebra.CombineUnionList(values, r.b.cb).WithPossiblyUndefined(false)
	if closed && r.ctx.InIsset {
		out = out.AsNullable()
	}
	return out
}

func (r *access) undefined(key ttype.ArrayKey) {
	if r.ctx.guarded() || r.ctx.InAssignment {
		return
	}
	kind := issue.UndefinedIntArrayOffset
	if key.IsString {
		kind = issue.UndefinedStringArrayOffset
	}
	r.b.report(kind, r.span, "Undefined array key %s", key)
}

func (r *access) possiblyUndefined(key ttype.ArrayKey, typ *ttype.Union) *ttype.Union {
	typ = typ.WithPossiblyUndefined(false)
	if r.ctx.InIsset {
		return typ.AsNullable()
	}
	if r.ctx.guarded() || r.ctx.InAssignment {
		return typ
	}
	kind := issue.PossiblyUndefinedIntArrayOffset
	if key.IsString {
		kind = issue.PossiblyUndefinedStringArrayOffset
	}
	r.b.report(kind, r.span, "Possibly undefined array key %s", key)
	return typ
}

// str indexes a string by character position. Literal strings bound the
// position, negative offsets counting from the end.
func (r *access) str(m ttype.Atomic) *ttype.Union {
	lit, isLit := m.(ttype.TLiteralString)
	keyType := ttype.Int()
	if isLit {
		n := int64(len(lit.Value))
		if n == 0 {
			keyType = ttype.Never()
		} else {
			keyType = ttype.Single(ttype.TIntRange{Min: ttype.Int64(-n), Max: ttype.Int64(n - 1)})
		}
	}
	if !r.accepts(keyType) {
		return nil
	}
	if key, ok := ttype.KeyFromUnion(r.key); ok && isLit {
		i := key.Int
		if i < 0 {
			i += int64(len(lit.Value))
		}
		return ttype.LiteralString(lit.Value[i : i+1])
	}
	return ttype.Single(ttype.TString{NonEmpty: true})
}

func (r *access) object(t ttype.TNamedObject) *ttype.Union {
	if r.b.cb == nil {
		r.b.report(issue.InvalidArrayAccess, r.span, "Cannot access array value on %s", t.ID())
		return ttype.Mixed()
	}
	key, value, ok := r.b.cb.ArrayAccessParams(t.Name)
	if !ok {
		r.b.report(issue.InvalidArrayAccess, r.span, "Cannot access array value on %s, it does not implement ArrayAccess", t.ID())
		return ttype.Mixed()
	}
	if !r.accepts(key) {
		return nil
	}
	return value
}

// IndexKeyType applies key casting to an offset type: null becomes '',
// bools and floats become ints and integer-like strings become ints.
func IndexKeyType(index *ttype.Union) *ttype.Union {
	types := make([]ttype.Atomic, 0, len(index.Types))
	for _, a := range index.Types {
		if k, ok := ttype.KeyFromAtomic(a); ok {
			types = append(types, k.ToAtomic())
			continue
		}
		switch a.(type) {
		case ttype.TBool:
			types = append(types, ttype.TIntRange{Min: ttype.Int64(0), Max: ttype.Int64(1)})
		case ttype.TFloat:
			types = append(types, ttype.TInt{})
		default:
			types = append(types, a)
		}
	}
	return ttype.NewUnion(algebra.Combine(types, nil, false))
}

// keyedKeyType is the general key type of a shape: int and string for
// its known keys plus its parameter key.
func keyedKeyType(t ttype.TKeyed) *ttype.Union {
	var types []ttype.Atomic
	var ints, strs bool
	for k := range t.Known {
		if k.IsString {
			strs = true
		} else {
			ints = true
		}
	}
	if ints {
		types = append(types, ttype.TInt{})
	}
	if strs {
		types = append(types, ttype.TString{})
	}
	if t.Params != nil {
		types = append(types, t.Params.Key.Types...)
	}
	if len(types) == 0 {
		// [] has no keys but can be read with any of them.
		return ttype.AnyArrayKey()
	}
	return ttype.NewUnion(algebra.Combine(types, nil, false))
}

func listValues(t ttype.TList) []*ttype.Union {
	out := make([]*ttype.Union, 0, len(t.Known)+1)
	for _, i := range t.KnownIndices() {
		out = append(out, t.Known[i].Type)
	}
	if t.HasFallback() {
		out = append(out, t.Element)
	}
	return out
}

func keyedValues(t ttype.TKeyed) []*ttype.Union {
	out := make([]*ttype.Union, 0, len(t.Known)+1)
	for _, k := range t.SortedKeys() {
		out = append(out, t.Known[k].Type)
	}
	if t.Params != nil {
		out = append(out, t.Params.Value)
	}
	return out
}
