package arrayshape

import (
	"math"

	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// Element is one entry of an array literal.
type Element struct {
	// Key is nil for an implicit key.
	Key    *ttype.Union
	Value  *ttype.Union
	Spread bool
	Span   issue.Span
}

// literal accumulates an array literal two ways at once: an exact map of
// known items, valid while every key is determinate, and a widened
// key/value pair that is always valid.
type literal struct {
	b *Builder

	next        int64
	cursorKnown bool
	stopped     bool

	known     map[ttype.ArrayKey]ttype.KnownItem
	positions int64
	exact     bool
	list      bool
	nonEmpty  bool

	intKeys    bool
	stringKeys bool
	value      *ttype.Union
}

// BuildLiteral returns the type of an array literal.
//
// Implicit keys follow PHP's cursor: one past the largest integer key so
// far, starting at 0. The result is a list when every key equals its
// position, a closed shape when every key is known, and array<K, V>
// otherwise.
func (b *Builder) BuildLiteral(elems []Element) *ttype.Union {
	l := &literal{
		b:           b,
		next:        -1,
		cursorKnown: true,
		known:       map[ttype.ArrayKey]ttype.KnownItem{},
		exact:       true,
		list:        true,
	}
	for _, e := range elems {
		if l.stopped {
			break
		}
		if e.Spread {
			l.spread(e)
			continue
		}
		l.add(e)
	}
	return ttype.Single(l.result())
}

func (l *literal) add(e Element) {
	l.nonEmpty = true

	if e.Key == nil {
		key, ok := l.nextKey(e.Span)
		if l.stopped {
			return
		}
		l.widenValue(e.Value)
		if ok {
			l.put(key, e.Value, e.Span, true, false)
		}
		return
	}

	l.widenValue(e.Value)
	key, ok := ttype.KeyFromUnion(e.Key)
	if !ok {
		l.exact, l.list = false, false
		l.widenKeyUnion(e.Key)
		return
	}
	if !key.IsString && key.Int > l.next {
		l.next = key.Int
	}
	l.put(key, e.Value, e.Span, false, false)
}

// nextKey advances the implicit-key cursor.
func (l *literal) nextKey(span issue.Span) (ttype.ArrayKey, bool) {
	l.intKeys = true
	if !l.cursorKnown {
		l.exact = false
		return ttype.ArrayKey{}, false
	}
	if l.next == math.MaxInt64 {
		l.b.report(issue.ArrayKeyOverflow, span,
			"Cannot add element to the array as the next element is already occupied")
		l.stopped = true
		l.exact = false
		return ttype.ArrayKey{}, false
	}
	l.next++
	return ttype.IntKey(l.next), true
}

func (l *literal) put(key ttype.ArrayKey, value *ttype.Union, span issue.Span, implicit, fromSpread bool) {
	if key.IsString {
		l.stringKeys = true
	} else {
		l.intKeys = true
	}
	if _, dup := l.known[key]; dup && !fromSpread {
		l.b.report(issue.DuplicateArrayKey, span, "Key %s is already used in this array", key)
	}

	onPosition := !key.IsString && key.Int == l.positions
	if !onPosition {
		l.list = false
		if implicit {
			l.exact = false
		}
	}
	l.known[key] = ttype.KnownItem{Type: value}
	l.positions++
	if len(l.known) > l.b.opts.MaxShapeSize {
		l.exact = false
	}
}

func (l *literal) spread(e Element) {
	single := len(e.Value.Types) == 1
	if !single {
		l.exact = false
	}
	for _, m := range e.Value.Types {
		l.spreadMember(m, single, e.Span)
	}
}

func (l *literal) spreadMember(m ttype.Atomic, single bool, span issue.Span) {
	switch t := m.(type) {
	case ttype.TNever:
	case ttype.TList:
		l.spreadList(t, single, span)
	case ttype.TKeyed:
		l.spreadKeyed(t, single, span)
	case ttype.TIterable:
		l.exact, l.list = false, false
		l.widenKeyUnion(t.Key)
		l.widenValue(t.Value)
		l.cursorKnown = false
	case ttype.TNamedObject:
		if l.b.cb != nil && l.b.cb.ClassExtendsOrImplements(t.Name, "Traversable") {
			l.degrade()
			return
		}
		l.b.report(issue.InvalidSpread, span, "Cannot spread non-iterable %s", t.ID())
	case ttype.TMixed, ttype.TPlaceholder:
		l.degrade()
	case ttype.TGenericParam:
		if t.As == nil || t.As.IsMixed() {
			l.degrade()
			return
		}
		for _, a := range t.As.Types {
			l.spreadMember(a, false, span)
		}
	default:
		l.b.report(issue.InvalidSpread, span, "Cannot spread non-iterable %s", m.ID())
	}
}

func (l *literal) spreadList(t ttype.TList, single bool, span issue.Span) {
	if t.IsDefinitelyNonEmpty() {
		l.nonEmpty = true
	}
	for _, idx := range t.KnownIndices() {
		item := t.Known[idx]
		l.intKeys = true
		if !single || item.PossiblyUndefined {
			l.widenValue(item.Type)
			l.exact = false
			l.cursorKnown = false
			continue
		}
		// Elements are appended in order, each taking the next free key.
		key, ok := l.nextKey(span)
		if l.stopped {
			return
		}
		l.widenValue(item.Type)
		if ok {
			l.put(key, item.Type, span, true, true)
		}
	}
	if t.HasFallback() {
		l.widenValue(t.Element)
		l.intKeys = true
		l.exact = false
		l.cursorKnown = false
	}
}

func (l *literal) spreadKeyed(t ttype.TKeyed, single bool, span issue.Span) {
	if t.IsDefinitelyNonEmpty() {
		l.nonEmpty = true
	}
	for _, key := range t.SortedKeys() {
		item := t.Known[key]
		if key.IsString && l.b.opts.PHPVersion < PHP81 {
			l.b.report(issue.StringKeySpread, span,
				"Cannot spread an array with string key %s before PHP 8.1", key)
			l.list = false
			continue
		}
		if !single || item.PossiblyUndefined {
			l.widenValue(item.Type)
			l.exact = false
			if key.IsString {
				l.stringKeys, l.list = true, false
			} else {
				l.intKeys = true
				l.cursorKnown = false
			}
			continue
		}
		if key.IsString {
			l.widenValue(item.Type)
			l.put(key, item.Type, span, false, true)
			continue
		}
		// Integer keys are renumbered in ascending key order; a shape does
		// not record the order its keys were written in.
		k, ok := l.nextKey(span)
		if l.stopped {
			return
		}
		l.widenValue(item.Type)
		if ok {
			l.put(k, item.Type, span, true, true)
		}
	}
	if t.Params != nil {
		l.exact = false
		l.widenValue(t.Params.Value)
		l.widenKeyUnion(t.Params.Key)
		if l.stringKeys {
			l.list = false
		}
	}
}

// degrade gives up on precision for a spread of unknown shape.
func (l *literal) degrade() {
	l.exact, l.list = false, false
	l.intKeys, l.stringKeys = true, true
	l.cursorKnown = false
	l.widenValue(ttype.Mixed())
}

func (l *literal) widenValue(v *ttype.Union) {
	l.value = algebra.CombineUnions(l.value, v.WithPossiblyUndefined(false), l.b.cb)
}

// widenKeyUnion records the key kinds a non-literal key can take.
func (l *literal) widenKeyUnion(k *ttype.Union) {
	for _, a := range k.Types {
		switch t := a.(type) {
		case ttype.TInt, ttype.TLiteralInt, ttype.TIntRange, ttype.TBool, ttype.TTrue, ttype.TFalse,
			ttype.TFloat, ttype.TLiteralFloat:
			l.intKeys = true
			l.cursorKnown = false
		case ttype.TString, ttype.TLiteralString, ttype.TClassString, ttype.TLiteralClassString, ttype.TNull:
			l.stringKeys = true
		case ttype.TGenericParam:
			if t.As != nil {
				l.widenKeyUnion(t.As)
				continue
			}
			l.intKeys, l.stringKeys, l.cursorKnown = true, true, false
		default:
			l.intKeys, l.stringKeys, l.cursorKnown = true, true, false
		}
	}
}

func (l *literal) keyType() *ttype.Union {
	switch {
	case l.intKeys && l.stringKeys:
		return ttype.AnyArrayKey()
	case l.stringKeys:
		return ttype.String()
	default:
		return ttype.Int()
	}
}

func (l *literal) result() ttype.Atomic {
	if l.exact {
		if len(l.known) == 0 {
			return ttype.TKeyed{}
		}
		if l.list {
			out := ttype.TList{Element: ttype.Never(), Known: make(map[int]ttype.KnownItem, len(l.known)), NonEmpty: true}
			for k, item := range l.known {
				out.Known[int(k.Int)] = item
			}
			return out
		}
		return ttype.TKeyed{Known: l.known, NonEmpty: true}
	}
	if l.value == nil {
		return ttype.MixedArray()
	}
	if l.list {
		return ttype.TList{Element: l.value, NonEmpty: l.nonEmpty}
	}
	return ttype.TKeyed{
		Params:   &ttype.KeyedParams{Key: l.keyType(), Value: l.value},
		NonEmpty: l.nonEmpty,
	}
}
