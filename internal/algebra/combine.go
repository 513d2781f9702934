package algebra

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// Combine minimises a flat member list into the smallest equivalent list:
// literals fold into ranges or their general type past the literal
// limits, true|false becomes bool, array shapes merge into one list or
// one keyed array, and members subsumed by a more general sibling are
// dropped. With overwriteEmptyArray an empty array next to other arrays
// is dropped instead of weakening them.
//
// The output order is fixed by category, so equal inputs in any order
// produce identical slices.
func Combine(types []ttype.Atomic, cb codebase.Codebase, overwriteEmptyArray bool) []ttype.Atomic {
	cm := &combiner{cb: cb, overwriteEmptyArray: overwriteEmptyArray}
	return cm.combine(types)
}

// CombineUnions joins two unions. Definedness flags are or-ed so a value
// possibly undefined on either side stays possibly undefined.
func CombineUnions(a, b *ttype.Union, cb codebase.Codebase) *ttype.Union {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	types := make([]ttype.Atomic, 0, len(a.Types)+len(b.Types))
	types = append(types, a.Types...)
	types = append(types, b.Types...)
	u := ttype.NewUnion(Combine(types, cb, false))
	u.PossiblyUndefined = a.PossiblyUndefined || b.PossiblyUndefined
	u.PossiblyUndefinedFromTry = a.PossiblyUndefinedFromTry || b.PossiblyUndefinedFromTry
	u.ByReference = a.ByReference || b.ByReference
	u.IgnoreNullableIssues = a.IgnoreNullableIssues || b.IgnoreNullableIssues
	u.IgnoreFalsableIssues = a.IgnoreFalsableIssues || b.IgnoreFalsableIssues
	u.HadTemplate = a.HadTemplate || b.HadTemplate
	u.FromTemplateDefault = a.FromTemplateDefault && b.FromTemplateDefault
	u.Populated = a.Populated && b.Populated
	return u
}

// CombineUnionList folds CombineUnions over us. An empty list is never.
func CombineUnionList(us []*ttype.Union, cb codebase.Codebase) *ttype.Union {
	if len(us) == 0 {
		return ttype.Never()
	}
	out := us[0]
	for _, u := range us[1:] {
		out = CombineUnions(out, u, cb)
	}
	return out
}

type combiner struct {
	cb                  codebase.Codebase
	overwriteEmptyArray bool
	depth               int

	all   []ttype.Atomic
	mixed []ttype.TMixed

	null, void                     bool
	trueSeen, falseSeen, boolSeen  bool
	arrayKey, scalar, numeric      bool
	intGeneral, floatGeneral       bool
	intLiterals                    map[int64]struct{}
	intRanges                      []ttype.TIntRange
	floatLiterals                  map[float64]struct{}
	stringGeneral                  *ttype.TString
	stringLiterals                 map[string]struct{}
	classStrings                   []ttype.TClassString
	literalClassStrings            []ttype.TLiteralClassString
	emptyArray                     bool
	lists                          []ttype.TList
	keyed                          []ttype.TKeyed
	iterables                      []ttype.TIterable
	objectAny                      bool
	named                          []ttype.TNamedObject
	enums                          []ttype.TEnum
	enumCases                      []ttype.TEnumCase
	callableAny                    bool
	callables                      []ttype.TCallable
	closures                       []ttype.TClosureAlias
	resourceAny, resOpen, resClose bool
	others                         []ttype.Atomic
}

func (cm *combiner) combine(types []ttype.Atomic) []ttype.Atomic {
	for _, t := range types {
		cm.add(t)
	}
	out := cm.result()
	if len(out) == 0 {
		return []ttype.Atomic{ttype.TNever{}}
	}
	return out
}

func (cm *combiner) add(t ttype.Atomic) {
	if _, ok := t.(ttype.TNever); ok {
		return
	}
	cm.all = append(cm.all, t)

	switch a := t.(type) {
	case ttype.TMixed:
		cm.mixed = append(cm.mixed, a)
	case ttype.TNull:
		cm.null = true
	case ttype.TVoid:
		cm.void = true
	case ttype.TTrue:
		cm.trueSeen = true
	case ttype.TFalse:
		cm.falseSeen = true
	case ttype.TBool:
		cm.boolSeen = true
	case ttype.TArrayKey:
		cm.arrayKey = true
	case ttype.TScalar:
		cm.scalar = true
	case ttype.TNumeric:
		cm.numeric = true
	case ttype.TInt:
		cm.intGeneral = true
	case ttype.TLiteralInt:
		if cm.intLiterals == nil {
			cm.intLiterals = map[int64]struct{}{}
		}
		cm.intLiterals[a.Value] = struct{}{}
	case ttype.TIntRange:
		cm.intRanges = append(cm.intRanges, a)
	case ttype.TFloat:
		cm.floatGeneral = true
	case ttype.TLiteralFloat:
		if cm.floatLiterals == nil {
			cm.floatLiterals = map[float64]struct{}{}
		}
		cm.floatLiterals[a.Value] = struct{}{}
	case ttype.TString:
		if cm.stringGeneral == nil {
			s := a
			cm.stringGeneral = &s
		} else {
			s := mergeStringFlags(*cm.stringGeneral, a)
			cm.stringGeneral = &s
		}
	case ttype.TLiteralString:
		if cm.stringLiterals == nil {
			cm.stringLiterals = map[string]struct{}{}
		}
		cm.stringLiterals[a.Value] = struct{}{}
	case ttype.TClassString:
		cm.classStrings = appendUnique(cm.classStrings, a)
	case ttype.TLiteralClassString:
		cm.literalClassStrings = appendUnique(cm.literalClassStrings, a)
	case ttype.TKeyed:
		if a.IsEmptyArray() {
			cm.emptyArray = true
		} else {
			cm.keyed = append(cm.keyed, a)
		}
	case ttype.TList:
		if !a.HasFallback() && len(a.Known) == 0 {
			cm.emptyArray = true
		} else {
			cm.lists = append(cm.lists, a)
		}
	case ttype.TIterable:
		cm.iterables = append(cm.iterables, a)
	case ttype.TObject:
		cm.objectAny = true
	case ttype.TNamedObject:
		cm.named = appendUnique(cm.named, a)
	case ttype.TEnum:
		cm.enums = appendUnique(cm.enums, a)
	case ttype.TEnumCase:
		cm.enumCases = appendUnique(cm.enumCases, a)
	case ttype.TCallable:
		if a.Params == nil && a.Return == nil {
			cm.callableAny = true
		} else {
			cm.callables = appendUnique(cm.callables, a)
		}
	case ttype.TClosureAlias:
		cm.closures = appendUnique(cm.closures, a)
	case ttype.TResource:
		switch a.State {
		case ttype.ResourceOpen:
			cm.resOpen = true
		case ttype.ResourceClosed:
			cm.resClose = true
		default:
			cm.resourceAny = true
		}
	default:
		cm.others = appendUnique(cm.others, t)
	}
}

func appendUnique[T ttype.Atomic](list []T, a T) []T {
	id := a.ID()
	for _, x := range list {
		if x.ID() == id {
			return list
		}
	}
	return append(list, a)
}

func (cm *combiner) result() []ttype.Atomic {
	if len(cm.mixed) > 0 {
		return []ttype.Atomic{cm.mergedMixed()}
	}

	var out []ttype.Atomic
	if cm.scalar {
		out = append(out, ttype.TScalar{})
	} else {
		out = cm.appendBools(out)
		out = cm.appendInts(out)
		out = cm.appendFloats(out)
		out = cm.appendStrings(out)
		if cm.arrayKey {
			out = append(out, ttype.TArrayKey{})
		}
		if cm.numeric {
			out = append(out, ttype.TNumeric{})
		}
	}
	out = cm.appendArrays(out)
	out = cm.appendIterables(out)
	out = cm.appendObjects(out)
	out = cm.appendCallables(out)
	out = cm.appendResources(out)
	out = append(out, cm.others...)

	switch {
	case cm.null:
		out = append(out, ttype.TNull{})
	case cm.void && len(out) > 0:
		out = append(out, ttype.TNull{})
	case cm.void:
		out = append(out, ttype.TVoid{})
	}
	return out
}

// mergedMixed keeps a refinement only when every mixed member carries it
// and every other member satisfies it.
func (cm *combiner) mergedMixed() ttype.TMixed {
	first := cm.mixed[0]
	out := ttype.TMixed{Truthiness: first.Truthiness, NonNull: true, FromLoopIsset: true}
	for _, m := range cm.mixed {
		if m.Truthiness != out.Truthiness {
			out.Truthiness = ttype.TruthinessUnknown
		}
		if !m.NonNull && m.Truthiness != ttype.TruthinessTruthy {
			out.NonNull = false
		}
		if !m.FromLoopIsset {
			out.FromLoopIsset = false
		}
	}
	for _, t := range cm.all {
		if _, ok := t.(ttype.TMixed); ok {
			continue
		}
		switch out.Truthiness {
		case ttype.TruthinessTruthy:
			if !ttype.IsAtomicAlwaysTruthy(t) {
				out.Truthiness = ttype.TruthinessUnknown
			}
		case ttype.TruthinessFalsy:
			if !ttype.IsAtomicAlwaysFalsy(t) {
				out.Truthiness = ttype.TruthinessUnknown
			}
		}
		switch t.(type) {
		case ttype.TNull, ttype.TVoid:
			out.NonNull = false
		}
	}
	if out.Truthiness == ttype.TruthinessTruthy {
		out.NonNull = true
	}
	if out.Truthiness == ttype.TruthinessFalsy {
		out.NonNull = false
	}
	return out
}

func (cm *combiner) appendBools(out []ttype.Atomic) []ttype.Atomic {
	switch {
	case cm.boolSeen || (cm.trueSeen && cm.falseSeen):
		return append(out, ttype.TBool{})
	case cm.trueSeen:
		return append(out, ttype.TTrue{})
	case cm.falseSeen:
		return append(out, ttype.TFalse{})
	}
	return out
}

func (cm *combiner) appendInts(out []ttype.Atomic) []ttype.Atomic {
	if cm.arrayKey || cm.numeric {
		return out
	}
	if cm.intGeneral || len(cm.intLiterals) > LiteralIntLimit {
		return append(out, ttype.TInt{})
	}

	ranges := mergeRanges(cm.intRanges)
	for _, r := range ranges {
		if r.Min == nil && r.Max == nil {
			return append(out, ttype.TInt{})
		}
	}
	for _, r := range ranges {
		out = append(out, r)
	}

	lits := make([]int64, 0, len(cm.intLiterals))
	for v := range cm.intLiterals {
		covered := false
		for _, r := range ranges {
			if rangeContains(r, v) {
				covered = true
				break
			}
		}
		if !covered {
			lits = append(lits, v)
		}
	}
	slices.Sort(lits)
	for _, v := range lits {
		out = append(out, ttype.TLiteralInt{Value: v})
	}
	return out
}

// mergeRanges sorts ranges by lower bound and joins overlapping or
// adjacent ones.
func mergeRanges(in []ttype.TIntRange) []ttype.TIntRange {
	if len(in) == 0 {
		return nil
	}
	rs := slices.Clone(in)
	slices.SortFunc(rs, func(a, b ttype.TIntRange) int {
		switch {
		case a.Min == nil && b.Min == nil:
			return 0
		case a.Min == nil:
			return -1
		case b.Min == nil:
			return 1
		}
		return cmp.Compare(*a.Min, *b.Min)
	})
	out := []ttype.TIntRange{rs[0]}
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if last.Max == nil {
			continue
		}
		if r.Min == nil || *r.Min <= *last.Max+1 {
			if r.Max == nil || *r.Max > *last.Max {
				last.Max = r.Max
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func (cm *combiner) appendFloats(out []ttype.Atomic) []ttype.Atomic {
	if cm.numeric {
		return out
	}
	if cm.floatGeneral || len(cm.floatLiterals) > LiteralFloatLimit {
		return append(out, ttype.TFloat{})
	}
	lits := make([]float64, 0, len(cm.floatLiterals))
	for v := range cm.floatLiterals {
		lits = append(lits, v)
	}
	slices.Sort(lits)
	for _, v := range lits {
		out = append(out, ttype.TLiteralFloat{Value: v})
	}
	return out
}

func mergeStringFlags(a, b ttype.TString) ttype.TString {
	return ttype.TString{
		NonEmpty:  (a.NonEmpty || a.Truthy) && (b.NonEmpty || b.Truthy),
		Truthy:    a.Truthy && b.Truthy,
		Numeric:   a.Numeric && b.Numeric,
		Lowercase: a.Lowercase && b.Lowercase,
	}
}

// weakenString drops the refinements lit does not satisfy.
func weakenString(s ttype.TString, lit string) ttype.TString {
	if lit == "" {
		s.NonEmpty, s.Truthy = false, false
	}
	if lit == "0" {
		s.Truthy = false
	}
	if !ttype.IsNumericString(lit) {
		s.Numeric = false
	}
	if strings.ToLower(lit) != lit {
		s.Lowercase = false
	}
	return s
}

func (cm *combiner) appendStrings(out []ttype.Atomic) []ttype.Atomic {
	if cm.arrayKey {
		return out
	}

	lits := make([]string, 0, len(cm.stringLiterals))
	for v := range cm.stringLiterals {
		if cm.numeric && ttype.IsNumericString(v) {
			continue
		}
		lits = append(lits, v)
	}
	slices.Sort(lits)

	general := cm.stringGeneral
	if general != nil && cm.numeric && general.Numeric {
		general = nil
	}
	if general == nil && len(lits) > LiteralStringLimit {
		g := ttype.TString{NonEmpty: true, Truthy: true, Numeric: true, Lowercase: true}
		general = &g
	}
	if general != nil {
		g := *general
		for _, v := range lits {
			g = weakenString(g, v)
		}
		if len(cm.classStrings) > 0 || len(cm.literalClassStrings) > 0 {
			g.Numeric, g.Lowercase = false, false
		}
		return append(out, g)
	}

	out = cm.appendClassStrings(out)
	for _, v := range lits {
		out = append(out, ttype.TLiteralString{Value: v})
	}
	return out
}

func (cm *combiner) appendClassStrings(out []ttype.Atomic) []ttype.Atomic {
	c := comparator{cb: cm.cb}
	for _, cs := range cm.classStrings {
		if cs.As == "" {
			return append(out, ttype.TClassString{})
		}
	}
	kept := keepMaximal(cm.classStrings, func(a, b ttype.TClassString) bool {
		return c.extends(a.As, b.As)
	})
	for _, cs := range kept {
		out = append(out, cs)
	}
	for _, l := range cm.literalClassStrings {
		absorbed := false
		for _, cs := range kept {
			if c.extends(l.Name, cs.As) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			out = append(out, l)
		}
	}
	return out
}

// keepMaximal drops every element contained by another kept element.
func keepMaximal[T ttype.Atomic](in []T, contained func(a, b T) bool) []T {
	dropped := make([]bool, len(in))
	for i := range in {
		for j := range in {
			if i == j || dropped[j] {
				continue
			}
			if contained(in[i], in[j]) {
				dropped[i] = true
				break
			}
		}
	}
	out := make([]T, 0, len(in))
	for i, x := range in {
		if !dropped[i] {
			out = append(out, x)
		}
	}
	return out
}

func (cm *combiner) appendArrays(out []ttype.Atomic) []ttype.Atomic {
	hasOther := len(cm.lists) > 0 || len(cm.keyed) > 0
	if !hasOther {
		if cm.emptyArray {
			out = append(out, ttype.TKeyed{})
		}
		return out
	}
	withEmpty := cm.emptyArray && !cm.overwriteEmptyArray

	if len(cm.keyed) == 0 {
		merged := cm.lists[0]
		for _, l := range cm.lists[1:] {
			merged = cm.mergeLists(merged, l)
		}
		if withEmpty {
			merged = cm.mergeLists(merged, ttype.TList{Element: ttype.Never()})
		}
		return append(out, cm.boundList(merged))
	}

	all := make([]ttype.TKeyed, 0, len(cm.lists)+len(cm.keyed))
	for _, l := range cm.lists {
		all = append(all, l.AsKeyed())
	}
	all = append(all, cm.keyed...)
	merged := all[0]
	for _, k := range all[1:] {
		merged = cm.mergeKeyed(merged, k)
	}
	if withEmpty {
		merged = cm.mergeKeyed(merged, ttype.TKeyed{})
	}
	return append(out, cm.boundKeyed(merged))
}

// unions joins two member unions inside a shape, respecting MaxDepth.
func (cm *combiner) unions(a, b *ttype.Union) *ttype.Union {
	if a == nil || a.IsNever() {
		return b
	}
	if b == nil || b.IsNever() {
		return a
	}
	if cm.depth >= MaxDepth {
		return a
	}
	cm.depth++
	defer func() { cm.depth-- }()

	inner := &combiner{cb: cm.cb, depth: cm.depth}
	types := make([]ttype.Atomic, 0, len(a.Types)+len(b.Types))
	types = append(types, a.Types...)
	types = append(types, b.Types...)
	return ttype.NewUnion(inner.combine(types))
}

func (cm *combiner) mergeLists(a, b ttype.TList) ttype.TList {
	out := ttype.TList{
		Element:  cm.unions(a.Element, b.Element),
		NonEmpty: a.IsDefinitelyNonEmpty() && b.IsDefinitelyNonEmpty(),
	}
	if out.Element == nil {
		out.Element = ttype.Never()
	}
	if a.KnownCount != nil && b.KnownCount != nil && *a.KnownCount == *b.KnownCount {
		out.KnownCount = a.KnownCount
	}
	if len(a.Known) == 0 && len(b.Known) == 0 {
		return out
	}

	out.Known = make(map[int]ttype.KnownItem, max(len(a.Known), len(b.Known)))
	for idx, ai := range a.Known {
		if bi, ok := b.Known[idx]; ok {
			out.Known[idx] = ttype.KnownItem{
				Type:              cm.unions(ai.Type, bi.Type),
				PossiblyUndefined: ai.PossiblyUndefined || bi.PossiblyUndefined,
			}
			continue
		}
		typ := ai.Type
		if b.HasFallback() {
			typ = cm.unions(typ, b.Element)
		}
		out.Known[idx] = ttype.KnownItem{Type: typ, PossiblyUndefined: true}
	}
	for idx, bi := range b.Known {
		if _, ok := a.Known[idx]; ok {
			continue
		}
		typ := bi.Type
		if a.HasFallback() {
			typ = cm.unions(typ, a.Element)
		}
		out.Known[idx] = ttype.KnownItem{Type: typ, PossiblyUndefined: true}
	}
	return out
}

func (cm *combiner) mergeKeyed(a, b ttype.TKeyed) ttype.TKeyed {
	out := ttype.TKeyed{NonEmpty: a.IsDefinitelyNonEmpty() && b.IsDefinitelyNonEmpty()}
	switch {
	case a.Params != nil && b.Params != nil:
		out.Params = &ttype.KeyedParams{
			Key:   cm.unions(a.Params.Key, b.Params.Key),
			Value: cm.unions(a.Params.Value, b.Params.Value),
		}
	case a.Params != nil:
		out.Params = a.Params
	case b.Params != nil:
		out.Params = b.Params
	}
	if len(a.Known) == 0 && len(b.Known) == 0 {
		return out
	}

	out.Known = make(map[ttype.ArrayKey]ttype.KnownItem, max(len(a.Known), len(b.Known)))
	for key, ai := range a.Known {
		if bi, ok := b.Known[key]; ok {
			out.Known[key] = ttype.KnownItem{
				Type:              cm.unions(ai.Type, bi.Type),
				PossiblyUndefined: ai.PossiblyUndefined || bi.PossiblyUndefined,
			}
			continue
		}
		typ := ai.Type
		if other, _, ok := b.ValueAt(key); ok {
			typ = cm.unions(typ, other)
		}
		out.Known[key] = ttype.KnownItem{Type: typ, PossiblyUndefined: true}
	}
	for key, bi := range b.Known {
		if _, ok := a.Known[key]; ok {
			continue
		}
		typ := bi.Type
		if other, _, ok := a.ValueAt(key); ok {
			typ = cm.unions(typ, other)
		}
		out.Known[key] = ttype.KnownItem{Type: typ, PossiblyUndefined: true}
	}
	return out
}

// boundList generalises a list with too many known elements.
func (cm *combiner) boundList(l ttype.TList) ttype.TList {
	if len(l.Known) <= MaxShapeItems {
		return l
	}
	elem := l.Element
	for _, i := range l.KnownIndices() {
		elem = cm.unions(elem, l.Known[i].Type)
	}
	return ttype.TList{Element: elem, NonEmpty: l.IsDefinitelyNonEmpty()}
}

// boundKeyed generalises a shape with too many known items.
func (cm *combiner) boundKeyed(k ttype.TKeyed) ttype.TKeyed {
	if len(k.Known) <= MaxShapeItems {
		return k
	}
	var key, value *ttype.Union
	if k.Params != nil {
		key, value = k.Params.Key, k.Params.Value
	}
	for _, ak := range k.SortedKeys() {
		key = cm.unions(key, ttype.Single(generalKey(ak)))
		value = cm.unions(value, k.Known[ak].Type)
	}
	return ttype.TKeyed{Params: &ttype.KeyedParams{Key: key, Value: value}, NonEmpty: k.IsDefinitelyNonEmpty()}
}

func generalKey(k ttype.ArrayKey) ttype.Atomic {
	if k.IsString {
		return ttype.TString{}
	}
	return ttype.TInt{}
}

func (cm *combiner) appendIterables(out []ttype.Atomic) []ttype.Atomic {
	if len(cm.iterables) == 0 {
		return out
	}
	merged := cm.iterables[0]
	for _, it := range cm.iterables[1:] {
		merged = ttype.TIterable{Key: cm.unions(merged.Key, it.Key), Value: cm.unions(merged.Value, it.Value)}
	}
	return append(out, merged)
}

func (cm *combiner) appendObjects(out []ttype.Atomic) []ttype.Atomic {
	if cm.objectAny {
		return append(out, ttype.TObject{})
	}
	c := comparator{cb: cm.cb}
	for _, n := range keepMaximal(cm.named, func(a, b ttype.TNamedObject) bool {
		return c.atomic(a, b, &ComparisonResult{})
	}) {
		out = append(out, n)
	}

	for _, e := range cm.enums {
		out = append(out, e)
	}
	byEnum := map[string][]ttype.TEnumCase{}
	var order []string
	for _, ec := range cm.enumCases {
		key := strings.ToLower(ec.Enum)
		if cm.hasEnum(ec.Enum) {
			continue
		}
		if _, seen := byEnum[key]; !seen {
			order = append(order, key)
		}
		byEnum[key] = append(byEnum[key], ec)
	}
	for _, key := range order {
		cases := byEnum[key]
		if cm.allCasesPresent(cases) {
			out = append(out, ttype.TEnum{Name: cases[0].Enum})
			continue
		}
		for _, ec := range cases {
			out = append(out, ec)
		}
	}

	for _, cl := range cm.closures {
		out = append(out, cl)
	}
	return out
}

func (cm *combiner) hasEnum(name string) bool {
	for _, e := range cm.enums {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

func (cm *combiner) allCasesPresent(cases []ttype.TEnumCase) bool {
	if cm.cb == nil {
		return false
	}
	declared := cm.cb.EnumCases(cases[0].Enum)
	if len(declared) == 0 {
		return false
	}
	for _, d := range declared {
		if !slices.ContainsFunc(cases, func(c ttype.TEnumCase) bool { return c.Case == d }) {
			return false
		}
	}
	return true
}

func (cm *combiner) appendCallables(out []ttype.Atomic) []ttype.Atomic {
	if cm.callableAny {
		return append(out, ttype.TCallable{})
	}
	for _, c := range cm.callables {
		out = append(out, c)
	}
	return out
}

func (cm *combiner) appendResources(out []ttype.Atomic) []ttype.Atomic {
	switch {
	case cm.resourceAny || (cm.resOpen && cm.resClose):
		return append(out, ttype.TResource{})
	case cm.resOpen:
		return append(out, ttype.TResource{State: ttype.ResourceOpen})
	case cm.resClose:
		return append(out, ttype.TResource{State: ttype.ResourceClosed})
	}
	return out
}
