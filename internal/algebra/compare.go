package algebra

import (
	"strings"

	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// ComparisonResult carries side facts out of a containment check.
type ComparisonResult struct {
	// TypeCoerced is set when the input was not contained but the
	// container is contained by the input, i.e. a runtime value could
	// still match after a narrowing coercion.
	TypeCoerced bool

	// TypeCoercedFromMixed is set when a mixed input was compared with a
	// narrower container. Callers use it to flag less specific returns.
	TypeCoercedFromMixed bool

	// TypeCoercedToLiteral is set when a general scalar input was
	// compared with a literal container of the same kind.
	TypeCoercedToLiteral bool

	// ReplacementAtomic is set when the container is a template parameter
	// whose constraint admits the input. It holds the parameter with its
	// constraint narrowed to the input.
	ReplacementAtomic ttype.Atomic
}

// IsContainedBy reports whether every value of input is a value of
// container. res may be nil.
func IsContainedBy(cb codebase.Codebase, input, container *ttype.Union, res *ComparisonResult) bool {
	if res == nil {
		res = &ComparisonResult{}
	}
	c := comparator{cb: cb}
	return c.union(input, container, res)
}

// AtomicIsContainedBy is IsContainedBy for single atomics.
func AtomicIsContainedBy(cb codebase.Codebase, input, container ttype.Atomic, res *ComparisonResult) bool {
	if res == nil {
		res = &ComparisonResult{}
	}
	c := comparator{cb: cb}
	return c.atomic(input, container, res)
}

type comparator struct {
	cb    codebase.Codebase
	depth int
}

func (c *comparator) union(input, container *ttype.Union, res *ComparisonResult) bool {
	if container.IsPlainMixed() || input.IsNever() {
		return true
	}
	for _, in := range input.Types {
		matched := false
		for _, cont := range container.Types {
			if c.atomic(in, cont, res) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (c *comparator) atomic(in, cont ttype.Atomic, res *ComparisonResult) bool {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > MaxDepth {
		return false
	}

	switch ct := cont.(type) {
	case ttype.TPlaceholder:
		return true
	case ttype.TMixed:
		return c.intoMixed(in, ct, res)
	case ttype.TGenericParam:
		if it, ok := in.(ttype.TGenericParam); ok && it.Name == ct.Name && it.DefiningEntity == ct.DefiningEntity {
			return true
		}
		if ct.As != nil && c.union(ttype.Single(in), ct.As, &ComparisonResult{}) {
			narrowed := ct
			narrowed.As = ttype.Single(in)
			res.ReplacementAtomic = narrowed
		}
		return false
	}

	switch it := in.(type) {
	case ttype.TNever, ttype.TPlaceholder:
		return true
	case ttype.TGenericParam:
		if it.As == nil {
			return false
		}
		return c.union(it.As, ttype.Single(cont), res)
	case ttype.TMixed:
		res.TypeCoerced = true
		res.TypeCoercedFromMixed = true
		return false
	case ttype.TConditional:
		return c.union(it.Then, ttype.Single(cont), res) && c.union(it.Else, ttype.Single(cont), res)
	}

	if ok, handled := c.scalar(in, cont, res); handled {
		return ok
	}

	switch it := in.(type) {
	case ttype.TNull:
		switch cont.(type) {
		case ttype.TNull, ttype.TVoid:
			return true
		}
		return false
	case ttype.TVoid:
		switch cont.(type) {
		case ttype.TNull, ttype.TVoid:
			return true
		}
		return false
	case ttype.TList:
		return c.listInto(it, cont, res)
	case ttype.TKeyed:
		return c.keyedInto(it, cont, res)
	case ttype.TIterable:
		if ct, ok := cont.(ttype.TIterable); ok {
			return c.union(it.Key, ct.Key, res) && c.union(it.Value, ct.Value, res)
		}
		return false
	case ttype.TObject:
		_, ok := cont.(ttype.TObject)
		return ok
	case ttype.TNamedObject:
		return c.namedInto(it, cont, res)
	case ttype.TEnum:
		return c.enumInto(it, cont)
	case ttype.TEnumCase:
		return c.enumCaseInto(it, cont)
	case ttype.TClosureAlias:
		switch ct := cont.(type) {
		case ttype.TObject:
			return true
		case ttype.TCallable:
			return ct.Params == nil && ct.Return == nil
		case ttype.TNamedObject:
			return len(ct.Extra) == 0 && c.extends("Closure", ct.Name)
		case ttype.TClosureAlias:
			return ct.Closure == it.Closure
		}
		return false
	case ttype.TCallable:
		if ct, ok := cont.(ttype.TCallable); ok {
			return (ct.Params == nil && ct.Return == nil) || it.ID() == ct.ID()
		}
		return false
	case ttype.TResource:
		if ct, ok := cont.(ttype.TResource); ok {
			return ct.State == ttype.ResourceUnknown || ct.State == it.State
		}
		return false
	}

	// References, type variables and derived types only match themselves.
	return in.ID() == cont.ID()
}

func (c *comparator) intoMixed(in ttype.Atomic, ct ttype.TMixed, res *ComparisonResult) bool {
	if m, ok := in.(ttype.TMixed); ok {
		switch ct.Truthiness {
		case ttype.TruthinessTruthy:
			if m.Truthiness != ttype.TruthinessTruthy {
				res.TypeCoerced, res.TypeCoercedFromMixed = true, true
				return false
			}
		case ttype.TruthinessFalsy:
			if m.Truthiness != ttype.TruthinessFalsy {
				res.TypeCoerced, res.TypeCoercedFromMixed = true, true
				return false
			}
		}
		if ct.NonNull && !m.NonNull && m.Truthiness != ttype.TruthinessTruthy {
			res.TypeCoerced, res.TypeCoercedFromMixed = true, true
			return false
		}
		return true
	}
	if g, ok := in.(ttype.TGenericParam); ok {
		if g.As == nil {
			return ct.Truthiness == ttype.TruthinessUnknown && !ct.NonNull
		}
		return c.union(g.As, ttype.Single(ct), res)
	}
	switch ct.Truthiness {
	case ttype.TruthinessTruthy:
		return ttype.IsAtomicAlwaysTruthy(in)
	case ttype.TruthinessFalsy:
		return ttype.IsAtomicAlwaysFalsy(in)
	}
	if ct.NonNull {
		switch in.(type) {
		case ttype.TNull, ttype.TVoid:
			return false
		}
	}
	return true
}

// scalar handles every scalar input. handled is false for non-scalars.
func (c *comparator) scalar(in, cont ttype.Atomic, res *ComparisonResult) (ok, handled bool) {
	if !ttype.IsScalarAtomic(in) {
		return false, false
	}
	if _, isScalar := cont.(ttype.TScalar); isScalar {
		return true, true
	}

	switch it := in.(type) {
	case ttype.TLiteralInt:
		switch ct := cont.(type) {
		case ttype.TLiteralInt:
			return ct.Value == it.Value, true
		case ttype.TInt, ttype.TArrayKey, ttype.TNumeric:
			return true, true
		case ttype.TIntRange:
			return rangeContains(ct, it.Value), true
		}
	case ttype.TIntRange:
		switch ct := cont.(type) {
		case ttype.TInt, ttype.TArrayKey, ttype.TNumeric:
			return true, true
		case ttype.TIntRange:
			return rangeWithin(it, ct), true
		case ttype.TLiteralInt:
			if it.Min != nil && it.Max != nil && *it.Min == ct.Value && *it.Max == ct.Value {
				return true, true
			}
			res.TypeCoercedToLiteral = true
			return false, true
		}
	case ttype.TInt:
		switch cont.(type) {
		case ttype.TInt, ttype.TArrayKey, ttype.TNumeric:
			return true, true
		case ttype.TLiteralInt:
			res.TypeCoerced, res.TypeCoercedToLiteral = true, true
			return false, true
		case ttype.TIntRange:
			res.TypeCoerced = true
			return false, true
		}
	case ttype.TLiteralFloat:
		switch ct := cont.(type) {
		case ttype.TLiteralFloat:
			return ct.Value == it.Value, true
		case ttype.TFloat, ttype.TNumeric:
			return true, true
		}
	case ttype.TFloat:
		switch cont.(type) {
		case ttype.TFloat, ttype.TNumeric:
			return true, true
		case ttype.TLiteralFloat:
			res.TypeCoerced, res.TypeCoercedToLiteral = true, true
			return false, true
		}
	case ttype.TTrue:
		switch cont.(type) {
		case ttype.TTrue, ttype.TBool:
			return true, true
		}
	case ttype.TFalse:
		switch cont.(type) {
		case ttype.TFalse, ttype.TBool:
			return true, true
		}
	case ttype.TBool:
		switch cont.(type) {
		case ttype.TBool:
			return true, true
		case ttype.TTrue, ttype.TFalse:
			res.TypeCoerced = true
			return false, true
		}
	case ttype.TLiteralString:
		return c.literalStringInto(it, cont), true
	case ttype.TString:
		switch ct := cont.(type) {
		case ttype.TString:
			if stringFlagsWithin(it, ct) {
				return true, true
			}
			res.TypeCoerced = true
			return false, true
		case ttype.TArrayKey:
			return true, true
		case ttype.TNumeric:
			return it.Numeric, true
		case ttype.TLiteralString, ttype.TClassString, ttype.TLiteralClassString:
			res.TypeCoerced = true
			if _, lit := ct.(ttype.TLiteralString); lit {
				res.TypeCoercedToLiteral = true
			}
			return false, true
		}
	case ttype.TClassString:
		switch ct := cont.(type) {
		case ttype.TClassString:
			return ct.As == "" || (it.As != "" && c.extends(it.As, ct.As)), true
		case ttype.TString:
			return !ct.Numeric && !ct.Lowercase, true
		case ttype.TArrayKey:
			return true, true
		}
	case ttype.TLiteralClassString:
		switch ct := cont.(type) {
		case ttype.TLiteralClassString:
			return strings.EqualFold(ct.Name, it.Name), true
		case ttype.TClassString:
			return ct.As == "" || c.extends(it.Name, ct.As), true
		case ttype.TString:
			return !ct.Numeric && (!ct.Lowercase || strings.ToLower(it.Name) == it.Name), true
		case ttype.TLiteralString:
			return ct.Value == it.Name, true
		case ttype.TArrayKey:
			return true, true
		}
	case ttype.TArrayKey:
		switch cont.(type) {
		case ttype.TArrayKey:
			return true, true
		case ttype.TInt, ttype.TString:
			res.TypeCoerced = true
			return false, true
		}
	case ttype.TNumeric:
		switch cont.(type) {
		case ttype.TNumeric:
			return true, true
		case ttype.TInt, ttype.TFloat:
			res.TypeCoerced = true
			return false, true
		}
	case ttype.TScalar:
		if ttype.IsScalarAtomic(cont) {
			res.TypeCoerced = true
		}
		return false, true
	}
	return false, true
}

func (c *comparator) literalStringInto(it ttype.TLiteralString, cont ttype.Atomic) bool {
	v := it.Value
	switch ct := cont.(type) {
	case ttype.TLiteralString:
		return ct.Value == v
	case ttype.TString:
		if (ct.NonEmpty || ct.Truthy) && v == "" {
			return false
		}
		if ct.Truthy && v == "0" {
			return false
		}
		if ct.Numeric && !ttype.IsNumericString(v) {
			return false
		}
		if ct.Lowercase && strings.ToLower(v) != v {
			return false
		}
		return true
	case ttype.TArrayKey:
		return true
	case ttype.TNumeric:
		return ttype.IsNumericString(v)
	case ttype.TLiteralClassString:
		return strings.EqualFold(ct.Name, v)
	case ttype.TClassString:
		if c.cb == nil || !c.cb.ClassExists(v) {
			return false
		}
		return ct.As == "" || c.extends(v, ct.As)
	}
	return false
}

func stringFlagsWithin(in, cont ttype.TString) bool {
	if cont.Truthy && !in.Truthy {
		return false
	}
	if cont.NonEmpty && !(in.NonEmpty || in.Truthy) {
		return false
	}
	if cont.Numeric && !in.Numeric {
		return false
	}
	if cont.Lowercase && !in.Lowercase {
		return false
	}
	return true
}

func rangeContains(r ttype.TIntRange, v int64) bool {
	return (r.Min == nil || v >= *r.Min) && (r.Max == nil || v <= *r.Max)
}

func rangeWithin(in, cont ttype.TIntRange) bool {
	if cont.Min != nil && (in.Min == nil || *in.Min < *cont.Min) {
		return false
	}
	if cont.Max != nil && (in.Max == nil || *in.Max > *cont.Max) {
		return false
	}
	return true
}

func (c *comparator) listInto(it ttype.TList, cont ttype.Atomic, res *ComparisonResult) bool {
	switch ct := cont.(type) {
	case ttype.TList:
		if ct.NonEmpty && !it.IsDefinitelyNonEmpty() {
			return false
		}
		if ct.KnownCount != nil && (it.KnownCount == nil || *it.KnownCount != *ct.KnownCount) {
			return false
		}
		for idx, citem := range ct.Known {
			typ, maybe, ok := it.ValueAt(ttype.IntKey(int64(idx)))
			if !ok {
				if citem.PossiblyUndefined {
					continue
				}
				return false
			}
			if maybe && !citem.PossiblyUndefined {
				return false
			}
			if !c.union(typ, citem.Type, res) {
				return false
			}
		}
		for idx, item := range it.Known {
			if _, ok := ct.Known[idx]; ok {
				continue
			}
			if !ct.HasFallback() || !c.union(item.Type, ct.Element, res) {
				return false
			}
		}
		if it.HasFallback() {
			if !ct.HasFallback() || !c.union(it.Element, ct.Element, res) {
				return false
			}
		}
		return true
	case ttype.TKeyed:
		return c.keyedInto(it.AsKeyed(), ct, res)
	case ttype.TIterable:
		return c.union(ttype.Single(ttype.TIntRange{Min: ttype.Int64(0)}), ct.Key, res) &&
			c.valuesInto(listValues(it), ct.Value, res)
	}
	return false
}

func (c *comparator) keyedInto(it ttype.TKeyed, cont ttype.Atomic, res *ComparisonResult) bool {
	switch ct := cont.(type) {
	case ttype.TKeyed:
		if ct.NonEmpty && !it.IsDefinitelyNonEmpty() {
			return false
		}
		for key, citem := range ct.Known {
			typ, maybe, ok := it.ValueAt(key)
			if !ok {
				if citem.PossiblyUndefined {
					continue
				}
				return false
			}
			if maybe && !citem.PossiblyUndefined {
				return false
			}
			if !c.union(typ, citem.Type, res) {
				return false
			}
		}
		for key, item := range it.Known {
			if _, ok := ct.Known[key]; ok {
				continue
			}
			if ct.Params == nil {
				return false
			}
			if !c.union(ttype.Single(key.ToAtomic()), ct.Params.Key, res) || !c.union(item.Type, ct.Params.Value, res) {
				return false
			}
		}
		if it.Params != nil {
			if ct.Params == nil {
				return false
			}
			if !c.union(it.Params.Key, ct.Params.Key, res) || !c.union(it.Params.Value, ct.Params.Value, res) {
				return false
			}
		}
		return true
	case ttype.TList:
		l, ok := keyedAsList(it)
		if !ok {
			return false
		}
		return c.listInto(l, ct, res)
	case ttype.TIterable:
		return c.union(keyedKeys(it), ct.Key, res) && c.valuesInto(keyedValues(it), ct.Value, res)
	}
	return false
}

func (c *comparator) valuesInto(values []*ttype.Union, cont *ttype.Union, res *ComparisonResult) bool {
	for _, v := range values {
		if !c.union(v, cont, res) {
			return false
		}
	}
	return true
}

func (c *comparator) namedInto(it ttype.TNamedObject, cont ttype.Atomic, res *ComparisonResult) bool {
	switch ct := cont.(type) {
	case ttype.TObject:
		return true
	case ttype.TNamedObject:
		if !c.namedSatisfies(it, ct.Name) {
			return false
		}
		for _, e := range ct.Extra {
			if !c.atomic(it, e, res) {
				return false
			}
		}
		if len(ct.TypeParams) > 0 && len(it.TypeParams) == len(ct.TypeParams) && strings.EqualFold(it.Name, ct.Name) {
			for i := range ct.TypeParams {
				if !c.union(it.TypeParams[i], ct.TypeParams[i], res) {
					return false
				}
			}
		}
		return true
	case ttype.TCallable:
		return ct.Params == nil && ct.Return == nil && c.namedSatisfies(it, "Closure")
	case ttype.TIterable:
		return ct.Key.IsPlainMixed() && ct.Value.IsPlainMixed() && c.namedSatisfies(it, "Traversable")
	}
	return false
}

// namedSatisfies reports whether it, or one of its intersection members,
// extends or implements name.
func (c *comparator) namedSatisfies(it ttype.TNamedObject, name string) bool {
	if c.extends(it.Name, name) {
		return true
	}
	for _, e := range it.Extra {
		if n, ok := e.(ttype.TNamedObject); ok && c.extends(n.Name, name) {
			return true
		}
	}
	return false
}

func (c *comparator) enumInto(it ttype.TEnum, cont ttype.Atomic) bool {
	switch ct := cont.(type) {
	case ttype.TObject:
		return true
	case ttype.TEnum:
		return strings.EqualFold(ct.Name, it.Name)
	case ttype.TEnumCase:
		if c.cb == nil || !strings.EqualFold(ct.Enum, it.Name) {
			return false
		}
		cases := c.cb.EnumCases(it.Name)
		return len(cases) == 1 && cases[0] == ct.Case
	case ttype.TNamedObject:
		return len(ct.Extra) == 0 && (strings.EqualFold(ct.Name, it.Name) || c.extends(it.Name, ct.Name) || isEnumInterface(ct.Name))
	}
	return false
}

func (c *comparator) enumCaseInto(it ttype.TEnumCase, cont ttype.Atomic) bool {
	switch ct := cont.(type) {
	case ttype.TObject:
		return true
	case ttype.TEnumCase:
		return strings.EqualFold(ct.Enum, it.Enum) && ct.Case == it.Case
	case ttype.TEnum:
		return strings.EqualFold(ct.Name, it.Enum)
	case ttype.TNamedObject:
		return len(ct.Extra) == 0 && (strings.EqualFold(ct.Name, it.Enum) || c.extends(it.Enum, ct.Name) || isEnumInterface(ct.Name))
	}
	return false
}

func isEnumInterface(name string) bool {
	return strings.EqualFold(name, "UnitEnum")
}

// extends is codebase.ClassExtendsOrImplements with a name-only fallback.
func (c *comparator) extends(child, parent string) bool {
	if strings.EqualFold(strings.TrimPrefix(child, `\`), strings.TrimPrefix(parent, `\`)) {
		return true
	}
	if c.cb == nil {
		return false
	}
	return c.cb.ClassExtendsOrImplements(child, parent)
}

// keyedAsList converts a keyed array whose keys can only be 0..n-1 into a
// list. The empty array is the empty list.
func keyedAsList(k ttype.TKeyed) (ttype.TList, bool) {
	if k.Params != nil {
		return ttype.TList{}, false
	}
	out := ttype.TList{Element: ttype.Never(), NonEmpty: k.NonEmpty}
	if len(k.Known) == 0 {
		return out, true
	}
	out.Known = make(map[int]ttype.KnownItem, len(k.Known))
	for key, item := range k.Known {
		if key.IsString || key.Int < 0 || key.Int >= int64(len(k.Known)) {
			return ttype.TList{}, false
		}
		out.Known[int(key.Int)] = item
	}
	// An optional item followed by a required one would leave a gap.
	for i := 1; i < len(k.Known); i++ {
		if out.Known[i-1].PossiblyUndefined && !out.Known[i].PossiblyUndefined {
			return ttype.TList{}, false
		}
	}
	return out, true
}

func listValues(l ttype.TList) []*ttype.Union {
	out := make([]*ttype.Union, 0, len(l.Known)+1)
	for _, i := range l.KnownIndices() {
		out = append(out, l.Known[i].Type)
	}
	if l.HasFallback() {
		out = append(out, l.Element)
	}
	return out
}

func keyedValues(k ttype.TKeyed) []*ttype.Union {
	out := make([]*ttype.Union, 0, len(k.Known)+1)
	for _, key := range k.SortedKeys() {
		out = append(out, k.Known[key].Type)
	}
	if k.Params != nil {
		out = append(out, k.Params.Value)
	}
	return out
}

func keyedKeys(k ttype.TKeyed) *ttype.Union {
	types := make([]ttype.Atomic, 0, len(k.Known)+1)
	for _, key := range k.SortedKeys() {
		types = append(types, key.ToAtomic())
	}
	if k.Params != nil {
		types = append(types, k.Params.Key.Types...)
	}
	return ttype.NewUnion(types)
}
