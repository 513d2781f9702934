package reconciler

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// literal handles comparisons against one compile-time value.
func (rn *run) literal(existing *ttype.Union) (*ttype.Union, verdict) {
	a := rn.assertion()
	switch a.Kind {
	case assertion.IsIdentical:
		return rn.identical(existing, a.Type)
	case assertion.IsEqual:
		return rn.looseEqual(existing, a.Type)
	case assertion.IsNotIdentical:
		return rn.notIdentical(existing, a.Type)
	case assertion.IsNotEqual:
		return rn.notLooseEqual(existing, a.Type)
	}
	return existing, verdictNone
}

func (rn *run) identical(existing *ttype.Union, lit ttype.Atomic) (*ttype.Union, verdict) {
	out, ok := algebra.IntersectUnionWithUnion(rn.r.cb, existing, ttype.Single(lit))
	if !ok {
		return existing.WithTypes(nil), verdictImpossible
	}
	out = out.WithPossiblyUndefined(false)
	if single, ok := existing.Single(); ok && single.ID() == lit.ID() && !existing.PossiblyUndefined {
		return out, verdictRedundant
	}
	return out, verdictNone
}

func (rn *run) looseEqual(existing *ttype.Union, lit ttype.Atomic) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		types = append(types, rn.looseMatches(m, lit)...)
	}
	out := rn.combine(existing, types).WithPossiblyUndefined(false)
	if out.IsNever() {
		return out, verdictImpossible
	}
	if single, ok := existing.Single(); ok && single.ID() == lit.ID() && !existing.PossiblyUndefined {
		return out, verdictRedundant
	}
	return out, verdictNone
}

// looseMatches returns the part of m that can be == lit.
func (rn *run) looseMatches(m, lit ttype.Atomic) []ttype.Atomic {
	if ttype.IsLiteralAtomic(m) || isNullish(m) {
		if eq, known := looselyEqual(m, lit); known {
			if eq {
				return []ttype.Atomic{m}
			}
			return nil
		}
		return []ttype.Atomic{m}
	}

	switch lit.(type) {
	case ttype.TTrue:
		if v, ok := ttype.TruthyVariant(m); ok {
			return []ttype.Atomic{v}
		}
		return nil
	case ttype.TFalse:
		return algebra.FalsyVariants(m)
	case ttype.TEnumCase:
		out, _ := algebra.IntersectAtomicWithAtomic(rn.r.cb, m, lit)
		return out
	}

	v, ok := valueOf(lit)
	if !ok {
		return []ttype.Atomic{m}
	}

	switch t := m.(type) {
	case ttype.TGenericParam:
		if t.As == nil || rn.tooDeep() {
			return []ttype.Atomic{m}
		}
		inner := rn.nested()
		var types []ttype.Atomic
		for _, a := range t.As.Types {
			types = append(types, inner.looseMatches(a, lit)...)
		}
		if len(types) == 0 {
			return nil
		}
		t.As = ttype.NewUnion(algebra.Combine(types, rn.r.cb, false))
		return []ttype.Atomic{t}
	case ttype.TInt:
		if n, ok := v.asInt(); ok {
			return []ttype.Atomic{ttype.TLiteralInt{Value: n}}
		}
		return nil
	case ttype.TIntRange:
		if n, ok := v.asInt(); ok && inRange(t, n) {
			return []ttype.Atomic{ttype.TLiteralInt{Value: n}}
		}
		return nil
	case ttype.TFloat:
		if f, ok := v.asFloat(); ok {
			return []ttype.Atomic{ttype.TLiteralFloat{Value: f}}
		}
		return nil
	case ttype.TBool:
		if v.truthy() {
			return []ttype.Atomic{ttype.TTrue{}}
		}
		return []ttype.Atomic{ttype.TFalse{}}
	case ttype.TString:
		if v.kind == kindString && !ttype.IsNumericString(v.s) {
			s := ttype.TLiteralString{Value: v.s}
			if algebra.AtomicIsContainedBy(rn.r.cb, s, t, nil) {
				return []ttype.Atomic{s}
			}
			return nil
		}
		// Several numeric strings compare equal to a number.
		t.NonEmpty, t.Numeric = true, true
		return []ttype.Atomic{t}
	case ttype.TClassString:
		if v.kind == kindString && v.s != "" {
			return []ttype.Atomic{ttype.TLiteralClassString{Name: v.s}}
		}
		return nil
	case ttype.TList, ttype.TKeyed:
		// Arrays only equal arrays.
		return nil
	}
	return []ttype.Atomic{m}
}

func (rn *run) notIdentical(existing *ttype.Union, lit ttype.Atomic) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		types = append(types, rn.withoutLiteral(m, lit)...)
	}
	out := rn.combine(existing, types)
	switch {
	case out.IsNever():
		return out, verdictImpossible
	case !algebra.CanBeIdentical(rn.r.cb, existing, ttype.Single(lit)):
		return out, verdictRedundant
	}
	return out, verdictNone
}

// withoutLiteral removes the single value lit from m.
func (rn *run) withoutLiteral(m, lit ttype.Atomic) []ttype.Atomic {
	if m.ID() == lit.ID() {
		return nil
	}
	switch t := m.(type) {
	case ttype.TBool:
		switch lit.(type) {
		case ttype.TTrue:
			return []ttype.Atomic{ttype.TFalse{}}
		case ttype.TFalse:
			return []ttype.Atomic{ttype.TTrue{}}
		}
	case ttype.TIntRange:
		if l, ok := lit.(ttype.TLiteralInt); ok {
			return shrinkRange(t, l.Value)
		}
	case ttype.TEnum:
		if c, ok := lit.(ttype.TEnumCase); ok && strings.EqualFold(c.Enum, t.Name) {
			return rn.otherCases(t, c)
		}
	case ttype.TMixed:
		if _, ok := lit.(ttype.TNull); ok {
			t.NonNull = true
			return []ttype.Atomic{t}
		}
	case ttype.TGenericParam:
		if t.As == nil || rn.tooDeep() {
			return []ttype.Atomic{m}
		}
		inner := rn.nested()
		var types []ttype.Atomic
		for _, a := range t.As.Types {
			types = append(types, inner.withoutLiteral(a, lit)...)
		}
		if len(types) == 0 {
			return nil
		}
		t.As = ttype.NewUnion(algebra.Combine(types, rn.r.cb, false))
		return []ttype.Atomic{t}
	}
	return []ttype.Atomic{m}
}

func shrinkRange(r ttype.TIntRange, v int64) []ttype.Atomic {
	if r.Min != nil && *r.Min == v {
		r.Min = ttype.Int64(v + 1)
	} else if r.Max != nil && *r.Max == v {
		r.Max = ttype.Int64(v - 1)
	} else {
		return []ttype.Atomic{r}
	}
	if r.Min != nil && r.Max != nil {
		switch {
		case *r.Min > *r.Max:
			return nil
		case *r.Min == *r.Max:
			return []ttype.Atomic{ttype.TLiteralInt{Value: *r.Min}}
		}
	}
	return []ttype.Atomic{r}
}

// otherCases splits an enum into its cases other than c. Without case
// information the enum is kept whole.
func (rn *run) otherCases(e ttype.TEnum, c ttype.TEnumCase) []ttype.Atomic {
	if rn.r.cb == nil {
		return []ttype.Atomic{e}
	}
	cases := rn.r.cb.EnumCases(e.Name)
	if len(cases) == 0 {
		return []ttype.Atomic{e}
	}
	var out []ttype.Atomic
	for _, name := range cases {
		if name == c.Case {
			continue
		}
		out = append(out, ttype.TEnumCase{Enum: e.Name, Case: name})
	}
	return out
}

func (rn *run) notLooseEqual(existing *ttype.Union, lit ttype.Atomic) (*ttype.Union, verdict) {
	var (
		types    []ttype.Atomic
		anyMatch bool
	)
	for _, m := range existing.Types {
		if len(rn.nested().looseMatches(m, lit)) > 0 {
			anyMatch = true
		}
		if ttype.IsLiteralAtomic(m) || isNullish(m) {
			if eq, known := looselyEqual(m, lit); known && eq {
				continue
			}
		}
		if _, ok := m.(ttype.TBool); ok {
			if _, isBool := lit.(ttype.TTrue); isBool {
				types = append(types, ttype.TFalse{})
				continue
			}
			if _, isBool := lit.(ttype.TFalse); isBool {
				types = append(types, ttype.TTrue{})
				continue
			}
		}
		types = append(types, m)
	}
	out := rn.combine(existing, types)
	switch {
	case out.IsNever():
		return out, verdictImpossible
	case !anyMatch && !opaque(existing):
		return out, verdictRedundant
	}
	return out, verdictNone
}

// looseNull keeps the values that are == null: the falsy ones except "0".
func (rn *run) looseNull(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		for _, f := range algebra.FalsyVariants(m) {
			if s, ok := f.(ttype.TLiteralString); ok && s.Value == "0" {
				continue
			}
			types = append(types, f)
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

// notLooseNull removes the values that are == null.
func (rn *run) notLooseNull(existing *ttype.Union) (*ttype.Union, verdict) {
	var types []ttype.Atomic
	for _, m := range existing.Types {
		if ttype.IsLiteralAtomic(m) || isNullish(m) {
			if eq, known := looselyEqual(m, ttype.TNull{}); known && eq {
				continue
			}
			types = append(types, m)
			continue
		}
		switch t := m.(type) {
		case ttype.TBool:
			types = append(types, ttype.TTrue{})
		case ttype.TString:
			t.NonEmpty = true
			types = append(types, t)
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
		case ttype.TMixed:
			t.NonNull = true
			types = append(types, t)
		default:
			types = append(types, m)
		}
	}
	out := rn.combine(existing, types)
	return out, verdictFor(existing, out)
}

func isNullish(a ttype.Atomic) bool {
	switch a.(type) {
	case ttype.TNull, ttype.TVoid:
		return true
	}
	return false
}

func inRange(r ttype.TIntRange, v int64) bool {
	return (r.Min == nil || *r.Min <= v) && (r.Max == nil || v <= *r.Max)
}

type valueKind uint8

const (
	kindNull valueKind = iota
	kindBool
	kindInt
	kindFloat
	kindString
)

// value is a PHP scalar known at analysis time.
type value struct {
	kind valueKind
	b    bool
	i    int64
	f    float64
	s    string
}

func valueOf(a ttype.Atomic) (value, bool) {
	switch t := a.(type) {
	case ttype.TNull, ttype.TVoid:
		return value{kind: kindNull}, true
	case ttype.TTrue:
		return value{kind: kindBool, b: true}, true
	case ttype.TFalse:
		return value{kind: kindBool}, true
	case ttype.TLiteralInt:
		return value{kind: kindInt, i: t.Value}, true
	case ttype.TLiteralFloat:
		return value{kind: kindFloat, f: t.Value}, true
	case ttype.TLiteralString:
		return value{kind: kindString, s: t.Value}, true
	case ttype.TLiteralClassString:
		return value{kind: kindString, s: t.Name}, true
	}
	return value{}, false
}

func (v value) truthy() bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindInt:
		return v.i != 0
	case kindFloat:
		return v.f != 0
	case kindString:
		return v.s != "" && v.s != "0"
	}
	return false
}

// number returns the numeric value of v, and whether v is a number or a
// numeric string.
func (v value) number() (float64, bool) {
	switch v.kind {
	case kindInt:
		return float64(v.i), true
	case kindFloat:
		return v.f, true
	case kindString:
		if !ttype.IsNumericString(v.s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		return f, err == nil
	}
	return 0, false
}

func (v value) asInt() (int64, bool) {
	if v.kind == kindInt {
		return v.i, true
	}
	f, ok := v.number()
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func (v value) asFloat() (float64, bool) {
	return v.number()
}

// phpString renders a number the way PHP casts it to string.
func (v value) phpString() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e15 {
			return strconv.FormatFloat(v.f, 'f', -1, 64)
		}
		return strconv.FormatFloat(v.f, 'G', 14, 64)
	}
	return v.s
}

// looselyEqual applies PHP 8 == to two known values. known is false when
// either side is not a scalar literal.
func looselyEqual(a, b ttype.Atomic) (eq, known bool) {
	if ca, ok := a.(ttype.TEnumCase); ok {
		cb, ok := b.(ttype.TEnumCase)
		return ok && ca.ID() == cb.ID(), true
	}
	if _, ok := b.(ttype.TEnumCase); ok {
		return false, true
	}
	x, okx := valueOf(a)
	y, oky := valueOf(b)
	if !okx || !oky {
		return false, false
	}
	return compareLoose(x, y), true
}

func compareLoose(x, y value) bool {
	if x.kind == kindBool || y.kind == kindBool {
		return x.truthy() == y.truthy()
	}
	if x.kind == kindNull && y.kind == kindNull {
		return true
	}
	if x.kind == kindNull || y.kind == kindNull {
		other := x
		if x.kind == kindNull {
			other = y
		}
		if other.kind == kindString {
			return other.s == ""
		}
		return !other.truthy()
	}
	if x.kind == kindString && y.kind == kindString {
		fx, nx := x.number()
		fy, ny := y.number()
		if nx && ny {
			return fx == fy
		}
		return x.s == y.s
	}
	// Number against number or string.
	fx, nx := x.number()
	fy, ny := y.number()
	if nx && ny {
		return fx == fy
	}
	return x.phpString() == y.phpString()
}
