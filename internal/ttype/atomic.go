package ttype

import (
	"strconv"
	"strings"
)

// Atomic is a sealed interface representing one concrete type alternative.
// Only the T* types declared in this package implement it.
type Atomic interface {
	atomic() // Sealed - only these types implement it

	// ID returns the canonical text of the type. Two atomics with the same
	// ID describe the same set of values.
	ID() string
}

// TInt is the general int type.
type TInt struct{}

// TLiteralInt is a single compile-time known integer.
type TLiteralInt struct {
	Value int64
}

// TIntRange is an integer bounded on one or both sides. A nil bound is
// unbounded (min / max).
type TIntRange struct {
	Min *int64
	Max *int64
}

// TFloat is the general float type.
type TFloat struct{}

// TLiteralFloat is a single compile-time known float.
type TLiteralFloat struct {
	Value float64
}

// TBool is the general bool type (true|false).
type TBool struct{}

// TTrue is the literal true.
type TTrue struct{}

// TFalse is the literal false.
type TFalse struct{}

// TString is a general string, optionally refined. A TString with every
// flag false is a "boring" string.
type TString struct {
	NonEmpty  bool
	Truthy    bool // non-empty and not "0"
	Numeric   bool
	Lowercase bool
}

// TLiteralString is a single compile-time known string.
type TLiteralString struct {
	Value string
}

// TArrayKey is int|string.
type TArrayKey struct{}

// TScalar is bool|int|float|string.
type TScalar struct{}

// TNumeric is int|float|numeric-string.
type TNumeric struct{}

// TClassString is a string naming a class. An empty As means any class.
type TClassString struct {
	As string
}

// TLiteralClassString is Foo::class.
type TLiteralClassString struct {
	Name string
}

// Truthiness refines TMixed.
type Truthiness uint8

const (
	TruthinessUnknown Truthiness = iota
	TruthinessTruthy
	TruthinessFalsy
)

// TMixed is the top type. Flags narrow it without enumerating members.
type TMixed struct {
	Truthiness Truthiness
	NonNull    bool

	// FromLoopIsset marks a mixed synthesised for an isset check on a
	// variable first seen inside a loop. It does not affect the ID.
	FromLoopIsset bool
}

// TIterable is iterable<Key, Value>.
type TIterable struct {
	Key   *Union
	Value *Union
}

// TObject is any object.
type TObject struct{}

// TNamedObject is an instance of a class or interface. Extra holds
// intersection members (Foo&Bar).
type TNamedObject struct {
	Name       string
	TypeParams []*Union
	Extra      []Atomic
}

// TEnum is any case of an enum.
type TEnum struct {
	Name string
}

// TEnumCase is one case of an enum.
type TEnumCase struct {
	Enum string
	Case string
}

// FnParam is a callable signature parameter.
type FnParam struct {
	Type     *Union
	Optional bool
	Variadic bool
}

// TCallable is a callable with an optional signature. A nil Params and
// nil Return describe any callable.
type TCallable struct {
	Params []FnParam
	Return *Union
}

// TClosureAlias references a closure by its declaration id.
type TClosureAlias struct {
	Closure string
}

// ResourceState distinguishes resource variants.
type ResourceState uint8

const (
	ResourceUnknown ResourceState = iota
	ResourceOpen
	ResourceClosed
)

// TResource is a PHP resource.
type TResource struct {
	State ResourceState
}

// TReference is an unresolved symbol, a placeholder before name
// resolution decides whether it is a class, enum or alias.
type TReference struct {
	Name       string
	TypeParams []*Union
}

// TGenericParam is a template parameter bounded by As.
type TGenericParam struct {
	Name           string
	As             *Union
	DefiningEntity string
	Extra          []Atomic
}

// TTypeVariable is an unresolved type-level variable.
type TTypeVariable struct {
	Name string
}

// TConditional is (Subject is If ? Then : Else).
type TConditional struct {
	Subject *Union
	If      *Union
	Then    *Union
	Else    *Union
}

// DerivedKind selects the TDerived operator.
type DerivedKind uint8

const (
	DerivedKeyOf DerivedKind = iota
	DerivedValueOf
	DerivedPropertiesOf
)

// TDerived is key-of<T>, value-of<T> or properties-of<T>.
type TDerived struct {
	Kind DerivedKind
	Of   *Union
}

// TNever is the bottom type.
type TNever struct{}

// TNull is null.
type TNull struct{}

// TVoid is the return type of functions without a value. In a value
// position it behaves like null.
type TVoid struct{}

// TPlaceholder is an unresolved generic slot. It matches anything.
type TPlaceholder struct{}

func (TInt) atomic()                {}
func (TLiteralInt) atomic()         {}
func (TIntRange) atomic()           {}
func (TFloat) atomic()              {}
func (TLiteralFloat) atomic()       {}
func (TBool) atomic()               {}
func (TTrue) atomic()               {}
func (TFalse) atomic()              {}
func (TString) atomic()             {}
func (TLiteralString) atomic()      {}
func (TArrayKey) atomic()           {}
func (TScalar) atomic()             {}
func (TNumeric) atomic()            {}
func (TClassString) atomic()        {}
func (TLiteralClassString) atomic() {}
func (TMixed) atomic()              {}
func (TList) atomic()               {}
func (TKeyed) atomic()              {}
func (TIterable) atomic()           {}
func (TObject) atomic()             {}
func (TNamedObject) atomic()        {}
func (TEnum) atomic()               {}
func (TEnumCase) atomic()           {}
func (TCallable) atomic()           {}
func (TClosureAlias) atomic()       {}
func (TResource) atomic()           {}
func (TReference) atomic()          {}
func (TGenericParam) atomic()       {}
func (TTypeVariable) atomic()       {}
func (TConditional) atomic()        {}
func (TDerived) atomic()            {}
func (TNever) atomic()              {}
func (TNull) atomic()               {}
func (TVoid) atomic()               {}
func (TPlaceholder) atomic()        {}

func (TInt) ID() string { return "int" }

func (t TLiteralInt) ID() string { return strconv.FormatInt(t.Value, 10) }

func (t TIntRange) ID() string {
	lo, hi := "min", "max"
	if t.Min != nil {
		lo = strconv.FormatInt(*t.Min, 10)
	}
	if t.Max != nil {
		hi = strconv.FormatInt(*t.Max, 10)
	}
	return "int<" + lo + ", " + hi + ">"
}

func (TFloat) ID() string { return "float" }

func (t TLiteralFloat) ID() string {
	return "float(" + strconv.FormatFloat(t.Value, 'g', -1, 64) + ")"
}

func (TBool) ID() string  { return "bool" }
func (TTrue) ID() string  { return "true" }
func (TFalse) ID() string { return "false" }

func (t TString) ID() string {
	var b strings.Builder
	switch {
	case t.Truthy:
		b.WriteString("truthy-")
	case t.NonEmpty:
		b.WriteString("non-empty-")
	}
	if t.Lowercase {
		b.WriteString("lowercase-")
	}
	if t.Numeric {
		b.WriteString("numeric-")
	}
	b.WriteString("string")
	return b.String()
}

// IsBoring reports whether the string carries no refinement.
func (t TString) IsBoring() bool {
	return !t.NonEmpty && !t.Truthy && !t.Numeric && !t.Lowercase
}

func (t TLiteralString) ID() string { return quoteKey(t.Value) }

func (TArrayKey) ID() string { return "array-key" }
func (TScalar) ID() string   { return "scalar" }
func (TNumeric) ID() string  { return "numeric" }

func (t TClassString) ID() string {
	if t.As == "" {
		return "class-string"
	}
	return "class-string<" + t.As + ">"
}

func (t TLiteralClassString) ID() string { return t.Name + "::class" }

func (t TMixed) ID() string {
	switch {
	case t.Truthiness == TruthinessTruthy:
		return "truthy-mixed"
	case t.Truthiness == TruthinessFalsy:
		return "falsy-mixed"
	case t.NonNull:
		return "nonnull"
	default:
		return "mixed"
	}
}

func (t TIterable) ID() string {
	return "iterable<" + t.Key.ID() + ", " + t.Value.ID() + ">"
}

func (TObject) ID() string { return "object" }

func (t TNamedObject) ID() string {
	var b strings.Builder
	b.WriteString(t.Name)
	writeTypeParams(&b, t.TypeParams)
	for _, e := range t.Extra {
		b.WriteByte('&')
		b.WriteString(e.ID())
	}
	return b.String()
}

func (t TEnum) ID() string     { return "enum(" + t.Name + ")" }
func (t TEnumCase) ID() string { return t.Enum + "::" + t.Case }

func (t TCallable) ID() string {
	if t.Params == nil && t.Return == nil {
		return "callable"
	}
	var b strings.Builder
	b.WriteString("callable(")
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Variadic {
			b.WriteString("...")
		}
		b.WriteString(p.Type.ID())
		if p.Optional {
			b.WriteByte('=')
		}
	}
	b.WriteByte(')')
	if t.Return != nil {
		b.WriteString(": ")
		b.WriteString(t.Return.ID())
	}
	return b.String()
}

func (t TClosureAlias) ID() string { return "closure<" + t.Closure + ">" }

func (t TResource) ID() string {
	switch t.State {
	case ResourceOpen:
		return "open-resource"
	case ResourceClosed:
		return "closed-resource"
	default:
		return "resource"
	}
}

func (t TReference) ID() string {
	var b strings.Builder
	b.WriteString("unresolved<")
	b.WriteString(t.Name)
	writeTypeParams(&b, t.TypeParams)
	b.WriteByte('>')
	return b.String()
}

func (t TGenericParam) ID() string {
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteByte(':')
	b.WriteString(t.DefiningEntity)
	if t.As != nil && !t.As.IsPlainMixed() {
		b.WriteString(" as ")
		b.WriteString(t.As.ID())
	}
	for _, e := range t.Extra {
		b.WriteByte('&')
		b.WriteString(e.ID())
	}
	return b.String()
}

func (t TTypeVariable) ID() string { return "tvar<" + t.Name + ">" }

func (t TConditional) ID() string {
	return "(" + t.Subject.ID() + " is " + t.If.ID() + " ? " + t.Then.ID() + " : " + t.Else.ID() + ")"
}

func (t TDerived) ID() string {
	switch t.Kind {
	case DerivedValueOf:
		return "value-of<" + t.Of.ID() + ">"
	case DerivedPropertiesOf:
		return "properties-of<" + t.Of.ID() + ">"
	default:
		return "key-of<" + t.Of.ID() + ">"
	}
}

func (TNever) ID() string       { return "never" }
func (TNull) ID() string        { return "null" }
func (TVoid) ID() string        { return "void" }
func (TPlaceholder) ID() string { return "_" }

func writeTypeParams(b *strings.Builder, params []*Union) {
	if len(params) == 0 {
		return
	}
	b.WriteByte('<')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.ID())
	}
	b.WriteByte('>')
}

// quoteKey renders a string the way shape ids and literal ids show it.
func quoteKey(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// AtomicEqual reports whether two atomics describe the same type.
func AtomicEqual(a, b Atomic) bool {
	return a.ID() == b.ID()
}
