package assertion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/phpnarrow/internal/ttype"
)

// Kind names an assertion.
type Kind string

const (
	IsType         Kind = "is-type"
	IsNotType      Kind = "is-not-type"
	IsIdentical    Kind = "is-identical"
	IsNotIdentical Kind = "is-not-identical"
	IsEqual        Kind = "is-equal"
	IsNotEqual     Kind = "is-not-equal"

	IsIsset    Kind = "isset"
	IsNotIsset Kind = "not-isset"
	Falsy      Kind = "falsy"
	Truthy     Kind = "truthy"
	Empty      Kind = "empty"
	NonEmpty   Kind = "non-empty"

	HasArrayKey                   Kind = "has-array-key"
	DoesNotHaveArrayKey           Kind = "does-not-have-array-key"
	HasNonnullEntryForKey         Kind = "has-nonnull-entry-for-key"
	DoesNotHaveNonnullEntryForKey Kind = "does-not-have-nonnull-entry-for-key"

	NonEmptyCountable     Kind = "non-empty-countable"
	EmptyCountable        Kind = "empty-countable"
	HasExactCount         Kind = "has-exact-count"
	DoesNotHaveExactCount Kind = "does-not-have-exact-count"
	InArray               Kind = "in-array"
	NotInArray            Kind = "not-in-array"
	IsCountable           Kind = "countable"
	NotCountable          Kind = "not-countable"
)

// pairs maps each positive kind to its negation.
var pairs = map[Kind]Kind{
	IsType:                IsNotType,
	IsIdentical:           IsNotIdentical,
	IsEqual:               IsNotEqual,
	IsIsset:               IsNotIsset,
	Falsy:                 Truthy,
	Empty:                 NonEmpty,
	HasArrayKey:           DoesNotHaveArrayKey,
	HasNonnullEntryForKey: DoesNotHaveNonnullEntryForKey,
	NonEmptyCountable:     EmptyCountable,
	HasExactCount:         DoesNotHaveExactCount,
	InArray:               NotInArray,
	IsCountable:           NotCountable,
}

var negations = func() map[Kind]Kind {
	m := make(map[Kind]Kind, len(pairs))
	for pos, neg := range pairs {
		m[neg] = pos
	}
	return m
}()

// ParseKind resolves a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := pairs[k]; ok {
		return k, nil
	}
	if _, ok := negations[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown assertion kind %q", s)
}

// Negation returns the opposite kind.
func (k Kind) Negation() Kind {
	if n, ok := pairs[k]; ok {
		return n
	}
	return negations[k]
}

// IsNegation reports whether k is the negated side of its pair.
func (k Kind) IsNegation() bool {
	_, ok := negations[k]
	return ok
}

// Assertion is one narrowing fact. Only the operand its Kind uses is set.
type Assertion struct {
	Kind Kind

	// Type is the operand of the type, identity and equality kinds.
	Type ttype.Atomic

	// Key is the operand of the array-key kinds.
	Key ttype.ArrayKey

	// Count is the operand of the exact-count kinds.
	Count int

	// Values is the haystack of the in-array kinds.
	Values *ttype.Union
}

// Of returns an assertion that takes no operand, such as isset or truthy.
func Of(kind Kind) Assertion {
	return Assertion{Kind: kind}
}

// Type asserts the value is of type a.
func Type(a ttype.Atomic) Assertion { return Assertion{Kind: IsType, Type: a} }

// NotType asserts the value is not of type a.
func NotType(a ttype.Atomic) Assertion { return Assertion{Kind: IsNotType, Type: a} }

// Identical asserts $x === a.
func Identical(a ttype.Atomic) Assertion { return Assertion{Kind: IsIdentical, Type: a} }

// NotIdentical asserts $x !== a.
func NotIdentical(a ttype.Atomic) Assertion { return Assertion{Kind: IsNotIdentical, Type: a} }

// Equal asserts $x == a.
func Equal(a ttype.Atomic) Assertion { return Assertion{Kind: IsEqual, Type: a} }

// NotEqual asserts $x != a.
func NotEqual(a ttype.Atomic) Assertion { return Assertion{Kind: IsNotEqual, Type: a} }

// ArrayKey asserts array_key_exists(key, $x).
func ArrayKey(key ttype.ArrayKey) Assertion { return Assertion{Kind: HasArrayKey, Key: key} }

// NonnullEntry asserts isset($x[key]).
func NonnullEntry(key ttype.ArrayKey) Assertion {
	return Assertion{Kind: HasNonnullEntryForKey, Key: key}
}

// ExactCount asserts count($x) === n.
func ExactCount(n int) Assertion { return Assertion{Kind: HasExactCount, Count: n} }

// In asserts in_array($x, values, true).
func In(values *ttype.Union) Assertion { return Assertion{Kind: InArray, Values: values} }

// Negation returns the assertion that holds exactly when a does not.
func (a Assertion) Negation() Assertion {
	a.Kind = a.Kind.Negation()
	return a
}

// IsNegation reports whether a belongs on the subtraction path.
func (a Assertion) IsNegation() bool {
	return a.Kind.IsNegation()
}

// HasLiteralValue reports whether a compares against a single literal.
func (a Assertion) HasLiteralValue() bool {
	switch a.Kind {
	case IsIdentical, IsNotIdentical, IsEqual, IsNotEqual:
		return a.Type != nil && ttype.IsLiteralAtomic(a.Type)
	}
	return false
}

// HasEquality reports whether a uses loose comparison.
func (a Assertion) HasEquality() bool {
	return a.Kind == IsEqual || a.Kind == IsNotEqual
}

// HasIdentity reports whether a uses strict comparison.
func (a Assertion) HasIdentity() bool {
	return a.Kind == IsIdentical || a.Kind == IsNotIdentical
}

// ImpliesIsset reports whether a holding means the subject exists and is
// not null, so every enclosing array or object must exist too.
func (a Assertion) ImpliesIsset() bool {
	switch a.Kind {
	case IsIsset, Truthy, NonEmpty, HasArrayKey, HasNonnullEntryForKey, NonEmptyCountable, HasExactCount:
		return true
	case IsType, IsIdentical:
		if a.Type == nil {
			return false
		}
		switch a.Type.(type) {
		case ttype.TNull, ttype.TVoid, ttype.TMixed:
			return false
		}
		return true
	}
	return false
}

// String renders a in the notation used by diagnostics and traces.
// Negations carry a leading '!'.
func (a Assertion) String() string {
	prefix := ""
	k := a.Kind
	if k.IsNegation() {
		prefix = "!"
		k = k.Negation()
	}
	return prefix + a.body(k)
}

// Positive renders a without its negation marker.
func (a Assertion) Positive() string {
	k := a.Kind
	if k.IsNegation() {
		k = k.Negation()
	}
	return a.body(k)
}

func (a Assertion) body(k Kind) string {
	switch k {
	case IsType:
		return typeID(a.Type)
	case IsIdentical:
		return "=" + typeID(a.Type)
	case IsEqual:
		return "~" + typeID(a.Type)
	case HasArrayKey:
		return "has-array-key(" + a.Key.String() + ")"
	case HasNonnullEntryForKey:
		return "has-nonnull-entry(" + a.Key.String() + ")"
	case HasExactCount:
		return "has-exact-count(" + strconv.Itoa(a.Count) + ")"
	case InArray:
		if a.Values == nil {
			return "in-array(never)"
		}
		return "in-array(" + a.Values.ID() + ")"
	}
	return string(k)
}

func typeID(a ttype.Atomic) string {
	if a == nil {
		return "mixed"
	}
	return a.ID()
}

// Join renders an OR group as "a|b".
func Join(group []Assertion) string {
	parts := make([]string, len(group))
	for i, a := range group {
		parts[i] = a.String()
	}
	return strings.Join(parts, "|")
}
