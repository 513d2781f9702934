// Package typespec decodes the structural type notation used by scenario
// and codebase fixture files into ttype unions.
//
// A spec is either a keyword scalar or a mapping:
//
//	int                                   # keyword
//	{literal: 5}                          # literal int / string / float / bool
//	{kind: union, of: [int, null]}
//	{kind: list, element: string}
//	{kind: list, items: [{type: int}, {type: string, optional: true}]}
//	{kind: array, key: string, value: int}
//	{kind: array, items: [{key: id, type: int}]}   # closed shape
//	{kind: class, name: Foo, params: [int]}
//	{kind: generic, name: T, entity: Foo, as: int}
//
// This is not a type-string parser. Every construct maps one to one onto
// a ttype variant so fixtures stay unambiguous.
package typespec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/phpnarrow/internal/ttype"
)

// Spec is one node of the notation.
type Spec struct {
	Kind     string     `yaml:"kind,omitempty"`
	Literal  any        `yaml:"literal,omitempty"`
	Name     string     `yaml:"name,omitempty"`
	Case     string     `yaml:"case,omitempty"`
	Entity   string     `yaml:"entity,omitempty"`
	Min      *int64     `yaml:"min,omitempty"`
	Max      *int64     `yaml:"max,omitempty"`
	Of       []Spec     `yaml:"of,omitempty"`
	Params   []Spec     `yaml:"params,omitempty"`
	Key      *Spec      `yaml:"key,omitempty"`
	Value    *Spec      `yaml:"value,omitempty"`
	Element  *Spec      `yaml:"element,omitempty"`
	As       *Spec      `yaml:"as,omitempty"`
	Items    []ItemSpec `yaml:"items,omitempty"`
	NonEmpty bool       `yaml:"non_empty,omitempty"`
	State    string     `yaml:"state,omitempty"`

	PossiblyUndefined bool `yaml:"possibly_undefined,omitempty"`
}

// ItemSpec is a known entry of a list or shape. List items take their
// index from their position; shape items need a key.
type ItemSpec struct {
	Key      any  `yaml:"key,omitempty"`
	Type     Spec `yaml:"type"`
	Optional bool `yaml:"optional,omitempty"`
}

// UnmarshalYAML accepts a bare keyword as shorthand for {kind: keyword}.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = Spec{Kind: node.Value}
		return nil
	}
	type plain Spec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Spec(p)
	return nil
}

// Parse decodes a single spec from YAML text.
func Parse(src string) (*ttype.Union, error) {
	var s Spec
	if err := yaml.Unmarshal([]byte(src), &s); err != nil {
		return nil, fmt.Errorf("typespec: %w", err)
	}
	return s.Build()
}

// MustParse is Parse for fixtures known to be valid.
func MustParse(src string) *ttype.Union {
	u, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return u
}

var keywords = map[string]func() ttype.Atomic{
	"int":               func() ttype.Atomic { return ttype.TInt{} },
	"positive-int":      func() ttype.Atomic { return ttype.TIntRange{Min: ttype.Int64(1)} },
	"non-negative-int":  func() ttype.Atomic { return ttype.TIntRange{Min: ttype.Int64(0)} },
	"negative-int":      func() ttype.Atomic { return ttype.TIntRange{Max: ttype.Int64(-1)} },
	"float":             func() ttype.Atomic { return ttype.TFloat{} },
	"bool":              func() ttype.Atomic { return ttype.TBool{} },
	"true":              func() ttype.Atomic { return ttype.TTrue{} },
	"false":             func() ttype.Atomic { return ttype.TFalse{} },
	"string":            func() ttype.Atomic { return ttype.TString{} },
	"non-empty-string":  func() ttype.Atomic { return ttype.TString{NonEmpty: true} },
	"truthy-string":     func() ttype.Atomic { return ttype.TString{NonEmpty: true, Truthy: true} },
	"numeric-string":    func() ttype.Atomic { return ttype.TString{NonEmpty: true, Numeric: true} },
	"lowercase-string":  func() ttype.Atomic { return ttype.TString{Lowercase: true} },
	"array-key":         func() ttype.Atomic { return ttype.TArrayKey{} },
	"scalar":            func() ttype.Atomic { return ttype.TScalar{} },
	"numeric":           func() ttype.Atomic { return ttype.TNumeric{} },
	"class-string":      func() ttype.Atomic { return ttype.TClassString{} },
	"mixed":             func() ttype.Atomic { return ttype.TMixed{} },
	"nonnull":           func() ttype.Atomic { return ttype.TMixed{NonNull: true} },
	"truthy-mixed":      func() ttype.Atomic { return ttype.TMixed{Truthiness: ttype.TruthinessTruthy, NonNull: true} },
	"falsy-mixed":       func() ttype.Atomic { return ttype.TMixed{Truthiness: ttype.TruthinessFalsy} },
	"object":            func() ttype.Atomic { return ttype.TObject{} },
	"null":              func() ttype.Atomic { return ttype.TNull{} },
	"void":              func() ttype.Atomic { return ttype.TVoid{} },
	"never":             func() ttype.Atomic { return ttype.TNever{} },
	"resource":          func() ttype.Atomic { return ttype.TResource{} },
	"callable":          func() ttype.Atomic { return ttype.TCallable{} },
	"iterable":          func() ttype.Atomic { return ttype.TIterable{Key: ttype.Mixed(), Value: ttype.Mixed()} },
	"array":             func() ttype.Atomic { return ttype.MixedArray() },
	"non-empty-array":   func() ttype.Atomic { a := ttype.MixedArray(); a.NonEmpty = true; return a },
	"list":              func() ttype.Atomic { return ttype.ListOf(ttype.Mixed()) },
	"non-empty-list":    func() ttype.Atomic { return ttype.TList{Element: ttype.Mixed(), NonEmpty: true} },
	"empty-array":       func() ttype.Atomic { return ttype.TKeyed{} },
	"placeholder-array": func() ttype.Atomic { return ttype.PlaceholderArray() },
}

// Build converts the spec into a union.
func (s Spec) Build() (*ttype.Union, error) {
	var u *ttype.Union
	if s.Kind == "union" {
		types := make([]ttype.Atomic, 0, len(s.Of))
		for i, m := range s.Of {
			mu, err := m.Build()
			if err != nil {
				return nil, fmt.Errorf("union member %d: %w", i, err)
			}
			types = append(types, mu.Types...)
		}
		u = ttype.NewUnion(types)
	} else {
		a, err := s.atomic()
		if err != nil {
			return nil, err
		}
		u = ttype.Single(a)
	}
	u.PossiblyUndefined = s.PossiblyUndefined
	return u, nil
}

func (s Spec) atomic() (ttype.Atomic, error) {
	if s.Literal != nil {
		return literal(s.Literal)
	}
	// yaml.v3 does not call UnmarshalYAML for a null node, so a bare null
	// arrives as the zero Spec.
	if s.Kind == "" && s.isBare() && len(s.Of) == 0 {
		return ttype.TNull{}, nil
	}
	if mk, ok := keywords[s.Kind]; ok && s.isBare() {
		return mk(), nil
	}
	switch s.Kind {
	case "int-range":
		return ttype.TIntRange{Min: s.Min, Max: s.Max}, nil
	case "class":
		if s.Name == "" {
			return nil, fmt.Errorf("typespec: class needs a name")
		}
		params, err := buildAll(s.Params)
		if err != nil {
			return nil, err
		}
		var extra []ttype.Atomic
		for _, e := range s.Of {
			a, err := e.atomic()
			if err != nil {
				return nil, err
			}
			extra = append(extra, a)
		}
		return ttype.TNamedObject{Name: s.Name, TypeParams: params, Extra: extra}, nil
	case "enum":
		return ttype.TEnum{Name: s.Name}, nil
	case "enum-case":
		return ttype.TEnumCase{Enum: s.Name, Case: s.Case}, nil
	case "class-string":
		return ttype.TClassString{As: s.Name}, nil
	case "class-string-literal":
		return ttype.TLiteralClassString{Name: s.Name}, nil
	case "generic":
		var as *ttype.Union
		if s.As != nil {
			b, err := s.As.Build()
			if err != nil {
				return nil, err
			}
			as = b
		}
		return ttype.Generic(s.Name, s.Entity, as), nil
	case "resource":
		switch s.State {
		case "open":
			return ttype.TResource{State: ttype.ResourceOpen}, nil
		case "closed":
			return ttype.TResource{State: ttype.ResourceClosed}, nil
		}
		return ttype.TResource{}, nil
	case "iterable":
		k, v, err := s.keyValue()
		if err != nil {
			return nil, err
		}
		return ttype.TIterable{Key: k, Value: v}, nil
	case "list", "non-empty-list":
		return s.list()
	case "array", "non-empty-array":
		return s.keyed()
	}
	return nil, fmt.Errorf("typespec: unknown kind %q", s.Kind)
}

// isBare reports whether the spec is a plain keyword with no structure.
func (s Spec) isBare() bool {
	return s.Key == nil && s.Value == nil && s.Element == nil && len(s.Items) == 0 &&
		s.Name == "" && s.State == "" && !s.NonEmpty
}

func (s Spec) keyValue() (*ttype.Union, *ttype.Union, error) {
	k, v := ttype.Mixed(), ttype.Mixed()
	if s.Key != nil {
		b, err := s.Key.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("key: %w", err)
		}
		k = b
	}
	if s.Value != nil {
		b, err := s.Value.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("value: %w", err)
		}
		v = b
	}
	return k, v, nil
}

func (s Spec) list() (ttype.Atomic, error) {
	out := ttype.TList{NonEmpty: s.NonEmpty || s.Kind == "non-empty-list"}
	switch {
	case s.Element != nil:
		e, err := s.Element.Build()
		if err != nil {
			return nil, fmt.Errorf("element: %w", err)
		}
		out.Element = e
	case len(s.Items) > 0:
		out.Element = ttype.Never()
	default:
		out.Element = ttype.Mixed()
	}
	if len(s.Items) > 0 {
		out.Known = make(map[int]ttype.KnownItem, len(s.Items))
		for i, it := range s.Items {
			t, err := it.Type.Build()
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out.Known[i] = ttype.KnownItem{Type: t, PossiblyUndefined: it.Optional}
		}
	}
	return out, nil
}

func (s Spec) keyed() (ttype.Atomic, error) {
	out := ttype.TKeyed{NonEmpty: s.NonEmpty || s.Kind == "non-empty-array"}
	if s.Key != nil || s.Value != nil || len(s.Items) == 0 {
		k, v, err := s.keyValue()
		if err != nil {
			return nil, err
		}
		if s.Key == nil {
			k = ttype.AnyArrayKey()
		}
		out.Params = &ttype.KeyedParams{Key: k, Value: v}
	}
	if len(s.Items) > 0 {
		out.Known = make(map[ttype.ArrayKey]ttype.KnownItem, len(s.Items))
		for i, it := range s.Items {
			key, ok := ttype.CoerceKey(normaliseKey(it.Key))
			if !ok {
				return nil, fmt.Errorf("typespec: item %d has invalid key %v", i, it.Key)
			}
			t, err := it.Type.Build()
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out.Known[key] = ttype.KnownItem{Type: t, PossiblyUndefined: it.Optional}
		}
	}
	return out, nil
}

func buildAll(specs []Spec) ([]*ttype.Union, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]*ttype.Union, 0, len(specs))
	for _, p := range specs {
		u, err := p.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func literal(v any) (ttype.Atomic, error) {
	switch val := v.(type) {
	case int:
		return ttype.TLiteralInt{Value: int64(val)}, nil
	case int64:
		return ttype.TLiteralInt{Value: val}, nil
	case uint64:
		return nil, fmt.Errorf("typespec: literal %d overflows int64", val)
	case float64:
		return ttype.TLiteralFloat{Value: val}, nil
	case bool:
		if val {
			return ttype.TTrue{}, nil
		}
		return ttype.TFalse{}, nil
	case string:
		return ttype.TLiteralString{Value: val}, nil
	}
	return nil, fmt.Errorf("typespec: unsupported literal %v (%T)", v, v)
}

// normaliseKey maps yaml.v3's decoded scalars onto the Go values
// ttype.CoerceKey understands.
func normaliseKey(v any) any {
	if u, ok := v.(uint64); ok {
		return float64(u)
	}
	return v
}
