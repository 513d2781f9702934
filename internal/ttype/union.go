package ttype

import (
	"slices"
	"strings"
)

// Union is an ordered, non-empty set of atomic alternatives plus flags
// that travel with a value through the analysis.
//
// Unions are shared by pointer and must not be modified after
// construction; use Clone or one of the With* helpers instead.
type Union struct {
	Types []Atomic

	PossiblyUndefined        bool
	PossiblyUndefinedFromTry bool
	ByReference              bool
	IgnoreNullableIssues     bool
	IgnoreFalsableIssues     bool
	HadTemplate              bool
	FromTemplateDefault      bool
	Populated                bool
}

// NewUnion builds a union from a member list.
//
// An empty list, or a list of only TNever, becomes the single-member never
// union. TNever next to other members is redundant and is stripped; builds
// tagged ttypedebug panic on that mix instead so callers can be fixed.
func NewUnion(types []Atomic) *Union {
	if len(types) == 0 {
		return Never()
	}
	out := make([]Atomic, 0, len(types))
	for _, t := range types {
		if _, ok := t.(TNever); ok {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return Never()
	}
	if debugAssertions && len(out) != len(types) {
		panic("ttype: never mixed with other union members")
	}
	return &Union{Types: out}
}

// Single wraps one atomic in a union.
func Single(a Atomic) *Union {
	return &Union{Types: []Atomic{a}}
}

// Clone returns a shallow copy whose member slice may be replaced.
func (u *Union) Clone() *Union {
	c := *u
	c.Types = slices.Clone(u.Types)
	return &c
}

// WithTypes returns a copy of u with new members and the same flags.
func (u *Union) WithTypes(types []Atomic) *Union {
	n := NewUnion(types)
	n.PossiblyUndefined = u.PossiblyUndefined
	n.PossiblyUndefinedFromTry = u.PossiblyUndefinedFromTry
	n.ByReference = u.ByReference
	n.IgnoreNullableIssues = u.IgnoreNullableIssues
	n.IgnoreFalsableIssues = u.IgnoreFalsableIssues
	n.HadTemplate = u.HadTemplate
	n.FromTemplateDefault = u.FromTemplateDefault
	n.Populated = u.Populated
	return n
}

// WithPossiblyUndefined returns a copy with the possibly-undefined flag set.
func (u *Union) WithPossiblyUndefined(v bool) *Union {
	if u.PossiblyUndefined == v {
		return u
	}
	c := u.Clone()
	c.PossiblyUndefined = v
	if !v {
		c.PossiblyUndefinedFromTry = false
	}
	return c
}

// ID returns the canonical id. A single-member union's id is its atomic's
// id; multi-member ids are sorted so member order never matters.
func (u *Union) ID() string {
	if len(u.Types) == 1 {
		return u.Types[0].ID()
	}
	return strings.Join(u.memberIDs(), "|")
}

func (u *Union) memberIDs() []string {
	ids := make([]string, len(u.Types))
	for i, t := range u.Types {
		ids[i] = t.ID()
	}
	slices.Sort(ids)
	return ids
}

// Equal compares members as a multiset and every flag exactly.
func (u *Union) Equal(o *Union) bool {
	if u == o {
		return true
	}
	if u == nil || o == nil {
		return false
	}
	if u.PossiblyUndefined != o.PossiblyUndefined ||
		u.PossiblyUndefinedFromTry != o.PossiblyUndefinedFromTry ||
		u.ByReference != o.ByReference ||
		u.IgnoreNullableIssues != o.IgnoreNullableIssues ||
		u.IgnoreFalsableIssues != o.IgnoreFalsableIssues ||
		u.HadTemplate != o.HadTemplate ||
		u.FromTemplateDefault != o.FromTemplateDefault ||
		u.Populated != o.Populated {
		return false
	}
	return u.SameTypes(o)
}

// SameTypes compares members as a multiset, ignoring flags.
func (u *Union) SameTypes(o *Union) bool {
	if len(u.Types) != len(o.Types) {
		return false
	}
	return slices.Equal(u.memberIDs(), o.memberIDs())
}

// String implements fmt.Stringer.
func (u *Union) String() string {
	return u.ID()
}

// Contains reports whether an atomic with the same id is a member.
func (u *Union) Contains(a Atomic) bool {
	id := a.ID()
	for _, t := range u.Types {
		if t.ID() == id {
			return true
		}
	}
	return false
}

// Single returns the only member, if there is exactly one.
func (u *Union) Single() (Atomic, bool) {
	if len(u.Types) != 1 {
		return nil, false
	}
	return u.Types[0], true
}

// AsNullable returns u|null. Mixed already admits null.
func (u *Union) AsNullable() *Union {
	if u.IsNullable() || u.HasPlainMixed() {
		return u
	}
	types := slices.Clone(u.Types)
	types = append(types, TNull{})
	return u.WithTypes(types)
}

// ToNonNullable removes null and void. Mixed becomes nonnull and generic
// parameters are narrowed through their constraint.
func (u *Union) ToNonNullable() *Union {
	types := make([]Atomic, 0, len(u.Types))
	for _, t := range u.Types {
		switch a := t.(type) {
		case TNull, TVoid:
			continue
		case TMixed:
			a.NonNull = true
			types = append(types, a)
		case TGenericParam:
			if a.As != nil && a.As.IsNullable() {
				as := a.As.ToNonNullable()
				if as.IsNever() {
					continue
				}
				a.As = as
			}
			types = append(types, a)
		default:
			types = append(types, t)
		}
	}
	return u.WithTypes(types)
}

// ToTruthy keeps only the values that can be truthy: falsy literals are
// removed, bool becomes true and refinable types gain a truthy flag.
func (u *Union) ToTruthy() *Union {
	types := make([]Atomic, 0, len(u.Types))
	for _, t := range u.Types {
		if a, ok := TruthyVariant(t); ok {
			types = append(types, a)
		}
	}
	return u.WithTypes(types)
}

// TruthyVariant returns the truthy part of one atomic, or false when the
// atomic is always falsy.
func TruthyVariant(t Atomic) (Atomic, bool) {
	if IsAtomicAlwaysFalsy(t) {
		return nil, false
	}
	switch a := t.(type) {
	case TBool:
		return TTrue{}, true
	case TString:
		a.Truthy = true
		a.NonEmpty = true
		return a, true
	case TMixed:
		a.Truthiness = TruthinessTruthy
		a.NonNull = true
		return a, true
	case TList:
		a.NonEmpty = true
		return a, true
	case TKeyed:
		a.NonEmpty = true
		return a, true
	case TIntRange:
		if a.Min != nil && *a.Min == 0 {
			a.Min = ptrInt64(1)
		}
		if a.Max != nil && *a.Max == 0 {
			a.Max = ptrInt64(-1)
		}
		return a, true
	case TGenericParam:
		if a.As == nil {
			return a, true
		}
		as := a.As.ToTruthy()
		if as.IsNever() {
			return nil, false
		}
		a.As = as
		return a, true
	default:
		return t, true
	}
}
