package ttype

// Predicates are linear in the member count. Generic parameters answer
// through their constraint.

// IsNever reports whether the union is exactly never.
func (u *Union) IsNever() bool {
	if len(u.Types) != 1 {
		return false
	}
	_, ok := u.Types[0].(TNever)
	return ok
}

// IsMixed reports whether the union is a single mixed of any flavour.
func (u *Union) IsMixed() bool {
	if len(u.Types) != 1 {
		return false
	}
	_, ok := u.Types[0].(TMixed)
	return ok
}

// IsPlainMixed reports whether the union is unrefined mixed.
func (u *Union) IsPlainMixed() bool {
	if len(u.Types) != 1 {
		return false
	}
	m, ok := u.Types[0].(TMixed)
	return ok && m.Truthiness == TruthinessUnknown && !m.NonNull
}

// HasMixed reports whether any member is mixed.
func (u *Union) HasMixed() bool {
	for _, t := range u.Types {
		if _, ok := t.(TMixed); ok {
			return true
		}
	}
	return false
}

// HasPlainMixed reports whether a member is a mixed that admits null.
func (u *Union) HasPlainMixed() bool {
	for _, t := range u.Types {
		if m, ok := t.(TMixed); ok && !m.NonNull && m.Truthiness != TruthinessTruthy {
			return true
		}
	}
	return false
}

// IsNull reports whether the union is exactly null.
func (u *Union) IsNull() bool {
	if len(u.Types) != 1 {
		return false
	}
	_, ok := u.Types[0].(TNull)
	return ok
}

// IsVoid reports whether the union is exactly void.
func (u *Union) IsVoid() bool {
	if len(u.Types) != 1 {
		return false
	}
	_, ok := u.Types[0].(TVoid)
	return ok
}

// IsNullable reports whether null or void is an explicit member, directly
// or through a generic constraint.
func (u *Union) IsNullable() bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case TNull, TVoid:
			return true
		case TGenericParam:
			if a.As != nil && a.As.IsNullable() {
				return true
			}
		}
	}
	return false
}

// CanBeNull also counts mixed members that admit null.
func (u *Union) CanBeNull() bool {
	return u.IsNullable() || u.HasPlainMixed()
}

// HasArray reports whether a member is a list or keyed array.
func (u *Union) HasArray() bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case TList, TKeyed:
			return true
		case TGenericParam:
			if a.As != nil && a.As.HasArray() {
				return true
			}
		}
	}
	return false
}

// IsAlwaysArray reports whether every member is an array.
func (u *Union) IsAlwaysArray() bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case TList, TKeyed:
		case TGenericParam:
			if a.As == nil || !a.As.IsAlwaysArray() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// HasObject reports whether a member is an object of any kind.
func (u *Union) HasObject() bool {
	for _, t := range u.Types {
		if IsObjectAtomic(t) {
			return true
		}
		if g, ok := t.(TGenericParam); ok && g.As != nil && g.As.HasObject() {
			return true
		}
	}
	return false
}

// HasGenericParam reports whether a member is a template parameter.
func (u *Union) HasGenericParam() bool {
	for _, t := range u.Types {
		if _, ok := t.(TGenericParam); ok {
			return true
		}
	}
	return false
}

// IsAlwaysArrayKey reports whether every value is int or string.
func (u *Union) IsAlwaysArrayKey() bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case TInt, TLiteralInt, TIntRange, TString, TLiteralString,
			TClassString, TLiteralClassString, TArrayKey:
		case TGenericParam:
			if a.As == nil || !a.As.IsAlwaysArrayKey() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsInt reports whether every member is an integer type.
func (u *Union) IsInt() bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case TInt, TLiteralInt, TIntRange:
		case TGenericParam:
			if a.As == nil || !a.As.IsInt() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsAlwaysString reports whether every member is a string type.
func (u *Union) IsAlwaysString() bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case TString, TLiteralString, TClassString, TLiteralClassString:
		case TGenericParam:
			if a.As == nil || !a.As.IsAlwaysString() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsBool reports whether every member is bool, true or false.
func (u *Union) IsBool() bool {
	for _, t := range u.Types {
		switch t.(type) {
		case TBool, TTrue, TFalse:
		default:
			return false
		}
	}
	return true
}

// HasLiteralValue reports whether any member is a literal scalar.
func (u *Union) HasLiteralValue() bool {
	for _, t := range u.Types {
		if IsLiteralAtomic(t) {
			return true
		}
	}
	return false
}

// IsAlwaysTruthy reports whether every value is truthy and the variable is
// always defined.
func (u *Union) IsAlwaysTruthy() bool {
	if u.PossiblyUndefined {
		return false
	}
	for _, t := range u.Types {
		if !IsAtomicAlwaysTruthy(t) {
			return false
		}
	}
	return true
}

// IsAlwaysFalsy reports whether every value is falsy.
func (u *Union) IsAlwaysFalsy() bool {
	for _, t := range u.Types {
		if !IsAtomicAlwaysFalsy(t) {
			return false
		}
	}
	return true
}

// IsFalsable reports whether false is an explicit member.
func (u *Union) IsFalsable() bool {
	for _, t := range u.Types {
		switch t.(type) {
		case TFalse, TBool:
			return true
		}
	}
	return false
}

// IsLiteralAtomic reports whether a is a single compile-time value.
func IsLiteralAtomic(a Atomic) bool {
	switch a.(type) {
	case TLiteralInt, TLiteralString, TLiteralFloat, TLiteralClassString,
		TTrue, TFalse, TEnumCase:
		return true
	}
	return false
}

// IsScalarAtomic reports whether a is one of the scalar types.
func IsScalarAtomic(a Atomic) bool {
	switch a.(type) {
	case TInt, TLiteralInt, TIntRange, TFloat, TLiteralFloat, TBool, TTrue, TFalse,
		TString, TLiteralString, TArrayKey, TScalar, TNumeric, TClassString, TLiteralClassString:
		return true
	}
	return false
}

// IsArrayAtomic reports whether a is a list or keyed array.
func IsArrayAtomic(a Atomic) bool {
	switch a.(type) {
	case TList, TKeyed:
		return true
	}
	return false
}

// IsObjectAtomic reports whether a is an object type.
func IsObjectAtomic(a Atomic) bool {
	switch a.(type) {
	case TObject, TNamedObject, TEnum, TEnumCase, TClosureAlias:
		return true
	}
	return false
}

// IsAtomicAlwaysTruthy reports whether every value of a is truthy.
func IsAtomicAlwaysTruthy(a Atomic) bool {
	switch t := a.(type) {
	case TTrue, TObject, TNamedObject, TEnum, TEnumCase, TClosureAlias, TResource,
		TLiteralClassString, TClassString, TCallable:
		return true
	case TLiteralInt:
		return t.Value != 0
	case TLiteralFloat:
		return t.Value != 0
	case TLiteralString:
		return t.Value != "" && t.Value != "0"
	case TString:
		return t.Truthy
	case TIntRange:
		return (t.Min != nil && *t.Min > 0) || (t.Max != nil && *t.Max < 0)
	case TMixed:
		return t.Truthiness == TruthinessTruthy
	case TList:
		return t.IsDefinitelyNonEmpty()
	case TKeyed:
		return t.IsDefinitelyNonEmpty()
	case TGenericParam:
		return t.As != nil && t.As.IsAlwaysTruthy()
	}
	return false
}

// IsAtomicAlwaysFalsy reports whether every value of a is falsy.
func IsAtomicAlwaysFalsy(a Atomic) bool {
	switch t := a.(type) {
	case TNull, TVoid, TFalse:
		return true
	case TLiteralInt:
		return t.Value == 0
	case TLiteralFloat:
		return t.Value == 0
	case TLiteralString:
		return t.Value == "" || t.Value == "0"
	case TIntRange:
		return t.Min != nil && t.Max != nil && *t.Min == 0 && *t.Max == 0
	case TMixed:
		return t.Truthiness == TruthinessFalsy
	case TList:
		return !t.HasFallback() && len(t.Known) == 0
	case TKeyed:
		return t.IsEmptyArray()
	case TGenericParam:
		return t.As != nil && t.As.IsAlwaysFalsy()
	}
	return false
}

// IsSingle reports whether the union has exactly one member.
func (u *Union) IsSingle() bool {
	return len(u.Types) == 1
}

// IsAtomicPossiblyFalsy reports whether some value of a is falsy.
func IsAtomicPossiblyFalsy(a Atomic) bool {
	return !IsAtomicAlwaysTruthy(a)
}
