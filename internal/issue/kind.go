package issue

import "slices"

// Kind names a diagnostic.
type Kind string

const (
	ImpossibleTypeComparison       Kind = "ImpossibleTypeComparison"
	RedundantTypeComparison        Kind = "RedundantTypeComparison"
	ImpossibleNullTypeComparison   Kind = "ImpossibleNullTypeComparison"
	RedundantNonnullTypeComparison Kind = "RedundantNonnullTypeComparison"
	ImpossibleTruthinessCheck      Kind = "ImpossibleTruthinessCheck"
	RedundantTruthinessCheck       Kind = "RedundantTruthinessCheck"
	ImpossibleKeyCheck             Kind = "ImpossibleKeyCheck"
	RedundantKeyCheck              Kind = "RedundantKeyCheck"
	RedundantIssetCheck            Kind = "RedundantIssetCheck"

	DuplicateArrayKey Kind = "DuplicateArrayKey"
	ArrayKeyOverflow  Kind = "ArrayKeyOverflow"
	InvalidSpread     Kind = "InvalidSpread"
	StringKeySpread   Kind = "StringKeySpread"

	UndefinedIntArrayOffset            Kind = "UndefinedIntArrayOffset"
	UndefinedStringArrayOffset         Kind = "UndefinedStringArrayOffset"
	PossiblyUndefinedIntArrayOffset    Kind = "PossiblyUndefinedIntArrayOffset"
	PossiblyUndefinedStringArrayOffset Kind = "PossiblyUndefinedStringArrayOffset"
	MixedArrayAccess                   Kind = "MixedArrayAccess"
	NullArrayAccess                    Kind = "NullArrayAccess"
	InvalidArrayAccess                 Kind = "InvalidArrayAccess"
	MixedArrayOffset                   Kind = "MixedArrayOffset"
	MismatchingArrayOffset             Kind = "MismatchingArrayOffset"
	InvalidArrayOffset                 Kind = "InvalidArrayOffset"
)

// Severity grades a Kind.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

var severities = map[Kind]Severity{
	ImpossibleTypeComparison:       SeverityWarning,
	ImpossibleNullTypeComparison:   SeverityWarning,
	ImpossibleTruthinessCheck:      SeverityWarning,
	ImpossibleKeyCheck:             SeverityWarning,
	RedundantTypeComparison:        SeverityInfo,
	RedundantNonnullTypeComparison: SeverityInfo,
	RedundantTruthinessCheck:       SeverityInfo,
	RedundantKeyCheck:              SeverityInfo,
	RedundantIssetCheck:            SeverityInfo,

	DuplicateArrayKey: SeverityError,
	ArrayKeyOverflow:  SeverityError,
	InvalidSpread:     SeverityError,
	StringKeySpread:   SeverityError,

	UndefinedIntArrayOffset:            SeverityError,
	UndefinedStringArrayOffset:         SeverityError,
	PossiblyUndefinedIntArrayOffset:    SeverityInfo,
	PossiblyUndefinedStringArrayOffset: SeverityInfo,
	MixedArrayAccess:                   SeverityWarning,
	NullArrayAccess:                    SeverityError,
	InvalidArrayAccess:                 SeverityError,
	MixedArrayOffset:                   SeverityWarning,
	MismatchingArrayOffset:             SeverityError,
	InvalidArrayOffset:                 SeverityError,
}

// Severity returns the default severity of k. Unknown kinds are errors.
func (k Kind) Severity() Severity {
	if s, ok := severities[k]; ok {
		return s
	}
	return SeverityError
}

// Kinds returns every known kind, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(severities))
	for k := range severities {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ParseKind resolves a kind name.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := severities[k]
	return k, ok
}
