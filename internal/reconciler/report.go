package reconciler

import (
	"fmt"

	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// verdict classifies a condition against the type it narrowed.
type verdict uint8

const (
	verdictNone verdict = iota
	verdictRedundant
	verdictImpossible
)

// verdictFor is the default classification: an emptied result is
// impossible, an unchanged one redundant. Types that cannot show a
// change (mixed, placeholders, unresolved symbols) are never redundant.
func verdictFor(existing, result *ttype.Union) verdict {
	if result.IsNever() {
		if existing.IsNever() {
			return verdictNone
		}
		return verdictImpossible
	}
	if opaque(existing) {
		return verdictNone
	}
	if result.SameTypes(existing) && result.PossiblyUndefined == existing.PossiblyUndefined {
		return verdictRedundant
	}
	return verdictNone
}

// opaque reports whether a member hides what values it holds.
func opaque(u *ttype.Union) bool {
	for _, t := range u.Types {
		switch a := t.(type) {
		case ttype.TMixed, ttype.TPlaceholder, ttype.TReference, ttype.TTypeVariable,
			ttype.TConditional, ttype.TDerived:
			return true
		case ttype.TGenericParam:
			if a.As == nil || opaque(a.As) {
				return true
			}
		}
	}
	return false
}

// family picks the diagnostic pair for an assertion.
func family(a assertion.Assertion) (impossible, redundant issue.Kind) {
	switch a.Kind {
	case assertion.IsIsset, assertion.IsNotIsset:
		return issue.ImpossibleNullTypeComparison, issue.RedundantIssetCheck
	case assertion.Falsy, assertion.Truthy, assertion.Empty, assertion.NonEmpty:
		return issue.ImpossibleTruthinessCheck, issue.RedundantTruthinessCheck
	case assertion.HasArrayKey, assertion.DoesNotHaveArrayKey,
		assertion.HasNonnullEntryForKey, assertion.DoesNotHaveNonnullEntryForKey,
		assertion.NonEmptyCountable, assertion.EmptyCountable,
		assertion.HasExactCount, assertion.DoesNotHaveExactCount:
		return issue.ImpossibleKeyCheck, issue.RedundantKeyCheck
	}
	if _, isNull := a.Type.(ttype.TNull); isNull {
		return issue.ImpossibleNullTypeComparison, issue.RedundantNonnullTypeComparison
	}
	return issue.ImpossibleTypeComparison, issue.RedundantTypeComparison
}

// report emits the diagnostic for v. The request's Negated flag swaps
// redundant and impossible, and flips the '!' shown in the message.
func (rn *run) report(existing *ttype.Union, v verdict) {
	if rn.quiet || v == verdictNone {
		return
	}
	a := rn.assertion()
	redundant := v == verdictRedundant
	not := a.IsNegation()
	if rn.req.Negated {
		redundant = !redundant
		not = !not
	}

	text := a.Positive()
	if not {
		text = "!" + text
	}
	subject := rn.req.Key.String()
	if subject == "" {
		subject = "value"
	}

	impossibleKind, redundantKind := family(a)
	var i issue.Issue
	if redundant {
		i = issue.New(redundantKind, rn.req.Span,
			fmt.Sprintf("Type %s for %s is always %s", existing.ID(), subject, text))
	} else {
		i = issue.New(impossibleKind, rn.req.Span,
			fmt.Sprintf("Type %s for %s is never %s", existing.ID(), subject, text))
	}
	rn.r.reporter.Report(i)
}
