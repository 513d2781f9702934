package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/reconciler"
	"github.com/roach88/phpnarrow/internal/varpath"
)

// ExpectError is one expectation a step did not meet.
type ExpectError struct {
	Step     int
	Field    string // "types", "changed" or "issues"
	Subject  string // the path, for types
	Expected string
	Actual   string
}

func (e *ExpectError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "steps[%d].expect.%s", e.Step, e.Field)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " %s", e.Subject)
	}
	fmt.Fprintf(&buf, ": expected %s, got %s", e.Expected, e.Actual)
	return buf.String()
}

// checkExpect compares a step's outcome with its expect clause. Type
// expectations are checked in path order so failures read the same on
// every run.
func checkExpect(step int, exp *Expect, scope *reconciler.Scope, changed []string, reported []issue.Issue) []*ExpectError {
	if exp == nil {
		return nil
	}
	var errs []*ExpectError

	paths := make([]string, 0, len(exp.Types))
	for p := range exp.Types {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, path := range paths {
		want := exp.Types[path]
		actual := "<unset>"
		if p, err := varpath.Parse(path); err == nil {
			if u, ok := scope.Get(p); ok {
				actual = u.ID()
			}
		}
		if actual != want {
			errs = append(errs, &ExpectError{Step: step, Field: "types", Subject: path, Expected: want, Actual: actual})
		}
	}

	if exp.Changed != nil && !slices.Equal(*exp.Changed, changed) {
		errs = append(errs, &ExpectError{
			Step:     step,
			Field:    "changed",
			Expected: listString(*exp.Changed),
			Actual:   listString(changed),
		})
	}

	if exp.Issues != nil {
		kinds := make([]string, len(reported))
		for i, is := range reported {
			kinds[i] = string(is.Kind)
		}
		if !slices.Equal(*exp.Issues, kinds) {
			errs = append(errs, &ExpectError{
				Step:     step,
				Field:    "issues",
				Expected: listString(*exp.Issues),
				Actual:   listString(kinds),
			})
		}
	}
	return errs
}

func listString(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
