package harness

import (
	"github.com/roach88/phpnarrow/internal/issue"
)

// TraceEvent records one step of a run.
type TraceEvent struct {
	Step int `json:"step"`

	// Clauses renders each clause as "path: group & group", with the
	// alternatives of a group joined by '|'.
	Clauses []string `json:"clauses"`

	// Changed lists the paths whose type changed, sorted.
	Changed []string `json:"changed"`

	// Types maps each changed path to its new type id.
	Types map[string]string `json:"types,omitempty"`

	// Issues renders the step's diagnostics as "Kind: message".
	Issues []string `json:"issues,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause matched.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Issues are the run's diagnostics as stored, deduplicated by
	// fingerprint and in report order.
	Issues []issue.Issue `json:"issues"`
}

// NewResult creates a passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Issues: []issue.Issue{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
