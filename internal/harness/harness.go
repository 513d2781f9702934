package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/reconciler"
	"github.com/roach88/phpnarrow/internal/store"
	"github.com/roach88/phpnarrow/internal/testutil"
	"github.com/roach88/phpnarrow/internal/varpath"
)

// Harness runs scenarios and records each run in a store.
type Harness struct {
	store  *store.Store
	runIDs store.RunIDGenerator
	clock  *testutil.SeqClock
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithRunIDs sets the run id generator.
//
// Default: the scenario's fixed run id.
func WithRunIDs(g store.RunIDGenerator) Option {
	return func(h *Harness) {
		h.runIDs = g
	}
}

// WithClock sets the seq clock, e.g. one resumed after rows already in
// the store.
func WithClock(c *testutil.SeqClock) Option {
	return func(h *Harness) {
		h.clock = c
	}
}

// WithLogger sets the logger passed on to the reconciler.
//
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a harness writing to st.
func New(st *store.Store, opts ...Option) *Harness {
	h := &Harness{
		store:  st,
		clock:  testutil.NewSeqClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario in a fresh in-memory store with a fixed run id
// and clock, so identical scenarios produce identical results.
func Run(s *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	return New(st).Run(context.Background(), s)
}

// Run executes s:
//  1. Build the codebase, scope and clauses from the scenario
//  2. Record the run
//  3. Apply each step with ReconcileKeyedTypes and check its expectations
//  4. Store the step's issues and read the run's issues back
func (h *Harness) Run(ctx context.Context, s *Scenario) (*Result, error) {
	c, err := s.compile()
	if err != nil {
		return nil, err
	}

	gen := h.runIDs
	if gen == nil {
		gen = testutil.NewFixedRunIDGenerator(s.RunID)
	}
	run := store.Run{
		ID:         gen.Generate(),
		Name:       s.Name,
		PHPVersion: s.PHPVersion,
		Seq:        h.clock.Next(),
	}
	rOpts := []reconciler.Option{reconciler.WithLogger(h.logger)}
	if s.PHPVersion != 0 {
		rOpts = append(rOpts, reconciler.WithPHPVersion(s.PHPVersion))
	} else {
		run.PHPVersion = reconciler.DefaultOptions().PHPVersion
	}
	if err := h.store.WriteRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	collector := issue.NewCollector()
	r := reconciler.New(c.cb, collector, rOpts...)
	result := NewResult(run.ID)

	for i, clauses := range c.steps {
		step := s.Steps[i]
		mark := collector.Len()

		changed := r.ReconcileKeyedTypes(c.scope, c.refs, clauses, reconciler.KeyedOptions{
			InsideLoop:      step.InsideLoop,
			Span:            issue.Span{File: s.Name, Start: i, End: i + 1},
			CanReportIssues: !step.Quiet,
			Negated:         step.Negated,
		})
		reported := collector.Issues()[mark:]

		result.Trace = append(result.Trace, traceEvent(i, clauses, changed, c.scope, reported))

		if len(reported) > 0 {
			if _, err := h.store.WriteIssues(ctx, run.ID, h.clock.Take(len(reported)), reported); err != nil {
				return nil, fmt.Errorf("step %d: failed to store issues: %w", i, err)
			}
		}

		for _, e := range checkExpect(i, step.Expect, c.scope, changed, reported) {
			result.AddError(e.Error())
		}

		h.logger.Debug("step completed",
			"scenario", s.Name,
			"step", i,
			"changed", len(changed),
			"issues", len(reported),
		)
	}

	stored, err := h.store.ReadIssues(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read issues: %w", err)
	}
	result.Issues = stored
	return result, nil
}

func traceEvent(step int, clauses []reconciler.Clause, changed []string, scope *reconciler.Scope, reported []issue.Issue) TraceEvent {
	ev := TraceEvent{
		Step:    step,
		Clauses: make([]string, len(clauses)),
		Changed: changed,
	}
	for i, cl := range clauses {
		groups := make([]string, len(cl.Groups))
		for g, alts := range cl.Groups {
			groups[g] = assertion.Join(alts)
		}
		ev.Clauses[i] = cl.Path.String() + ": " + strings.Join(groups, " & ")
	}
	if len(changed) > 0 {
		ev.Types = make(map[string]string, len(changed))
		for _, path := range changed {
			// Changed paths come from the scope, so they always parse.
			p := varpath.MustParse(path)
			if u, ok := scope.Get(p); ok {
				ev.Types[path] = u.ID()
			}
		}
	}
	for _, is := range reported {
		ev.Issues = append(ev.Issues, fmt.Sprintf("%s: %s", is.Kind, is.Message))
	}
	return ev
}
