package reconciler

import (
	"io"
	"log/slog"

	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/arrayshape"
	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
	"github.com/roach88/phpnarrow/internal/varpath"
)

// Options tune a Reconciler.
type Options struct {
	// MaxDepth bounds recursion through generic constraints.
	MaxDepth int

	// PHPVersion as PHP_VERSION_ID, e.g. 80300.
	PHPVersion int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxDepth:   algebra.MaxDepth,
		PHPVersion: arrayshape.PHP83,
	}
}

// Reconciler applies assertions to types. It holds no per-call state and
// is safe for concurrent use if its Reporter is.
type Reconciler struct {
	cb       codebase.Codebase
	reporter issue.Reporter
	logger   *slog.Logger
	opts     Options
	shapes   *arrayshape.Builder
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger for per-path trace output.
//
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// WithPHPVersion sets the target PHP version.
func WithPHPVersion(v int) Option {
	return func(r *Reconciler) {
		r.opts.PHPVersion = v
	}
}

// WithMaxDepth bounds generic-constraint recursion.
func WithMaxDepth(n int) Option {
	return func(r *Reconciler) {
		r.opts.MaxDepth = n
	}
}

// New creates a Reconciler. A nil reporter discards diagnostics.
func New(cb codebase.Codebase, reporter issue.Reporter, opts ...Option) *Reconciler {
	if reporter == nil {
		reporter = issue.Discard
	}
	r := &Reconciler{
		cb:       cb,
		reporter: reporter,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		opts:     DefaultOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	// Offsets are resolved only to seed missing paths, so the builder's own
	// diagnostics are not wanted.
	r.shapes = arrayshape.New(cb, issue.Discard, arrayshape.Options{PHPVersion: r.opts.PHPVersion})
	return r
}

// Request is one reconciliation.
type Request struct {
	Assertion assertion.Assertion

	// Existing is the current type, or nil when the variable has none.
	Existing *ttype.Union

	// PossiblyUndefined marks the variable as possibly unset before the
	// condition.
	PossiblyUndefined bool

	// Key is the path being narrowed. It names the variable in
	// diagnostics, and array-index segments change isset semantics.
	Key varpath.Path

	InsideLoop      bool
	Span            issue.Span
	CanReportIssues bool

	// Negated is set when the assertion came from negating the written
	// condition. It swaps impossible and redundant diagnostics.
	Negated bool
}

// Reconcile returns the narrowed type for req. It never returns nil.
func (r *Reconciler) Reconcile(req Request) *ttype.Union {
	rn := &run{r: r, req: req, quiet: !req.CanReportIssues}

	existing := req.Existing
	if existing == nil {
		if out, done := rn.missing(); done {
			return out
		}
		existing = rn.missingBase()
		rn.quiet = true
	}
	if req.PossiblyUndefined && !existing.PossiblyUndefined {
		existing = existing.WithPossiblyUndefined(true)
	}

	out := rn.dispatch(existing)
	r.logger.Debug("reconciled",
		"path", req.Key.String(),
		"assertion", req.Assertion.String(),
		"before", existing.ID(),
		"after", out.ID())
	return out
}

// run carries one Reconcile call through its helpers.
type run struct {
	r     *Reconciler
	req   Request
	depth int

	// quiet suppresses diagnostics, for calls that cannot report and for
	// recursion into generic constraints.
	quiet bool
}

func (rn *run) assertion() assertion.Assertion {
	return rn.req.Assertion
}

// missing handles a variable with no recorded type. done is true when the
// synthesised type is the answer.
func (rn *run) missing() (*ttype.Union, bool) {
	a := rn.assertion()
	switch a.Kind {
	case assertion.IsType, assertion.IsIdentical:
		if a.Type != nil {
			return ttype.Single(a.Type), true
		}
	}
	return nil, false
}

// missingBase is mixed, flagged when first seen inside a loop so later
// joins know the variable came from an isset check.
func (rn *run) missingBase() *ttype.Union {
	return ttype.Single(ttype.TMixed{FromLoopIsset: rn.req.InsideLoop})
}

func (rn *run) dispatch(existing *ttype.Union) *ttype.Union {
	a := rn.assertion()
	var (
		out *ttype.Union
		v   verdict
	)
	switch {
	case a.HasLiteralValue():
		out, v = rn.literal(existing)
	case a.IsNegation():
		out, v = rn.negated(existing)
	default:
		out, v = rn.positive(existing)
	}
	rn.report(existing, v)
	return out
}

// nested runs a recursive reconciliation of a generic constraint. Its
// diagnostics are dropped: the outer call reports once.
func (rn *run) nested() *run {
	return &run{r: rn.r, req: rn.req, depth: rn.depth + 1, quiet: true}
}

func (rn *run) tooDeep() bool {
	return rn.depth >= rn.r.opts.MaxDepth
}

func (rn *run) combine(existing *ttype.Union, types []ttype.Atomic) *ttype.Union {
	if len(types) == 0 {
		return existing.WithTypes(nil)
	}
	return existing.WithTypes(algebra.Combine(types, rn.r.cb, false))
}
