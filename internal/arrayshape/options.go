package arrayshape

import (
	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/issue"
)

// PHP versions are encoded as PHP_VERSION_ID does: 80100 is 8.1.0.
const (
	PHP80 = 80000
	PHP81 = 80100
	PHP83 = 80300
)

// Options tunes shape construction.
type Options struct {
	// PHPVersion gates string-keyed spreads, which need 8.1.
	PHPVersion int

	// MaxShapeSize is the number of entries a literal may have before its
	// exact shape is dropped for key/value parameters.
	MaxShapeSize int
}

// DefaultOptions returns options for PHP 8.3.
func DefaultOptions() Options {
	return Options{
		PHPVersion:   PHP83,
		MaxShapeSize: 100,
	}
}

// Builder resolves array expressions against a codebase.
type Builder struct {
	cb       codebase.Codebase
	reporter issue.Reporter
	opts     Options
}

// New returns a Builder. A nil reporter discards diagnostics; zero
// option fields take their defaults.
func New(cb codebase.Codebase, reporter issue.Reporter, opts Options) *Builder {
	def := DefaultOptions()
	if opts.PHPVersion == 0 {
		opts.PHPVersion = def.PHPVersion
	}
	if opts.MaxShapeSize <= 0 {
		opts.MaxShapeSize = def.MaxShapeSize
	}
	if reporter == nil {
		reporter = issue.Discard
	}
	return &Builder{cb: cb, reporter: reporter, opts: opts}
}

func (b *Builder) report(kind issue.Kind, span issue.Span, format string, args ...any) {
	b.reporter.Report(issue.Newf(kind, span, format, args...))
}
