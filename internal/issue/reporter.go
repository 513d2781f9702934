package issue

import (
	"slices"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reporter receives diagnostics as they are found.
type Reporter interface {
	Report(Issue)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Issue)

func (f ReporterFunc) Report(i Issue) { f(i) }

// Discard drops every issue.
var Discard Reporter = ReporterFunc(func(Issue) {})

// Collector keeps issues in arrival order. It is safe for concurrent use
// so one collector can serve several per-file analyses.
type Collector struct {
	mu     sync.Mutex
	issues []Issue
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(i Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = append(c.issues, i)
}

// Issues returns a copy of everything reported so far.
func (c *Collector) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.issues)
}

// Kinds returns the kind of each issue in arrival order.
func (c *Collector) Kinds() []Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.issues) == 0 {
		return nil
	}
	out := make([]Kind, len(c.issues))
	for i, is := range c.issues {
		out[i] = is.Kind
	}
	return out
}

// Count returns how many issues of kind were reported.
func (c *Collector) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, is := range c.issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issues)
}

// Reset forgets all issues.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issues = nil
}

// Summary renders per-severity counts, e.g. "1,204 errors, 3 warnings, 0 infos".
func (c *Collector) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs, warns, infos int
	for _, is := range c.issues {
		switch is.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		default:
			infos++
		}
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d errors, %d warnings, %d infos", errs, warns, infos)
}
