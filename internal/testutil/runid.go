package testutil

import (
	"fmt"
	"sync"
)

// DefaultRunID is the run id scenarios get when they do not name one.
const DefaultRunID = "00000000-0000-7000-8000-000000000000"

// FixedRunIDGenerator returns the same run id every time, so a scenario
// rerun writes byte-identical rows. It satisfies store.RunIDGenerator.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id, or DefaultRunID if
// id is empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// CountingRunIDGenerator numbers run ids from 1 in a UUIDv7-shaped
// layout: 00000000-0000-7000-8000-000000000001, ...
//
// Thread-safety: safe for concurrent use via internal mutex.
type CountingRunIDGenerator struct {
	mu sync.Mutex
	n  int64
}

// Generate returns the next run id.
func (g *CountingRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", g.n)
}
