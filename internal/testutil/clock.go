package testutil

import "sync/atomic"

// SeqClock hands out the seq numbers runs and issues are stored with.
// Two clocks created the same way produce the same sequence, so stored
// listings and golden traces are stable across reruns.
//
// Thread-safety: SeqClock is safe for concurrent use.
type SeqClock struct {
	seq atomic.Int64
}

// NewSeqClock returns a clock whose first Next is 1.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// NewSeqClockAt returns a clock whose first Next is start+1, for
// continuing after rows already in a store.
func NewSeqClockAt(start int64) *SeqClock {
	c := &SeqClock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Take reserves n consecutive values and returns the first, for writing
// a batch of issues.
func (c *SeqClock) Take(n int) int64 {
	return c.seq.Add(int64(n)) - int64(n) + 1
}

// Current returns the last value handed out, 0 before the first Next.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock so the next scenario starts at 1 again.
func (c *SeqClock) Reset() {
	c.seq.Store(0)
}
