package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeqClock_StartsAtZero(t *testing.T) {
	clock := NewSeqClock()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestSeqClock_StartAt(t *testing.T) {
	clock := NewSeqClockAt(41)
	assert.Equal(t, int64(42), clock.Next())
}

func TestSeqClock_Take(t *testing.T) {
	clock := NewSeqClock()
	clock.Next()

	first := clock.Take(3)
	assert.Equal(t, int64(2), first)
	assert.Equal(t, int64(4), clock.Current())
	assert.Equal(t, int64(5), clock.Next())
}

func TestSeqClock_Reset(t *testing.T) {
	clock := NewSeqClock()
	clock.Next()
	clock.Next()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestSeqClock_ThreadSafe(t *testing.T) {
	clock := NewSeqClock()
	const workers, calls = 50, 100

	var wg sync.WaitGroup
	results := make([][]int64, workers)
	for i := range workers {
		results[i] = make([]int64, calls)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := range calls {
				results[idx][j] = clock.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, row := range results {
		for _, v := range row {
			require.False(t, seen[v], "duplicate value %d", v)
			seen[v] = true
		}
	}
	assert.Len(t, seen, workers*calls)
	assert.Equal(t, int64(workers*calls), clock.Current())
}

func TestRunIDGenerators(t *testing.T) {
	fixed := NewFixedRunIDGenerator("run-abc")
	assert.Equal(t, "run-abc", fixed.Generate())
	assert.Equal(t, "run-abc", fixed.Generate())

	assert.Equal(t, DefaultRunID, NewFixedRunIDGenerator("").Generate())

	var counting CountingRunIDGenerator
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", counting.Generate())
	assert.Equal(t, "00000000-0000-7000-8000-000000000002", counting.Generate())
}

func TestCodebaseFixture(t *testing.T) {
	cb := Codebase()

	assert.Equal(t, []string{"Hearts", "Spades"}, cb.EnumCases("Suit"))
	assert.True(t, cb.ClassExtendsOrImplements("Bag", "Countable"))
	assert.True(t, cb.ClassExtendsOrImplements("Circle", "Shape"))

	key, value, ok := cb.ArrayAccessParams("Collection")
	require.True(t, ok)
	assert.Equal(t, "int", key.ID())
	assert.Equal(t, "string", value.ID())
}
