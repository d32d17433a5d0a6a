package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	const n = 10000
	var hits [n]atomic.Int32
	For(n, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i].Add(1)
		}
	})
	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestForEmptyRange(t *testing.T) {
	called := false
	For(0, func(start, end int) { called = true })
	For(-3, func(start, end int) { called = true })
	if called {
		t.Error("For() ran fn on an empty range")
	}
}

func TestForSingleWorkerRunsInline(t *testing.T) {
	SetWorkers(1)
	defer SetWorkers(0)

	var calls int
	var last int
	For(5000, func(start, end int) {
		calls++
		if start != 0 {
			t.Errorf("For() start = %d, want 0", start)
		}
		last = end
	})
	if calls != 1 {
		t.Errorf("For() with one worker made %d calls, want 1", calls)
	}
	if last != 5000 {
		t.Errorf("For() end = %d, want 5000", last)
	}
}

func TestForChunksAreDisjoint(t *testing.T) {
	SetWorkers(4)
	defer SetWorkers(0)

	const n = 40000
	var total atomic.Int64
	For(n, func(start, end int) {
		if start < 0 || end > n || start >= end {
			t.Errorf("For() chunk [%d, %d) out of range", start, end)
		}
		total.Add(int64(end - start))
	})
	if total.Load() != n {
		t.Errorf("For() chunk lengths sum to %d, want %d", total.Load(), n)
	}
}

func TestWorkersDefault(t *testing.T) {
	SetWorkers(0)
	if Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", Workers())
	}
	SetWorkers(3)
	defer SetWorkers(0)
	if Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", Workers())
	}
}
