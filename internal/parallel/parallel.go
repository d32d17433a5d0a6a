// Package parallel runs the data-parallel loops behind the refinement
// kernels: contiguous chunks of an index range fanned out over a bounded
// set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// workerCap overrides the worker count when positive.
var workerCap atomic.Int32

// SetWorkers caps the goroutines used by For. Zero or negative restores
// the default of one worker per logical CPU.
func SetWorkers(n int) {
	workerCap.Store(int32(n))
}

// Workers reports the worker count For would use.
func Workers() int {
	if n := int(workerCap.Load()); n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// minChunk keeps goroutine fan-out worthwhile; ranges below twice this
// run inline on the caller.
const minChunk = 1024

// For splits [0, n) into disjoint contiguous chunks and runs fn on each,
// returning once every chunk has finished. fn may write freely to
// per-index data; chunks never overlap.
func For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := Workers()
	if workers > n {
		workers = n
	}
	if workers == 1 || n < minChunk*2 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(start, end)
		}()
	}
	wg.Wait()
}
