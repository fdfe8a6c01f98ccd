// Package parallel provides bounded data-parallel loops for the pipeline
// stages. Every stage of a conversion is a map or block-reduce over an
// index range; For splits the range across workers and does not return
// until every worker has finished, so a completed call is a full barrier
// between stages.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minGrain is the smallest per-worker slice of an index range. Splitting
// finer than this costs more in goroutine churn than the work saves.
const minGrain = 256

// Workers normalizes a worker-count option: values <= 0 mean NumCPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// For runs fn over [0, n) split into contiguous chunks across at most
// workers goroutines. fn receives a half-open [start, end) range and must
// not touch indices outside it. For blocks until all chunks are done.
func For(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)

	chunk := (n + workers - 1) / workers
	if chunk < minGrain {
		chunk = minGrain
	}
	if chunk >= n {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Strips runs fn over [0, n) split into at most Workers(workers)
// contiguous strips, one goroutine per strip. Strip ids are dense and
// distinct, so reductions can accumulate into per-strip slots without
// locking; allocate Workers(workers) slots and sum them all afterwards
// (unused slots stay zero). Strips blocks until every strip is done.
func Strips(n, workers int, fn func(strip, start, end int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)

	chunk := (n + workers - 1) / workers
	if chunk < minGrain {
		chunk = minGrain
	}
	if chunk >= n {
		fn(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	strip := 0
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(id, s, e int) {
			defer wg.Done()
			fn(id, s, e)
		}(strip, start, end)
		strip++
	}
	wg.Wait()
}

// Each runs fn(i) for every i in [0, n), one item per task, pulled by a
// fixed set of workers from a shared counter. Use this when each item is
// itself a large unit of work (one sort block, one LUT row) and For's
// chunk coalescing would leave workers idle. Each blocks until all items
// are done.
func Each(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}
