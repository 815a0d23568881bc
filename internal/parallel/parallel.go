// Package parallel is the fork/join backend used for per-row transforms.
// Work over [0, n) is cut into contiguous chunks of at least grain rows and
// run on an errgroup; below one grain everything runs on the caller.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultGrain is the smallest chunk worth handing to another goroutine.
const DefaultGrain = 4096

// For calls fn over disjoint [lo, hi) chunks covering [0, n) and returns
// once every chunk is done. fn must only touch rows inside its chunk.
func For(n, grain int, fn func(lo, hi int)) {
	_ = ForErr(n, grain, func(lo, hi int) error {
		fn(lo, hi)
		return nil
	})
}

// ForErr is For with a fallible body. The first error is returned after
// all chunks have finished.
func ForErr(n, grain int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	chunks := chunks(n, grain)
	if len(chunks) == 1 {
		return fn(0, n)
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, c := range chunks {
		g.Go(func() error {
			return fn(c.lo, c.hi)
		})
	}
	return g.Wait()
}

// ExclusiveScan writes into out[i] the number of indices j < i for which
// pred(j) holds and returns the total count. out must have length n.
func ExclusiveScan(n, grain int, pred func(i int) bool, out []int) int {
	if n == 0 {
		return 0
	}
	chunks := chunks(n, grain)
	sums := make([]int, len(chunks))

	// local scans
	runChunks(chunks, func(k int, c span) {
		count := 0
		for i := c.lo; i < c.hi; i++ {
			out[i] = count
			if pred(i) {
				count++
			}
		}
		sums[k] = count
	})

	offsets := make([]int, len(chunks))
	total := 0
	for k, s := range sums {
		offsets[k] = total
		total += s
	}

	runChunks(chunks, func(k int, c span) {
		if offsets[k] == 0 {
			return
		}
		for i := c.lo; i < c.hi; i++ {
			out[i] += offsets[k]
		}
	})
	return total
}

type span struct {
	lo, hi int
}

func chunks(n, grain int) []span {
	if grain <= 0 {
		grain = DefaultGrain
	}
	workers := runtime.GOMAXPROCS(0)
	size := max(grain, (n+workers-1)/workers)
	out := make([]span, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		out = append(out, span{lo: lo, hi: min(lo+size, n)})
	}
	return out
}

func runChunks(cs []span, fn func(k int, c span)) {
	if len(cs) == 1 {
		fn(0, cs[0])
		return
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k, c := range cs {
		g.Go(func() error {
			fn(k, c)
			return nil
		})
	}
	_ = g.Wait()
}
