package layout

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// subtreeCost estimates the work needed to lay out the box [id],
// as the number of boxes in its subtree.
func (lc *layoutContext) subtreeCost(id BoxID) int {
	return int(lc.tree.SubtreeEnd(id) - id)
}

// parallelism returns the number of goroutines used to lay out
// [n] independent items of total [cost], or 1 to stay on the
// calling goroutine. Each goroutine receives at least
// ParallelThreshold boxes of work.
func (lc *layoutContext) parallelism(n, cost int) int {
	grain := max(1, lc.cfg.ParallelThreshold)
	if n < 2 || cost < 2*grain {
		return 1
	}
	limit := lc.cfg.MaxParallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return max(1, min(limit, n, cost/grain))
}

// parallelFor calls [fn] for each index in [0, n), concurrently when
// the subtrees of the items, given by [boxOf], are large enough.
// [fn] must only write to its own index. Aborts and panics are
// propagated to the caller.
func (lc *layoutContext) parallelFor(n int, boxOf func(i int) BoxID, fn func(i int)) {
	cost := 0
	for i := range n {
		cost += lc.subtreeCost(boxOf(i))
	}
	limit := lc.parallelism(n, cost)
	if limit == 1 {
		for i := range n {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range n {
		g.Go(func() (err error) {
			defer recoverAll(&err)
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		rethrow(err)
	}
}
