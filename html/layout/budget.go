package layout

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/benoitkugler/vformat/config"
	"github.com/benoitkugler/vformat/logger"
	"go.uber.org/zap"
)

var (
	// ErrBudgetExceeded is returned when a layout pass exceeds its
	// deadline or its step count.
	ErrBudgetExceeded = errors.New("layout budget exceeded")
	// ErrFragmentLimit is returned when a box is split into more
	// fragments than allowed, which happens with content that
	// can't make progress.
	ErrFragmentLimit = errors.New("fragment limit exceeded")
)

// abortError unwinds the layout up to the entry point.
type abortError struct{ err error }

func abort(err error) { panic(abortError{err}) }

// panicError carries a panic across a goroutine boundary.
type panicError struct {
	value interface{}
	stack []byte
}

func (p panicError) Error() string { return fmt.Sprintf("panic in layout: %v\n%s", p.value, p.stack) }

// recoverAbort converts an abort into an error. Other panics are propagated.
func recoverAbort(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if a, ok := r.(abortError); ok {
		logger.ProgressLogger.Log("layout aborted", zap.Error(a.err))
		*err = a.err
		return
	}
	panic(r)
}

// recoverAll converts any panic into an error, so that it may be
// returned from a goroutine and propagated by [rethrow].
func recoverAll(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if a, ok := r.(abortError); ok {
		*err = a
		return
	}
	*err = panicError{value: r, stack: debug.Stack()}
}

func (a abortError) Error() string { return a.err.Error() }

// rethrow resumes on the calling goroutine the panic captured by [recoverAll].
func rethrow(err error) {
	var (
		a abortError
		p panicError
	)
	switch {
	case errors.As(err, &a):
		panic(a)
	case errors.As(err, &p):
		panic(p.value)
	default:
		abort(err)
	}
}

// budget bounds the work of one layout pass. It is checked at every
// formatting context entry and at every fragmentation break, and is
// safe for concurrent use.
type budget struct {
	ctx          context.Context
	deadline     time.Time // zero for no deadline
	maxSteps     int64
	maxFragments int

	steps atomic.Int64
}

func newBudget(ctx context.Context, cfg config.LayoutConfig) *budget {
	if ctx == nil {
		ctx = context.Background()
	}
	b := &budget{ctx: ctx, maxSteps: int64(cfg.MaxSteps), maxFragments: cfg.MaxFragments}
	if cfg.Budget > 0 {
		b.deadline = time.Now().Add(cfg.Budget)
	}
	if d, ok := ctx.Deadline(); ok && (b.deadline.IsZero() || d.Before(b.deadline)) {
		b.deadline = d
	}
	return b
}

// enter is called at each formatting context entry and fragmentation
// break. It aborts the layout if the budget is exhausted.
func (b *budget) enter() {
	n := b.steps.Add(1)
	if b.maxSteps > 0 && n > b.maxSteps {
		abort(fmt.Errorf("%w: more than %d steps", ErrBudgetExceeded, b.maxSteps))
	}
	if err := b.ctx.Err(); err != nil {
		abort(err)
	}
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		abort(fmt.Errorf("%w: deadline reached after %d steps", ErrBudgetExceeded, n))
	}
}

// checkIndex aborts when a box is split into more than the
// allowed number of fragments.
func (b *budget) checkIndex(index int) {
	if b.maxFragments > 0 && index >= b.maxFragments {
		abort(fmt.Errorf("%w: %d fragments", ErrFragmentLimit, index+1))
	}
}

// Steps returns the number of steps done so far.
func (b *budget) Steps() int64 { return b.steps.Load() }
