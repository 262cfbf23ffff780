package auth

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// FlightState is the state of one login or refresh flow on a manager.
type FlightState int

const (
	Idle FlightState = iota
	Pending
)

func (s FlightState) String() string {
	if s == Pending {
		return "pending"
	}

	return "idle"
}

// Operation is a shared, single-resolution handle for an in-flight login or
// refresh. Every caller that joins the same flight receives the same
// *Operation.
type Operation struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newOperation() *Operation {
	return &Operation{done: make(chan struct{})}
}

func (op *Operation) resolve(err error) {
	op.once.Do(func() {
		op.err = err
		close(op.done)
	})
}

// Done is closed once the operation settles.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

// Err returns the outcome. It is only meaningful after Done is closed.
func (op *Operation) Err() error {
	select {
	case <-op.done:
		return op.err
	default:
		return nil
	}
}

// Wait blocks until the operation settles or ctx is done. Giving up on ctx
// only stops this caller from waiting; the request itself keeps running and
// other callers still see its outcome.
func (op *Operation) Wait(ctx context.Context) error {
	select {
	case <-op.done:
		return op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flight enforces at most one pending Operation. The transition from Idle to
// Pending is a compare-and-swap on the handle pointer; settling swaps it back
// to nil before resolving, so a caller woken by the result starts afresh.
type flight struct {
	name    string
	pending atomic.Pointer[Operation]
	logger  *slog.Logger
}

// State reports whether an operation is currently in flight.
func (f *flight) State() FlightState {
	if f.pending.Load() != nil {
		return Pending
	}

	return Idle
}

// do joins the pending operation if there is one, otherwise starts run in a
// new goroutine. run receives a context detached from ctx's cancellation.
func (f *flight) do(ctx context.Context, run func(context.Context) error) *Operation {
	op := newOperation()

	for {
		if cur := f.pending.Load(); cur != nil {
			f.logger.Debug("joining in-flight operation", slog.String("flow", f.name))
			return cur
		}

		if f.pending.CompareAndSwap(nil, op) {
			break
		}
	}

	f.logger.Debug("starting new operation", slog.String("flow", f.name))

	runCtx := context.WithoutCancel(ctx)

	go func() {
		err := run(runCtx)
		f.pending.CompareAndSwap(op, nil)
		op.resolve(err)
	}()

	return op
}
