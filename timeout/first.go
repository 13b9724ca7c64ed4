package timeout

import (
	"context"
	"sync"

	errs "github.com/warpline/timebox/errors"
	"github.com/warpline/timebox/future"
	"github.com/warpline/timebox/utils"
)

// First races the works against each other: the first to complete —
// with success or failure — resolves the outcome and the rest are
// canceled through their shared context. Errors are returned as the
// work produced them, unwrapped. To bound the whole race by a budget,
// wrap it in Run.
func First[T any](ctx context.Context, works ...Work[T]) (T, error) { //nolint:ireturn
	if len(works) == 0 {
		var zero T

		return zero, errs.ErrNoWork
	}

	ctx = utils.EnsureContext(ctx)

	fut, promise := future.New[T]()

	raceCtx, cancel := context.WithCancel(ctx)
	promise.OnCancel(cancel)

	for _, work := range works {
		work := work
		go func() {
			promise.Complete(runGuarded(raceCtx, work))
		}()
	}

	// First writer wins; cancel the losers.
	go func() {
		<-fut.Done()
		cancel()
	}()

	return fut.AwaitContext(ctx)
}

// FirstSuccess races the works and resolves with the first success,
// cancelling the rest. Failures are collected; only when every work has
// failed does the race resolve with the joined errors. To bound the
// whole race by a budget, wrap it in Run.
func FirstSuccess[T any](ctx context.Context, works ...Work[T]) (T, error) { //nolint:ireturn
	if len(works) == 0 {
		var zero T

		return zero, errs.ErrNoWork
	}

	ctx = utils.EnsureContext(ctx)

	fut, promise := future.New[T]()

	raceCtx, cancel := context.WithCancel(ctx)
	promise.OnCancel(cancel)

	var (
		mu       sync.Mutex
		failures errs.Collection
		pending  = len(works)
	)

	for _, work := range works {
		work := work
		go func() {
			value, err := runGuarded(raceCtx, work)
			if err == nil {
				promise.Success(value)

				return
			}

			mu.Lock()
			failures.Add(err)
			pending--
			exhausted := pending == 0
			mu.Unlock()

			if exhausted {
				promise.Failure(failures.Err())
			}
		}()
	}

	go func() {
		<-fut.Done()
		cancel()
	}()

	return fut.AwaitContext(ctx)
}
