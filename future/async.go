package future

import (
	"context"
	"runtime/debug"

	"github.com/warpline/timebox/logger"
	"github.com/warpline/timebox/utils"
	"github.com/warpline/timebox/workers"
)

// Go runs f on its own goroutine and returns a future for its outcome.
// A panic inside f resolves the future with a panic-recovery error
// instead of crashing the process.
func Go[T any](f func() (T, error)) *Future[T] {
	fut, promise := New[T]()

	go runBody(promise, f)

	return fut
}

// GoContext runs f on its own goroutine with a context that is canceled
// when the returned future is cancelled (and when f returns). The
// cancellation is cooperative: f observes it through the context.
func GoContext[T any](ctx context.Context, f func(ctx context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(utils.EnsureContext(ctx))

	fut, promise := New[T]()
	promise.OnCancel(cancel)

	go func() {
		defer cancel()

		runBody(promise, func() (T, error) {
			return f(ctx)
		})
	}()

	return fut
}

// GoPool is Go on the shared background worker pool instead of a fresh
// goroutine. If the pool has been stopped, the future resolves with the
// pool's error.
func GoPool[T any](f func() (T, error)) *Future[T] {
	fut, promise := New[T]()

	if err := workers.Go(func() {
		runBody(promise, f)
	}); err != nil {
		promise.Failure(err)
	}

	return fut
}

// Async runs f in the background without a result. This is
// fire-and-forget: any panic is recovered and logged, never raised.
func Async(f func()) {
	fut := Go(func() (struct{}, error) {
		f()

		return struct{}{}, nil
	})

	fut.OnError(func(err error) {
		logger.Get().Error("future.Async", "error", err)
	})
}

// AsyncContext runs f in the background with a context and without a
// result. Errors returned by f and recovered panics are logged, never
// raised.
func AsyncContext(ctx context.Context, f func(ctx context.Context) error) {
	fut := GoContext(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f(ctx)
	})

	fut.OnError(func(err error) {
		logger.Get(ctx).Error("future.AsyncContext", "error", err)
	})
}

// runBody invokes f and completes the promise with its outcome,
// converting panics into failures.
func runBody[T any](promise *Promise[T], f func() (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			promise.Failure(utils.GetPanicRecoveryError(r, debug.Stack()))
		}
	}()

	promise.Complete(f())
}
