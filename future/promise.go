package future

import (
	"github.com/warpline/timebox/channels"
	"github.com/warpline/timebox/result"
	"go.uber.org/atomic"
)

// Promise is the write side of a Future. Completing it resolves the
// future; every method is safe to call from any goroutine, and only the
// first completion takes effect.
//
// The promise also carries the cooperative cancellation state for the
// computation: an atomic flag plus a list of cancel functions that run
// when the signal is delivered. Cancellation and completion are
// independent — a cancelled computation still decides for itself how
// (and whether) to complete the promise.
type Promise[T any] struct {
	future      *Future[T]
	canceled    atomic.Bool
	cancelFuncs []func()
}

// Success resolves the future with a value. Later completions are
// ignored.
func (p *Promise[T]) Success(value T) {
	p.fulfill(result.OK(value))
}

// Failure resolves the future with an error. Later completions are
// ignored.
func (p *Promise[T]) Failure(err error) {
	p.fulfill(result.Fail[T](err))
}

// Complete resolves the future from Go's usual (value, error) pair:
// a non-nil error resolves as Failure, otherwise as Success.
func (p *Promise[T]) Complete(value T, err error) {
	if err != nil {
		p.Failure(err)
	} else {
		p.Success(value)
	}
}

// IsCancelled reports whether the cancellation signal has been
// delivered. Once cancelled, a promise stays cancelled.
func (p *Promise[T]) IsCancelled() bool {
	return p.canceled.Load()
}

// OnCancel registers a function to run when the cancellation signal is
// delivered, typically a context.CancelFunc that stops the underlying
// work. If the promise is already cancelled, the function runs
// immediately. Registration is not goroutine-safe; register before the
// promise is shared.
func (p *Promise[T]) OnCancel(f func()) {
	if f == nil {
		return
	}

	if p.canceled.Load() {
		f()

		return
	}

	p.cancelFuncs = append(p.cancelFuncs, f)
}

// cancel marks the promise cancelled and runs the registered cancel
// functions. Compare-and-swap makes delivery exactly-once; repeated
// calls are no-ops.
func (p *Promise[T]) cancel() {
	if p.canceled.CompareAndSwap(false, true) {
		for _, f := range p.cancelFuncs {
			f()
		}
	}
}

// fulfill stores the outcome and broadcasts resolution. The first call
// wins via sync.Once; the channel close unblocks every waiter at once.
// The mutex is held while closing so callback registration cannot race
// with the callback snapshot below.
func (p *Promise[T]) fulfill(res result.Of[T]) {
	p.future.once.Do(func() {
		p.future.result = res

		p.future.mu.Lock()

		channels.CloseIgnorePanic(p.future.resultReady)

		successCallbacks := p.future.successCallbacks
		errorCallbacks := p.future.errorCallbacks
		resultCallbacks := p.future.resultCallbacks

		// Callbacks fire once; dropping the slices also lets the GC
		// reclaim whatever they captured.
		p.future.successCallbacks = nil
		p.future.errorCallbacks = nil
		p.future.resultCallbacks = nil

		p.future.mu.Unlock()

		for _, callback := range resultCallbacks {
			invokeCallback("OnResult", callback, res)
		}

		if res.IsOK() {
			for _, callback := range successCallbacks {
				invokeCallback("OnSuccess", callback, res.Value)
			}
		} else {
			for _, callback := range errorCallbacks {
				invokeCallback("OnError", callback, res.Err)
			}
		}
	})
}
