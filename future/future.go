// Package future provides a Future/Promise pair for moving the outcome
// of an asynchronous computation from the goroutine that produces it to
// the goroutines that await it.
//
// A Future resolves exactly once. Fulfilment is guarded by a sync.Once,
// so however many goroutines race to complete the promise, the first
// writer wins and every later attempt is a silent no-op. This
// single-write slot is what the timeout package builds its race on.
//
// Cancellation is cooperative. Cancel delivers a signal (and runs any
// registered cancel functions, typically a context.CancelFunc); it does
// not resolve the future or stop code that never checks the signal.
package future

import (
	"context"
	"sync"

	"github.com/warpline/timebox/channels"
	"github.com/warpline/timebox/result"
)

// Future is the read side of an asynchronous computation. Create one
// with New, Go, GoContext, or GoPool.
type Future[T any] struct {
	once        sync.Once
	mu          sync.Mutex
	resultReady chan struct{}
	result      result.Of[T]
	promise     *Promise[T]

	successCallbacks []func(T)
	errorCallbacks   []func(error)
	resultCallbacks  []func(result.Of[T])
}

// New creates an unresolved future and the promise that completes it.
// The promise is the only way to resolve the future; hand the future to
// consumers and keep the promise on the producing side.
func New[T any]() (*Future[T], *Promise[T]) {
	fut := &Future[T]{
		resultReady: make(chan struct{}),
	}

	promise := &Promise[T]{
		future: fut,
	}

	fut.promise = promise

	return fut, promise
}

// NewResolved returns a future that is already resolved with the value.
func NewResolved[T any](value T) *Future[T] {
	fut, promise := New[T]()
	promise.Success(value)

	return fut
}

// NewError returns a future that is already resolved with the error.
func NewError[T any](err error) *Future[T] {
	fut, promise := New[T]()
	promise.Failure(err)

	return fut
}

// Await blocks until the future resolves and returns its outcome.
// Await is idempotent: any number of goroutines may call it, before or
// after resolution, and all observe the same result.
func (f *Future[T]) Await() (T, error) { //nolint:ireturn
	<-f.resultReady

	return f.result.Get()
}

// AwaitContext blocks until the future resolves or the context is done,
// whichever comes first. When the context wins, the context's error is
// returned and the future itself stays unresolved (or resolves later,
// unobserved by this caller). A nil context behaves like Await.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) { //nolint:ireturn
	if ctx == nil {
		return f.Await()
	}

	select {
	case <-f.resultReady:
		return f.result.Get()
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed when the future resolves. Use it
// to watch for completion in a select, or to trigger follow-up work such
// as cancelling a competing activity.
func (f *Future[T]) Done() <-chan struct{} {
	return f.resultReady
}

// IsResolved reports whether the future has resolved yet.
// The check is non-blocking.
func (f *Future[T]) IsResolved() bool {
	select {
	case <-f.resultReady:
		return true
	default:
		return false
	}
}

// Cancel delivers the cooperative cancellation signal to the producing
// side: the promise is marked cancelled and its registered cancel
// functions run. Cancel is idempotent and never an error, even on
// futures that already resolved or were already cancelled. It does not
// resolve the future by itself.
func (f *Future[T]) Cancel() {
	f.promise.cancel()
}

// IsCancelled reports whether Cancel has been called.
func (f *Future[T]) IsCancelled() bool {
	return f.promise.IsCancelled()
}

// ToChannel exposes the future as a channel carrying its single outcome.
// The channel receives exactly one value when the future resolves, then
// closes. Handy for select statements.
func (f *Future[T]) ToChannel() <-chan result.Of[T] {
	ch := make(chan result.Of[T], 1)

	go func() {
		defer channels.CloseIgnorePanic(ch)

		value, err := f.Await()

		ch <- result.Of[T]{Value: value, Err: err}
	}()

	return ch
}

// ToChannelContext is ToChannel with a context: if the context finishes
// first, the channel receives a failed outcome carrying the context's
// error instead.
func (f *Future[T]) ToChannelContext(ctx context.Context) <-chan result.Of[T] {
	ch := make(chan result.Of[T], 1)

	go func() {
		defer channels.CloseIgnorePanic(ch)

		value, err := f.AwaitContext(ctx)

		ch <- result.Of[T]{Value: value, Err: err}
	}()

	return ch
}

// OnSuccess registers a callback invoked with the value if the future
// resolves successfully. If the future already resolved, the callback is
// invoked immediately. Callbacks run on their own goroutines and are
// panic-recovered.
func (f *Future[T]) OnSuccess(callback func(T)) {
	f.mu.Lock()

	if !f.IsResolved() {
		f.successCallbacks = append(f.successCallbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	if f.result.IsOK() {
		invokeCallback("OnSuccess", callback, f.result.Value)
	}
}

// OnError registers a callback invoked with the error if the future
// resolves with a failure. If the future already resolved, the callback
// is invoked immediately. Callbacks run on their own goroutines and are
// panic-recovered.
func (f *Future[T]) OnError(callback func(error)) {
	f.mu.Lock()

	if !f.IsResolved() {
		f.errorCallbacks = append(f.errorCallbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	if f.result.IsFail() {
		invokeCallback("OnError", callback, f.result.Err)
	}
}

// OnResult registers a callback invoked with the outcome, success or
// failure, once the future resolves. If the future already resolved, the
// callback is invoked immediately. Callbacks run on their own goroutines
// and are panic-recovered.
func (f *Future[T]) OnResult(callback func(result.Of[T])) {
	f.mu.Lock()

	if !f.IsResolved() {
		f.resultCallbacks = append(f.resultCallbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	invokeCallback("OnResult", callback, f.result)
}
