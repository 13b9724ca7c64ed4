// Package result provides a small container pairing a value with the error
// that was produced alongside it. It is the currency used by the future
// package to move a computation's outcome between goroutines as a single unit.
package result

// Of holds the outcome of a computation: a value of type T and the error,
// if any, that the computation returned. Exactly one of the two is
// meaningful; a non-nil Err means Value is the zero value.
type Of[T any] struct {
	Value T
	Err   error
}

// OK wraps a successful value.
func OK[T any](value T) Of[T] {
	return Of[T]{Value: value}
}

// Fail wraps an error. The value field is left at its zero value.
func Fail[T any](err error) Of[T] {
	return Of[T]{Err: err}
}

// IsOK returns true if the computation succeeded.
func (r Of[T]) IsOK() bool {
	return r.Err == nil
}

// IsFail returns true if the computation failed.
func (r Of[T]) IsFail() bool {
	return r.Err != nil
}

// Get unpacks the container into Go's usual (value, error) pair.
// On failure the zero value of T is returned alongside the error.
func (r Of[T]) Get() (T, error) { //nolint:ireturn
	if r.Err != nil {
		var zero T

		return zero, r.Err
	}

	return r.Value, nil
}

// OrElse returns the value on success, or the fallback on failure.
func (r Of[T]) OrElse(fallback T) T { //nolint:ireturn
	if r.Err != nil {
		return fallback
	}

	return r.Value
}

// Map transforms a successful outcome with f. A failed outcome passes
// through untouched; an error from f produces a failed outcome.
func Map[A, B any](r Of[A], f func(A) (B, error)) Of[B] {
	if r.Err != nil {
		return Of[B]{Err: r.Err}
	}

	value, err := f(r.Value)

	return Of[B]{Value: value, Err: err}
}
