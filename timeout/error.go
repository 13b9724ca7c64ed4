package timeout

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimedOut is the sentinel matched by errors.Is for every timeout
// produced by this package. The concrete error carried by a timed-out
// race is *TimedOutError, which records the budget that elapsed.
var ErrTimedOut = errors.New("timed out")

// TimedOutError reports that a race was resolved by its timer rather
// than its work. After is the budget that elapsed.
type TimedOutError struct {
	After time.Duration
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("timed out after %s", e.After)
}

// Is matches ErrTimedOut so callers can use errors.Is without caring
// about the concrete type.
func (e *TimedOutError) Is(target error) bool {
	return target == ErrTimedOut
}

// UnknownError wraps an error returned by the work itself, keeping
// work failures distinguishable from timeouts. Unwrap exposes the
// underlying error to errors.Is and errors.As.
type UnknownError struct {
	Underlying error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("work failed: %v", e.Underlying)
}

func (e *UnknownError) Unwrap() error {
	return e.Underlying
}
