// Package errors holds the sentinel errors shared across timebox packages
// and a small accumulator for collecting several errors into one.
package errors

import "errors"

var (
	// ErrPanicRecovery is the base error wrapped around values recovered
	// from a panic inside a spawned activity.
	ErrPanicRecovery = errors.New("recovered from panic")

	// ErrNilWork is returned when a nil work function is handed to an
	// entry point that needs one.
	ErrNilWork = errors.New("nil work function")

	// ErrNoWork is returned by fan-in races that were given nothing to run.
	ErrNoWork = errors.New("no work functions provided")
)

// Collection accumulates errors from multiple operations so they can be
// returned as one. It is not safe for concurrent use; guard it with a
// mutex when feeding it from several goroutines.
type Collection struct {
	errs []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// HasErrors returns true if at least one error has been collected.
func (c *Collection) HasErrors() bool {
	return len(c.errs) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errs)
}

// Err returns the collected errors as a single error: nil when empty,
// the error itself when there is exactly one, and an errors.Join of all
// of them otherwise.
func (c *Collection) Err() error {
	switch len(c.errs) {
	case 0:
		return nil
	case 1:
		return c.errs[0]
	default:
		return errors.Join(c.errs...)
	}
}
