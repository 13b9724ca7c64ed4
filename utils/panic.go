package utils //nolint:revive // utils is an appropriate package name for utility functions

import (
	"fmt"

	"github.com/warpline/timebox/errors"
)

// GetPanicRecoveryError converts a value recovered from a panic, plus an
// optional stack trace, into a regular error wrapping ErrPanicRecovery.
// A nil panic value yields nil. Error values are wrapped so the original
// error stays reachable through errors.Is/As; anything else is formatted
// with %v.
func GetPanicRecoveryError(panicValue any, stack []byte) error {
	if panicValue == nil {
		return nil
	}

	if err, ok := panicValue.(error); ok {
		if stack != nil {
			return fmt.Errorf("%w: %w\nstack trace:\n%s", errors.ErrPanicRecovery, err, string(stack))
		}

		return fmt.Errorf("%w: %w", errors.ErrPanicRecovery, err)
	}

	if stack != nil {
		return fmt.Errorf("%w: %v\nstack trace:\n%s", errors.ErrPanicRecovery, panicValue, string(stack))
	}

	return fmt.Errorf("%w: %v", errors.ErrPanicRecovery, panicValue)
}
