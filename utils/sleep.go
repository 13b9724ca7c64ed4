package utils

import (
	"context"
	"time"
)

// SleepCtx suspends the calling goroutine for dur, or until the context is
// done, whichever comes first. It returns nil when the full duration
// elapsed and the context's error when the sleep was interrupted.
// Durations of zero or less return nil immediately, even if the context
// is already done.
func SleepCtx(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
