package utils

import "context"

// EnsureContext returns the first non-nil context, or a background
// context when none is provided.
func EnsureContext(ctx ...context.Context) context.Context {
	for _, c := range ctx {
		if c != nil {
			return c
		}
	}

	return context.Background()
}

// IsContextAlive returns true if the context is not done.
// The check is non-blocking.
func IsContextAlive(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}
