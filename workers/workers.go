// Package workers manages the shared background worker pool. Work that
// should not spawn an unbounded number of goroutines — pooled races,
// abandoned cleanup, fire-and-forget jobs — is submitted here instead of
// being launched directly.
package workers

import (
	"log/slog"

	"github.com/alitto/pond/v2"
	"github.com/warpline/timebox/envutil"
	"github.com/warpline/timebox/lazy"
	"github.com/warpline/timebox/shutdown"
)

const defaultPoolSize = 8

// pool is the lazily created process-wide worker pool. Its size comes
// from WORKER_COUNT; it is drained on shutdown.
var pool = lazy.New[pond.Pool](func() pond.Pool { //nolint:gochecknoglobals
	size := envutil.Int("WORKER_COUNT", envutil.Default(defaultPoolSize)).ValueOrElse(defaultPoolSize)

	slog.Debug("Initializing background worker pool", "size", size)

	p := pond.NewPool(size)

	shutdown.BeforeShutdown(func() {
		slog.Debug("Stopping background worker pool")
		p.StopAndWait()
		slog.Debug("Background worker pool stopped")
	})

	return p
})

// Submit hands a function to the pool and returns a Task that can be
// waited on.
func Submit(f func()) pond.Task { //nolint:ireturn
	return pool.Get().Submit(f)
}

// Go hands a function to the pool and returns immediately. It returns an
// error only if the pool has been stopped.
func Go(f func()) error {
	return pool.Get().Go(f)
}
