// Package shutdown coordinates process teardown. Packages register hooks
// that must run before the process exits; the hooks fire when a
// termination signal arrives or when Shutdown is called programmatically.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mut     sync.Mutex     //nolint:gochecknoglobals
	hooks   []func()       //nolint:gochecknoglobals
	channel chan os.Signal //nolint:gochecknoglobals
)

// BeforeShutdown registers a hook to run before the shutdown process
// begins. Hooks run in registration order, on the signal-handling
// goroutine.
func BeforeShutdown(hook func()) {
	mut.Lock()
	defer mut.Unlock()

	hooks = append(hooks, hook)
}

// Shutdown triggers the shutdown process programmatically, as if an
// interrupt signal had been received. It is a no-op unless SetupHandler
// has been called.
func Shutdown() {
	if channel != nil {
		channel <- os.Interrupt
	}
}

// SetupHandler installs a SIGINT/SIGTERM handler and returns a context
// that is canceled once the hooks have finished running. Use the context
// to stop long-running work during teardown.
func SetupHandler() context.Context {
	channel = make(chan os.Signal, 1)
	signal.Notify(channel, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		for sig := range channel {
			slog.Warn("Received " + sig.String() + ", shutting down...")
			close(channel)

			channel = nil

			runHooks()
			cancel()
		}
	}()

	return ctx
}

func runHooks() {
	mut.Lock()
	defer mut.Unlock()

	for _, hook := range hooks {
		hook()
	}

	hooks = nil
}
