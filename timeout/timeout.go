// Package timeout races asynchronous work against a time budget.
//
// Run spawns the work, arms a timer for the budget, and resolves with
// whichever finishes first. Resolution is exactly-once: the outcome is a
// single-write slot (a future), so the losing side's completion is a
// silent no-op. Cancellation is cooperative — on expiry the work's
// context is canceled, but work that ignores its context simply keeps
// running in the background while the caller moves on.
package timeout

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	errs "github.com/warpline/timebox/errors"
	"github.com/warpline/timebox/future"
	"github.com/warpline/timebox/logger"
	"github.com/warpline/timebox/tracing"
	"github.com/warpline/timebox/utils"
	"github.com/warpline/timebox/workers"
)

// Work is a unit of asynchronous work raced against a time budget. The
// context is canceled when the budget expires; cooperative work should
// watch it and return early.
type Work[T any] func(ctx context.Context) (T, error)

// Run executes work with a time budget and blocks until the race
// resolves. The outcome is exactly one of:
//
//   - (value, nil) — the work finished first;
//   - (zero, *TimedOutError) — the budget expired first; matches
//     errors.Is(err, ErrTimedOut);
//   - (zero, *UnknownError) — the work failed first; Unwrap exposes the
//     work's own error to errors.Is and errors.As.
//
// A budget of zero or less behaves as an already-expired deadline and
// always resolves timed out, though the work is still started. On
// expiry the work's context is canceled; work that never checks its
// context keeps running in the background, and whatever it eventually
// produces is discarded. Run does not retry — that belongs to callers.
func Run[T any](ctx context.Context, budget time.Duration, work Work[T], opts ...Option) (T, error) { //nolint:ireturn
	if work == nil {
		var zero T

		return zero, errs.ErrNilWork
	}

	o := buildOptions(opts)
	ctx = utils.EnsureContext(ctx)

	log := o.log
	if log == nil {
		log = logger.Get(ctx)
	}

	raceID := uuid.NewString()
	log = log.With("race_id", raceID, "race", o.name, "budget", budget.String())

	ctx, span := tracing.StartSpan(ctx, "timebox.race",
		attribute.String("race.id", raceID),
		attribute.String("race.name", o.name),
		attribute.Int64("race.budget_ms", budget.Milliseconds()))

	racesStarted.WithLabelValues(o.name).Inc()

	started := time.Now()

	fut := startRace(ctx, budget, work, o, log)

	value, err := fut.AwaitContext(ctx)

	elapsed := time.Since(started)
	outcome := outcomeLabel(err)

	racesResolved.WithLabelValues(o.name, outcome).Inc()
	raceDuration.WithLabelValues(o.name, outcome).Observe(elapsed.Seconds())
	tracing.EndSpan(span, err)

	if err != nil {
		log.Debug("race resolved", "outcome", outcome, "elapsed", elapsed.String(), "error", err)
	} else {
		log.Debug("race resolved", "outcome", outcome, "elapsed", elapsed.String())
	}

	return value, err
}

// startRace wires the worker, the timer, and the arbiter around a
// single future and returns it unresolved (unless the budget is already
// spent).
func startRace[T any](
	ctx context.Context, budget time.Duration, work Work[T], o *options, log *slog.Logger,
) *future.Future[T] {
	fut, promise := future.New[T]()

	workCtx, cancelWork := context.WithCancel(ctx)

	// On cancellation the worker's context dies and the race resolves as
	// timed out; the worker's own late completion then no-ops.
	promise.OnCancel(cancelWork)
	promise.OnCancel(func() {
		promise.Failure(&TimedOutError{After: budget})
	})

	// A zero or negative budget is an already-expired deadline: deliver
	// the cancellation before the work is spawned so the post-completion
	// check below deterministically discards whatever it produces.
	if budget <= 0 {
		fut.Cancel()
	}

	runWorker := func() {
		defer cancelWork()

		value, err := runGuarded(workCtx, work)

		// Post-completion check: a natural finish that raced the timer
		// loses to an already-delivered cancellation.
		switch {
		case promise.IsCancelled():
			promise.Failure(&TimedOutError{After: budget})
		case err != nil:
			promise.Failure(&UnknownError{Underlying: err})
		default:
			promise.Success(value)
		}
	}

	if o.usePool {
		if poolErr := workers.Go(runWorker); poolErr != nil {
			promise.Failure(poolErr)
		}
	} else {
		go runWorker()
	}

	if budget > 0 {
		timerCtx, cancelTimer := context.WithCancel(context.Background())

		// Arbiter: once the race resolves, stop the timer so it does not
		// linger for the rest of the budget.
		go func() {
			<-fut.Done()
			cancelTimer()
		}()

		go func() {
			err := utils.SleepCtx(timerCtx, budget)

			switch {
			case err == nil:
				log.Debug("budget expired, cancelling work")
				fut.Cancel()
			case utils.IsContextAlive(timerCtx):
				// Not reachable with SleepCtx; a timer fault must never
				// take the race down.
				log.Debug("timer aborted without cancellation", "error", err)
			}
		}()
	}

	return fut
}

// runGuarded invokes the work with panic recovery, converting a panic
// into an error carrying the stack.
func runGuarded[T any](ctx context.Context, work Work[T]) (value T, err error) { //nolint:ireturn,nonamedreturns
	defer func() {
		if r := recover(); r != nil {
			err = utils.GetPanicRecoveryError(r, debug.Stack())
		}
	}()

	return work(ctx)
}
