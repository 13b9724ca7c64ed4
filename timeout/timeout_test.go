package timeout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	errs "github.com/warpline/timebox/errors"
	"github.com/warpline/timebox/tracing"
)

var errBoom = errors.New("boom")

func TestRun_WorkWinsTheRace(t *testing.T) {
	t.Parallel()

	value, err := Run(testContext(t), time.Second, func(_ context.Context) (int, error) {
		time.Sleep(10 * time.Millisecond)

		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestRun_TimerWinsTheRace(t *testing.T) {
	t.Parallel()

	budget := 20 * time.Millisecond

	started := time.Now()

	value, err := Run(testContext(t), budget, func(ctx context.Context) (int, error) {
		// Cooperative work: returns as soon as the context dies.
		<-ctx.Done()

		return 0, ctx.Err()
	})

	elapsed := time.Since(started)

	require.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, 0, value)

	var timedOut *TimedOutError

	require.ErrorAs(t, err, &timedOut)
	assert.Equal(t, budget, timedOut.After)

	assert.GreaterOrEqual(t, elapsed, budget)
	assert.Less(t, elapsed, 10*budget)
}

func TestRun_WorkFails(t *testing.T) {
	t.Parallel()

	value, err := Run(testContext(t), time.Second, func(_ context.Context) (int, error) {
		return 0, errBoom
	})

	require.Error(t, err)
	assert.Equal(t, 0, value)

	// The work's own error survives the wrapper.
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrTimedOut)

	var unknown *UnknownError

	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, errBoom, unknown.Underlying)
}

func TestRun_UncooperativeWorkDoesNotBlockCaller(t *testing.T) {
	t.Parallel()

	budget := 20 * time.Millisecond
	workDone := make(chan struct{})

	started := time.Now()

	_, err := Run(testContext(t), budget, func(_ context.Context) (int, error) {
		// Ignores its context entirely.
		time.Sleep(200 * time.Millisecond)
		close(workDone)

		return 42, nil
	})

	elapsed := time.Since(started)

	require.ErrorIs(t, err, ErrTimedOut)
	assert.GreaterOrEqual(t, elapsed, budget)
	assert.Less(t, elapsed, 100*time.Millisecond, "caller must unblock at the budget, not at work completion")

	// The abandoned work runs to completion in the background; its value
	// was discarded, not lost to a crash.
	select {
	case <-workDone:
	case <-time.After(time.Second):
		t.Fatal("abandoned work never finished")
	}
}

func TestRun_ZeroBudgetAlwaysTimesOut(t *testing.T) {
	t.Parallel()

	value, err := Run(testContext(t), 0, func(_ context.Context) (string, error) {
		return "instant", nil
	})

	require.ErrorIs(t, err, ErrTimedOut)
	assert.Empty(t, value)
}

func TestRun_NegativeBudgetAlwaysTimesOut(t *testing.T) {
	t.Parallel()

	_, err := Run(testContext(t), -time.Second, func(_ context.Context) (string, error) {
		return "instant", nil
	})

	require.ErrorIs(t, err, ErrTimedOut)
}

func TestRun_NilWork(t *testing.T) {
	t.Parallel()

	_, err := Run[int](testContext(t), time.Second, nil)

	require.ErrorIs(t, err, errs.ErrNilWork)
}

func TestRun_WorkPanics(t *testing.T) {
	t.Parallel()

	_, err := Run(testContext(t), time.Second, func(_ context.Context) (int, error) {
		panic("kaboom")
	})

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrPanicRecovery)
	assert.Contains(t, err.Error(), "kaboom")
	assert.NotErrorIs(t, err, ErrTimedOut)
}

func TestRun_ParentContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(testContext(t))

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	started := time.Now()

	_, err := Run(ctx, time.Minute, func(ctx context.Context) (int, error) {
		<-ctx.Done()

		return 0, ctx.Err()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), time.Second)
}

func TestRun_CancellationDeliveredToWork(t *testing.T) {
	t.Parallel()

	var sawCancellation atomic.Bool

	observed := make(chan struct{})

	_, err := Run(testContext(t), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		sawCancellation.Store(true)
		close(observed)

		return 0, ctx.Err()
	})

	require.ErrorIs(t, err, ErrTimedOut)

	select {
	case <-observed:
	case <-time.After(time.Second):
		t.Fatal("work never observed cancellation")
	}

	assert.True(t, sawCancellation.Load())
}

func TestRun_LateValueDiscarded(t *testing.T) {
	t.Parallel()

	// The work finishes after the timer but still produces a value; the
	// post-completion check must discard it.
	value, err := Run(testContext(t), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()

		return 42, nil
	})

	require.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, 0, value)
}

func TestRun_WithPool(t *testing.T) {
	t.Parallel()

	value, err := Run(testContext(t), time.Second, func(_ context.Context) (int, error) {
		return 7, nil
	}, WithPool())

	require.NoError(t, err)
	assert.Equal(t, 7, value)
}

func TestRun_WithPool_TimedOut(t *testing.T) {
	t.Parallel()

	_, err := Run(testContext(t), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()

		return 0, ctx.Err()
	}, WithPool())

	require.ErrorIs(t, err, ErrTimedOut)
}

func TestRun_WithNameAndLogger(t *testing.T) {
	t.Parallel()

	value, err := Run(testContext(t), time.Second, func(_ context.Context) (string, error) {
		return "ok", nil
	}, WithName("lookup"), WithLogger(slogt.New(t)))

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestRun_TraceSpanRecorded(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx := tracing.WithTracer(testContext(t), provider.Tracer("test"))

	_, err := Run(ctx, time.Second, func(_ context.Context) (int, error) {
		return 1, nil
	}, WithName("traced"))

	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "timebox.race", spans[0].Name())

	attrs := spans[0].Attributes()

	names := make(map[string]string)

	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING {
			names[string(attr.Key)] = attr.Value.AsString()
		}
	}

	assert.Equal(t, "traced", names["race.name"])
	assert.NotEmpty(t, names["race.id"])
}

func TestTimedOutError_Message(t *testing.T) {
	t.Parallel()

	err := &TimedOutError{After: 3 * time.Second}

	assert.Equal(t, "timed out after 3s", err.Error())
	assert.ErrorIs(t, err, ErrTimedOut)
}

func TestUnknownError_Unwrap(t *testing.T) {
	t.Parallel()

	err := &UnknownError{Underlying: errBoom}

	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrTimedOut)
	assert.Contains(t, err.Error(), "boom")
}
