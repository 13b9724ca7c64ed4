// Package logger provides the contextual slog logger used throughout
// timebox. Loggers are obtained from a context so call sites pick up any
// key-value pairs, subsystem override, or muting that callers attached
// upstream.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/warpline/timebox/envutil"
	"github.com/warpline/timebox/lazy"
)

// subsystem is the process-wide subsystem name attached to every log line.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes calls that modify the global slog default.
var configMutex sync.Mutex //nolint:gochecknoglobals

// Context keys get an unexported type so they cannot collide with keys
// from other packages.
type contextKey string

// Options configures logging.
type Options struct {
	Subsystem string
	JSON      bool
	MinLevel  slog.Level
	Output    io.Writer
}

// ConfigureLoggingWithOptions configures the process-wide default logger
// and returns it. Thread-safe; concurrent calls are serialized.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var handler slog.Handler

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{
			Level: opts.MinLevel,
		})
	} else {
		handler = slog.NewTextHandler(opts.Output, &slog.HandlerOptions{
			Level: opts.MinLevel,
		})
	}

	// Surface attributes carried by annotated errors (see AnnotateError).
	logger := slog.New(&errorAttrHandler{inner: handler})

	slog.SetDefault(logger)
	subsystem.Store(opts.Subsystem)

	return logger
}

// ConfigureLogging configures logging from the environment: LOG_JSON
// switches to JSON output and LOG_LEVEL sets the minimum level. It
// returns the default logger.
func ConfigureLogging(app string) *slog.Logger {
	return ConfigureLoggingWithOptions(Options{
		Subsystem: app,
		JSON:      envutil.Bool("LOG_JSON", envutil.Default(false)).ValueOrElse(false),
		MinLevel:  envutil.Level("LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrElse(slog.LevelInfo),
	})
}

// WithMuted marks the context so loggers obtained from it discard all
// output. Useful for high-frequency paths such as health checks.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	muted, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && muted
}

// WithSubsystem overrides the subsystem name for loggers obtained from
// this context.
func WithSubsystem(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), name)
}

// GetSubsystem returns the subsystem for the context: the context
// override if present, otherwise the process-wide value set at
// configuration time.
func GetSubsystem(ctx context.Context) string { //nolint:contextcheck
	if ctx != nil {
		if name, ok := ctx.Value(contextKey("subsystem")).(string); ok {
			return name
		}
	}

	if name, ok := subsystem.Load().(string); ok {
		return name
	}

	return ""
}

// With returns a new context carrying additional key-value pairs that
// loggers obtained from it will include on every line.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	vals := append(getValues(ctx), values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any { //nolint:contextcheck
	if ctx == nil {
		return nil
	}

	if vals, ok := ctx.Value(contextKey("loggerValues")).([]any); ok {
		return vals
	}

	return nil
}

// hostname holds the pod name in a k8s deployment, or the machine name
// for local development.
// nolint:gochecknoglobals
var hostname = lazy.New[string](func() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return h
})

// GetPodName returns the pod name (or hostname if not running in k8s).
func GetPodName() string {
	return hostname.Get()
}

// nullHandler discards everything; it backs muted contexts.
type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return n }
func (n *nullHandler) WithGroup(_ string) slog.Handler               { return n }

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns a logger for the given context. With no context (or nil),
// a background context is assumed. The logger carries the subsystem, the
// pod name, and any values added via With.
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := ensureContext(ctx...)

	if isMuted(realCtx) {
		return nullLogger
	}

	logger := slog.Default().With(
		"subsystem", GetSubsystem(realCtx),
		"pod", hostname.Get())

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// ensureContext extracts the first non-nil context from a variadic list,
// falling back to context.Background.
func ensureContext(ctx ...context.Context) context.Context {
	for _, c := range ctx {
		if c != nil {
			return c
		}
	}

	return context.Background()
}
