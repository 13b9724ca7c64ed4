package timeout

import "log/slog"

type options struct {
	name    string
	usePool bool
	log     *slog.Logger
}

// Option customizes a single race.
type Option func(*options)

// WithName labels the race in logs, metrics, and trace spans. Unnamed
// races are reported under "default".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPool runs the work on the shared background worker pool instead
// of a dedicated goroutine.
func WithPool() Option {
	return func(o *options) {
		o.usePool = true
	}
}

// WithLogger routes the race's log lines to the given logger instead of
// the contextual default.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		name: "default",
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
