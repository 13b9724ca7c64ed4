// Package envutil reads typed configuration values from environment
// variables. Readers carry the raw lookup result plus any parse error, so
// callers decide at the end whether a missing or malformed value is fatal,
// defaulted, or surfaced.
package envutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Reader holds the outcome of reading a single environment variable.
type Reader[T any] struct {
	key     string
	present bool
	value   T
	err     error
}

// Option post-processes a Reader, e.g. to supply a default.
type Option[T any] func(Reader[T]) Reader[T]

// Default supplies a fallback used when the variable is absent.
// Parse errors are not masked by a default.
func Default[T any](fallback T) Option[T] {
	return func(r Reader[T]) Reader[T] {
		if !r.present && r.err == nil {
			r.value = fallback
			r.present = true
		}

		return r
	}
}

// Key returns the environment variable name this reader was built from.
func (r Reader[T]) Key() string {
	return r.key
}

// Present reports whether the variable was set (or defaulted).
func (r Reader[T]) Present() bool {
	return r.present
}

// Value returns the parsed value, or an error when the variable is
// missing or failed to parse.
func (r Reader[T]) Value() (T, error) { //nolint:ireturn
	var zero T

	if r.err != nil {
		return zero, r.err
	}

	if !r.present {
		return zero, fmt.Errorf("%w: %s", ErrMissing, r.key)
	}

	return r.value, nil
}

// ValueOrElse returns the parsed value, or the fallback when the variable
// is missing or malformed.
func (r Reader[T]) ValueOrElse(fallback T) T { //nolint:ireturn
	if r.err != nil || !r.present {
		return fallback
	}

	return r.value
}

// ErrMissing indicates the environment variable was not set and no
// default was provided.
var ErrMissing = errors.New("environment variable not set")

// String reads a string variable.
func String(key string, opts ...Option[string]) Reader[string] {
	value, ok := os.LookupEnv(key)

	return apply(Reader[string]{key: key, present: ok, value: value}, opts)
}

// Bool reads a boolean variable using strconv.ParseBool semantics.
func Bool(key string, opts ...Option[bool]) Reader[bool] {
	return apply(parse(key, strconv.ParseBool), opts)
}

// Int reads an integer variable.
func Int(key string, opts ...Option[int]) Reader[int] {
	return apply(parse(key, strconv.Atoi), opts)
}

// Duration reads a time.Duration variable in time.ParseDuration notation.
func Duration(key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(parse(key, time.ParseDuration), opts)
}

// Level reads a slog.Level variable ("debug", "info", "warn", "error").
func Level(key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	return apply(parse(key, func(raw string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(raw))

		return level, err
	}), opts)
}

// parse looks up key and runs the raw value through conv.
func parse[T any](key string, conv func(string) (T, error)) Reader[T] {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return Reader[T]{key: key}
	}

	value, err := conv(raw)
	if err != nil {
		return Reader[T]{
			key:     key,
			present: true,
			err:     fmt.Errorf("parsing %s=%q: %w", key, raw, err),
		}
	}

	return Reader[T]{key: key, present: true, value: value}
}

func apply[T any](r Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		r = opt(r)
	}

	return r
}
