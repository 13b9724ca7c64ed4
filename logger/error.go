package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// AnnotateError attaches slog key-value pairs to an error at the point
// where the context is known. When the error is later logged through a
// logger configured by this package, the attached attributes are lifted
// into the log record. Returns nil if err is nil.
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	record := slog.NewRecord(time.Now(), slog.LevelDebug, "", 0)
	record.Add(args...)

	var attrs []slog.Attr

	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)

		return true
	})

	return &annotatedError{
		err:   err,
		attrs: attrs,
	}
}

// annotatedError pairs an error with structured logging attributes.
// It supports unwrapping, so errors.Is and errors.As see through it.
type annotatedError struct {
	err   error
	attrs []slog.Attr
}

var _ error = (*annotatedError)(nil)

func (a *annotatedError) Error() string {
	return a.err.Error()
}

func (a *annotatedError) Unwrap() error {
	return a.err
}

// errorAttrHandler is a slog.Handler decorator that hoists attributes
// out of annotated errors into the record being logged, replacing the
// error attribute with the bare underlying error.
type errorAttrHandler struct {
	inner slog.Handler
}

var _ slog.Handler = (*errorAttrHandler)(nil)

func (h *errorAttrHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *errorAttrHandler) Handle(ctx context.Context, record slog.Record) error {
	var (
		baseAttrs []slog.Attr
		errAttrs  []slog.Attr
	)

	record.Attrs(func(attr slog.Attr) bool {
		if err, ok := attr.Value.Any().(error); ok {
			var annotated *annotatedError

			if errors.As(err, &annotated) {
				baseAttrs = append(baseAttrs, slog.Attr{
					Key:   attr.Key,
					Value: slog.AnyValue(annotated.err),
				})
				errAttrs = append(errAttrs, annotated.attrs...)

				return true
			}
		}

		baseAttrs = append(baseAttrs, attr)

		return true
	})

	if len(errAttrs) == 0 {
		return h.inner.Handle(ctx, record)
	}

	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	out.AddAttrs(baseAttrs...)
	out.AddAttrs(errAttrs...)

	return h.inner.Handle(ctx, out)
}

func (h *errorAttrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorAttrHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *errorAttrHandler) WithGroup(name string) slog.Handler {
	return &errorAttrHandler{inner: h.inner.WithGroup(name)}
}
