package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// stacktraceHandler decorates records whose attributes carry a
// cockroachdb/errors value with the stack trace captured at the error's
// origin, so JSON output stays greppable without %+v formatting.
type stacktraceHandler struct {
	next slog.Handler
}

// WithStacktraces wraps a slog handler so that any error-valued attribute on
// a record gets a companion stacktrace attribute. The first error with
// captured stack details wins; records without one pass through untouched.
func WithStacktraces(next slog.Handler) slog.Handler {
	return &stacktraceHandler{next: next}
}

func (h *stacktraceHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *stacktraceHandler) Handle(ctx context.Context, r slog.Record) error {
	var trace string
	r.Attrs(func(attr slog.Attr) bool {
		trace = stackFromValue(attr.Value)
		return trace == ""
	})
	if trace != "" {
		r = r.Clone()
		r.AddAttrs(slog.String(StacktraceAttrKey, trace))
	}
	return h.next.Handle(ctx, r)
}

func (h *stacktraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stacktraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *stacktraceHandler) WithGroup(g string) slog.Handler {
	return &stacktraceHandler{next: h.next.WithGroup(g)}
}

// stackFromValue returns the origin stack trace when v holds an error that
// captured one, descending into attribute groups.
func stackFromValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindGroup:
		for _, a := range v.Group() {
			if trace := stackFromValue(a.Value); trace != "" {
				return trace
			}
		}
	case slog.KindAny:
		err, ok := v.Any().(error)
		if !ok {
			return ""
		}
		details := errors.GetSafeDetails(err).SafeDetails
		if len(details) > 0 {
			return details[0]
		}
	}
	return ""
}
