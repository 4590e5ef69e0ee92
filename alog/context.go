package alog

import (
	"context"
	"log/slog"

	"github.com/go-arrower/bizadmin/ctx"
)

const ctxAttr ctx.CTXKey = "alog.attr"

// AddAttr adds a single attribute to ctx. All attributes in ctx will be logged,
// if the logger is called with a context, e.g. InfoContext.
func AddAttr(ctx context.Context, attr slog.Attr) context.Context {
	return AddAttrs(ctx, attr)
}

// AddAttrs adds multiple attributes to ctx.
func AddAttrs(ctx context.Context, newAttrs ...slog.Attr) context.Context {
	attrs := FromContext(ctx)

	// copy, so that contexts derived from the same parent do not share the backing array
	merged := make([]slog.Attr, 0, len(attrs)+len(newAttrs))
	merged = append(merged, attrs...)
	merged = append(merged, newAttrs...)

	return context.WithValue(ctx, ctxAttr, merged)
}

// ClearAttrs removes all attributes from ctx.
func ClearAttrs(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxAttr, []slog.Attr{})
}

// FromContext returns all attributes stored in ctx. It is never nil.
func FromContext(ctx context.Context) []slog.Attr {
	if attrs, ok := ctx.Value(ctxAttr).([]slog.Attr); ok {
		return attrs
	}

	return []slog.Attr{}
}
