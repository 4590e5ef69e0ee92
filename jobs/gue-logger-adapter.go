package jobs

import (
	"context"
	"log/slog"

	"github.com/vgarvardt/gue/v5/adapter"

	"github.com/go-arrower/bizadmin/alog"
)

// gueLogAdapter maps the gue log levels to the ones of alog.
// gue is chatty, so its info messages go to BIZADMIN:DEBUG and its errors to BIZADMIN:INFO.
type gueLogAdapter struct {
	l     alog.Logger
	attrs []slog.Attr
}

var _ adapter.Logger = (*gueLogAdapter)(nil)

func (l *gueLogAdapter) Debug(msg string, fields ...adapter.Field) {
	l.l.LogAttrs(context.Background(), alog.LevelDebug, msg, l.withFields(fields)...)
}

func (l *gueLogAdapter) Info(msg string, fields ...adapter.Field) {
	l.l.LogAttrs(context.Background(), alog.LevelDebug, msg, l.withFields(fields)...)
}

func (l *gueLogAdapter) Error(msg string, fields ...adapter.Field) {
	l.l.LogAttrs(context.Background(), alog.LevelInfo, msg, l.withFields(fields)...)
}

func (l *gueLogAdapter) With(fields ...adapter.Field) adapter.Logger { //nolint:ireturn // required by adapter.Logger
	return &gueLogAdapter{l: l.l, attrs: l.withFields(fields)}
}

func (l *gueLogAdapter) withFields(fields []adapter.Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.attrs)+len(fields))
	attrs = append(attrs, l.attrs...)

	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}

	return attrs
}
