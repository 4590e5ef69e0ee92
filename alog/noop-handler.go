package alog

import (
	"context"
	"log/slog"
)

// NewNoop returns a logger discarding everything, for dependencies whose output does not matter.
func NewNoop() *slog.Logger {
	return slog.New(discard{})
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
