// Package alog contains the structured logger used across bizadmin.
// It builds on log/slog and adds trace correlation, request scoped attributes
// and a logger for unit tests.
package alog

import (
	"context"
	"log/slog"
)

// Logger interface is a subset of slog.Logger, with the aim to:
//  1. encourage the use of the methods offering context.Context, so that tracing information can be correlated.
//  2. encourage the use of the levels `DEBUG` and `INFO` over others, but without preventing them, see:
//     https://dave.cheney.net/2015/11/05/lets-talk-about-logging
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
}

var _ Logger = (*slog.Logger)(nil)

const (
	// LevelInfo is used to see what is going on inside the framework parts of bizadmin.
	LevelInfo = slog.Level(-8)

	// LevelDebug is used by bizadmin developers, if you really want to know what is going on.
	LevelDebug = slog.Level(-12)
)

// MapLogLevelsToName replaces the default name of a custom log level with a speaking name.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.LevelKey {
		level, _ := attr.Value.Any().(slog.Level)

		levelLabel, exists := levelNames()[level]
		if !exists {
			levelLabel = level.String()
		}

		attr.Value = slog.StringValue(levelLabel)
	}

	return attr
}

func levelNames() map[slog.Leveler]string {
	return map[slog.Leveler]string{
		LevelInfo:  "BIZADMIN:INFO",
		LevelDebug: "BIZADMIN:DEBUG",
	}
}

// Error is a convenience attribute for logging errors under a common key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "")
	}

	return slog.String("err", err.Error())
}
