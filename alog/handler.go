package alog

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(h *handler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *handler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at run time use Unwrap(logger).SetLevel(LevelInfo).
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *handler) {
		l.level.Set(level)
	}
}

// New returns a production ready logger.
//
// If no options are given it creates a default handler, logging JSON to Stderr.
// Otherwise, use WithHandler to set your own handlers.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newHandler(opts...))
}

// NewDevelopment returns a logger ready for local development purposes.
// It logs human-readable text to Stderr at debug level.
func NewDevelopment() *slog.Logger {
	return New(
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(os.Stderr, debugHandlerOptions())),
	)
}

func newHandler(opts ...LoggerOpt) *handler {
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)

	h := &handler{
		handlers: []slog.Handler{},
		level:    level,
	}

	for _, opt := range opts {
		opt(h)
	}

	if len(h.handlers) == 0 {
		h.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, defaultHandlerOptions())}
	}

	return h
}

// handler fans each record out to all handlers.
// Records are enriched with the ids of the active span and the attributes stored in the context,
// and they are recorded as an event on that span.
type handler struct {
	// level is shared by all copies created via WithAttrs and WithGroup.
	// The level of individual handlers set via WithHandler is ignored.
	level *slog.LevelVar

	handlers []slog.Handler
}

var (
	_ slog.Handler = (*handler)(nil)
	_ Leveler      = (*handler)(nil)
)

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	record = addTraceAndSpanIDs(span, record)
	record.AddAttrs(FromContext(ctx)...)

	if span.IsRecording() {
		span.AddEvent("log", trace.WithAttributes(spanAttrs(record)...))

		if record.Level >= slog.LevelError {
			span.SetStatus(codes.Error, record.Message)
		}
	}

	var retErr error

	// the level of the individual handlers is ignored, h.level is the only one deciding
	for _, hh := range h.handlers {
		retErr = errors.Join(retErr, hh.Handle(ctx, record.Clone()))
	}

	return retErr
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))

	for i, hh := range h.handlers {
		handlers[i] = hh.WithAttrs(attrs)
	}

	return &handler{handlers: handlers, level: h.level}
}

func (h *handler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))

	for i, hh := range h.handlers {
		handlers[i] = hh.WithGroup(name)
	}

	return &handler{handlers: handlers, level: h.level}
}

// SetLevel changes the level for all handlers set with WithHandler,
// including the ones derived via any WithX method.
func (h *handler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

func (h *handler) Level() slog.Level {
	return h.level.Level()
}

func addTraceAndSpanIDs(span trace.Span, record slog.Record) slog.Record {
	sCtx := span.SpanContext()

	if sCtx.HasTraceID() {
		record.AddAttrs(slog.String("traceID", sCtx.TraceID().String()))
	}

	if sCtx.HasSpanID() {
		record.AddAttrs(slog.String("spanID", sCtx.SpanID().String()))
	}

	return record
}

func spanAttrs(record slog.Record) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("log.severity", record.Level.String()),
		attribute.String("log.message", record.Message),
	}

	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, attribute.String(a.Key, a.Value.String()))

		return true
	})

	return attrs
}

// Leveler offers control over the level of a logger at run time.
// Unwrap a logger to get access to it.
type Leveler interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

// Unwrap returns the Leveler of logger.
// In case the logger was not created by this package, it returns nil.
func Unwrap(logger Logger) Leveler { //nolint:ireturn // TestLogger and handler both need to be returned
	if l, ok := logger.(*TestLogger); ok {
		return l
	}

	sl, ok := logger.(*slog.Logger)
	if !ok {
		return nil
	}

	if h, ok := sl.Handler().(*handler); ok {
		return h
	}

	return nil
}

func defaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: true,
		// lowest possible level, so the handler's level decides alone
		Level:       slog.Level(-128),
		ReplaceAttr: MapLogLevelsToName,
	}
}

// debugHandlerOptions keeps the output readable, by removing not essential keys.
func debugHandlerOptions() *slog.HandlerOptions {
	opt := defaultHandlerOptions()
	opt.AddSource = false

	return opt
}
