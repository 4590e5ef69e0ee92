package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/bizadmin/app"
)

func traced(tp trace.TracerProvider) decorators[request] {
	return decorators[request]{
		request: func(h app.Request[request, response]) app.Request[request, response] {
			return app.NewTracedRequest(tp, h)
		},
		command: func(h app.Command[request]) app.Command[request] { return app.NewTracedCommand(tp, h) },
		query: func(h app.Query[request, response]) app.Query[request, response] {
			return app.NewTracedQuery(tp, h)
		},
		job: func(h app.Job[request]) app.Job[request] { return app.NewTracedJob(tp, h) },
	}
}

func TestTracingDecorator_H(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			t.Run("success", func(t *testing.T) {
				t.Parallel()

				recorder := tracetest.NewSpanRecorder()
				tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

				err := useCases(traced(tp), succeed[request])[kind](ctx, request{})
				assert.NoError(t, err)

				spans := recorder.Ended()
				require.Len(t, spans, 1)
				assert.Equal(t, "app_test.request", spans[0].Name())
				assert.Equal(t, "bizadmin.application", spans[0].InstrumentationScope().Name)
				assert.Contains(t, spans[0].Attributes(), attribute.String("usecase.kind", kind))
				assert.Equal(t, codes.Unset, spans[0].Status().Code)
			})

			t.Run("failure", func(t *testing.T) {
				t.Parallel()

				recorder := tracetest.NewSpanRecorder()
				tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

				err := useCases(traced(tp), fail[request])[kind](ctx, request{})
				assert.Error(t, err)

				spans := recorder.Ended()
				require.Len(t, spans, 1)
				assert.Equal(t, codes.Error, spans[0].Status().Code)
				assert.Equal(t, "Persistence.Failed", spans[0].Status().Description)
				assert.Len(t, spans[0].Events(), 1, "error is recorded")
			})

			t.Run("span is passed to the use case", func(t *testing.T) {
				t.Parallel()

				recorder := tracetest.NewSpanRecorder()
				tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

				var inner trace.SpanContext

				useCase := func(ctx context.Context, _ request) error {
					inner = trace.SpanContextFromContext(ctx)
					return nil
				}

				err := useCases(traced(tp), useCase)[kind](ctx, request{})
				assert.NoError(t, err)

				require.Len(t, recorder.Ended(), 1)
				assert.Equal(t, recorder.Ended()[0].SpanContext().SpanID(), inner.SpanID())
			})
		})
	}
}
