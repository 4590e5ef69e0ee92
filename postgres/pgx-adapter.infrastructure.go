package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ctx2 "github.com/go-arrower/bizadmin/ctx"
)

const spanKey ctx2.CTXKey = "bizadmin.pgx.span"

var _ pgx.QueryTracer = (*pgxTraceAdapter)(nil)

// pgxTraceAdapter records a span for each query.
type pgxTraceAdapter struct {
	tracer trace.Tracer
}

func (p *pgxTraceAdapter) TraceQueryStart(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	ctx, span := p.tracer.Start(ctx, "pgx", //nolint:spancheck // ended in TraceQueryEnd
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.name", conn.Config().Database),
			attribute.String("db.user", conn.Config().User),
			attribute.String("server.address", conn.Config().Host),
			attribute.Int("server.port", int(conn.Config().Port)),
			attribute.String("db.statement", data.SQL),
			attribute.StringSlice("db.statement.args", anySliceToStrings(data.Args)),
		))

	return context.WithValue(ctx, spanKey, span)
}

func (p *pgxTraceAdapter) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(spanKey).(trace.Span)
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))

	if data.Err != nil {
		span.SetStatus(codes.Error, data.Err.Error())
	}

	span.End()
}

func anySliceToStrings(in []any) []string {
	s := make([]string, len(in))

	for i, v := range in {
		s[i] = fmt.Sprintf("%v", v)
	}

	return s
}
