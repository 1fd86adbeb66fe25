package tracker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for store spans.
const TracerName = "github.com/viant/changetrack/tracker"

// Span attribute keys.
const (
	AttrDBSystem  = attribute.Key("db.system")
	AttrDBTable   = attribute.Key("db.sql.table")
	AttrNamespace = attribute.Key("changetrack.namespace")
	AttrRecordID  = attribute.Key("changetrack.id")
	AttrFound     = attribute.Key("changetrack.found")
)

// startSpan starts a span for a store operation. With no tracer configured it
// returns the no-op span already carried by ctx.
func (s *SQLStore) startSpan(ctx context.Context, name, namespace, id string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrDBSystem.String(s.dialect.System()),
			AttrDBTable.String(s.table),
			AttrNamespace.String(namespace),
			AttrRecordID.String(id),
		),
	)
}

// recordError marks the span failed. The status text stays generic so SQL
// and connection details do not leak into trace status; the error itself is
// attached as a span event.
func recordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
