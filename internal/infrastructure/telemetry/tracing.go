package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer of application service spans
const TracerName = "github.com/erp/channelsync"

// Attribute keys shared by service spans and sync metrics
const (
	AttrOrderID        = attribute.Key("order.id")
	AttrFromStatus     = attribute.Key("order.status.from")
	AttrToStatus       = attribute.Key("order.status.to")
	AttrExternalStatus = attribute.Key("channel.external_status")
	AttrAction         = attribute.Key("channel.action")
	AttrBatchSize      = attribute.Key("batch.size")
	AttrBatchStrict    = attribute.Key("batch.strict")
	AttrBatchSucceeded = attribute.Key("batch.succeeded")
	AttrBatchFailed    = attribute.Key("batch.failed")
	AttrOutcome        = attribute.Key("outcome")
)

// StartServiceSpan starts an internal span named "<service>.<method>", e.g.
// "channel_sync.sync". End it with EndSpan.
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}

// EndSpan sets the span status from err and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the trace id of the span carried by ctx, or ""
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
