// Package telemetry wires OpenTelemetry tracing into the billing
// services and exposes the span helpers they use.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by the application layer.
const TracerName = "meterly-backend"

// Span attribute keys shared by the billing services so traces stay
// queryable under a consistent vocabulary.
const (
	SpanAttrCustomerID   = "customer.id"
	SpanAttrCustomerName = "customer.name"
	SpanAttrAmount       = "billing.amount"
	SpanAttrBalance      = "billing.balance"
	SpanAttrDebitStatus  = "billing.debit_status"
	SpanAttrRunTotal     = "billing.run_total"
	SpanAttrRunFailed    = "billing.run_failed"
)

// SpanOption configures a span at creation time.
type SpanOption func(*spanConfig)

type spanConfig struct {
	attributes []attribute.KeyValue
	spanKind   trace.SpanKind
}

// WithAttribute records a key/value pair on the new span.
func WithAttribute(key string, value interface{}) SpanOption {
	return func(cfg *spanConfig) {
		cfg.attributes = append(cfg.attributes, toAttribute(key, value))
	}
}

// WithSpanKind overrides the default internal span kind.
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(cfg *spanConfig) {
		cfg.spanKind = kind
	}
}

// StartSpan starts a span under the global tracer provider. When
// tracing is disabled the provider is a no-op and the returned span
// costs nothing, so callers never guard the call.
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	cfg := &spanConfig{spanKind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name,
		trace.WithSpanKind(cfg.spanKind),
		trace.WithAttributes(cfg.attributes...),
	)
}

// StartServiceSpan starts a span named "{service}.{method}" for an
// application service operation.
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, method), opts...)
}

// SetAttributes records key/value pairs on span. Pairs are given as
// alternating key, value arguments; a trailing key without a value is
// dropped.
func SetAttributes(span trace.Span, kv ...interface{}) {
	if span == nil || !span.IsRecording() {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		span.SetAttributes(toAttribute(key, kv[i+1]))
	}
}

// RecordError records err on span and marks the span failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the hex trace ID of the current span, or "" when
// the context carries none. Request logs use it to link log lines to
// traces.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// GetSpanID returns the hex span ID of the current span, or "".
func GetSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
