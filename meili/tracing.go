package meili

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys recorded by the client. Centralized constants prevent
// typos across call sites.
const (
	attrHTTPMethod                = "http.method"
	attrHTTPURL                   = "http.url"
	attrHTTPStatusCode            = "http.status_code"
	attrHTTPRequestContentLength  = "http.request_content_length"
	attrHTTPResponseContentLength = "http.response_content_length"
	attrHTTPDurationMS            = "http.duration_ms"
	attrError                     = "error"
)

// TracerWrapper wraps an OpenTelemetry tracer so that callers never have to
// check whether tracing is enabled. When constructed with a nil provider it
// falls back to a noop tracer, so StartSpan always returns a usable span.
type TracerWrapper struct {
	tracer trace.Tracer
}

// NewTracerWrapper creates a TracerWrapper for the given provider and
// instrumentation name. A nil provider yields a noop tracer.
func NewTracerWrapper(tp trace.TracerProvider, name string) *TracerWrapper {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &TracerWrapper{tracer: tp.Tracer(name)}
}

// StartSpan starts a span with the given operation name and span kind.
// Safe to call on a nil wrapper.
func (w *TracerWrapper) StartSpan(ctx context.Context, operation string, kind trace.SpanKind) (context.Context, trace.Span) {
	if w == nil || w.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, operation)
	}
	return w.tracer.Start(ctx, operation, trace.WithSpanKind(kind))
}
