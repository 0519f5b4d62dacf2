// Package meili implements a typed client for the Meilisearch HTTP API.
// It covers index lifecycle management, dump triggering and instance
// statistics, mapping the remote error envelope onto typed Go errors.
//
// The client is a thin binding: every operation is a single HTTP call with
// a fixed URL template, no retries, and no state beyond the immutable
// connection configuration shared by all handlers and entities.
package meili

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 1 * time.Minute    // Default timeout for HTTP requests
	contentType    = "application/json" // Content type for request bodies
)

// HTTP header names used in Meilisearch API requests.
const (
	HeaderContentType = "Content-Type"    // Set when a request carries a JSON body
	HeaderAPIKey      = "X-Meili-API-Key" // Authorization header carrying the API key
)

// ClientConfig holds the connection settings for a Meilisearch instance.
// It is an immutable value: it is copied into the client at construction
// and never mutated by any operation, which makes it safe to share across
// every handler and entity.
type ClientConfig struct {
	// Host is the base URL of the Meilisearch instance, e.g. "http://localhost:7700".
	Host string

	// APIKey is sent in the X-Meili-API-Key header on every request.
	// SECURITY: never log this value.
	APIKey string

	// Timeout bounds each HTTP request. Zero means the default of 1 minute.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// ClientOption configures optional Client settings.
type ClientOption func(*clientOptions)

type clientOptions struct {
	tracerProvider trace.TracerProvider
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		tracerProvider: nil, // Will use noop via TracerWrapper
	}
}

// WithTracerProvider sets the TracerProvider for distributed tracing.
// If not provided, tracing operations use a noop provider (no overhead).
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(o *clientOptions) {
		o.tracerProvider = tp
	}
}

// Client handles HTTP communication with the Meilisearch API. All resource
// operations (indexes, dumps, instance statistics) are methods on Client and
// funnel through a single dispatcher that attaches authentication, performs
// the request and maps failures onto the typed error taxonomy.
type Client struct {
	http    *resty.Client  // HTTP client with TLS and timeout configuration
	cfg     ClientConfig   // Immutable connection configuration
	tracing *TracerWrapper // Nil-safe OpenTelemetry tracer wrapper
}

// NewClient creates a new Meilisearch API client with the provided
// connection configuration. A TracerProvider can be injected via
// WithTracerProvider for distributed tracing.
//
// Example:
//
//	client := meili.NewClient(meili.ClientConfig{
//	    Host:   "http://localhost:7700",
//	    APIKey: "masterKey",
//	})
func NewClient(cfg ClientConfig, opts ...ClientOption) *Client {
	options := defaultClientOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.InsecureSkipVerify {
		log.Error("SECURITY WARNING: TLS certificate verification disabled - this is insecure for production use")
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		})

	return &Client{
		http:    httpClient,
		cfg:     cfg,
		tracing: NewTracerWrapper(options.tracerProvider, "meili_admin/http-client"),
	}
}

// Config returns a copy of the client's connection configuration.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

// execute builds and sends a single HTTP request against the configured
// instance and returns the raw response body.
//
// Failure mapping:
//   - network-level failure (connection refused, timeout, DNS) -> *CommunicationError
//   - non-2xx with a parseable error envelope -> *APIError
//   - non-2xx with an unparseable body -> *TransportError
//
// No retries are performed; every failure surfaces immediately.
func (c *Client) execute(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	url := c.cfg.Host + path

	ctx, span := c.tracing.StartSpan(ctx, "http.request", trace.SpanKindClient)
	defer span.End()

	startTime := time.Now()

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(c.injectTraceContext(ctx, c.headers()))

	requestSize := int64(0)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.recordError(span, err)
			return nil, err
		}
		requestSize = int64(len(payload))
		req.SetHeader(HeaderContentType, contentType).SetBody(payload)
	}

	resp, err := req.Execute(method, url)
	duration := time.Since(startTime)

	if err != nil {
		commErr := &CommunicationError{URL: url, Err: err}
		c.recordError(span, commErr)
		return nil, commErr
	}

	c.recordHTTPAttributes(span, method, url, resp.StatusCode(), requestSize, int64(len(resp.Body())), duration)

	if resp.IsError() {
		apiErr := errorFromResponse(resp.StatusCode(), resp.Body())
		c.recordError(span, apiErr)
		return nil, apiErr
	}

	span.SetStatus(codes.Ok, "Request completed successfully")
	return resp.Body(), nil
}

// headers returns the standard headers attached to every request.
//
// SECURITY: the API key is included in the X-Meili-API-Key header. This
// value should never be logged or included in error messages.
func (c *Client) headers() map[string]string {
	return map[string]string{
		HeaderAPIKey: c.cfg.APIKey,
	}
}

// recordHTTPAttributes records HTTP semantic convention attributes on the span.
func (c *Client) recordHTTPAttributes(span trace.Span, method, url string, statusCode int, requestSize, responseSize int64, duration time.Duration) {
	if span == nil {
		return
	}

	span.SetAttributes(
		attribute.String(attrHTTPMethod, method),
		attribute.String(attrHTTPURL, url),
		attribute.Int(attrHTTPStatusCode, statusCode),
		attribute.Int64(attrHTTPRequestContentLength, requestSize),
		attribute.Int64(attrHTTPResponseContentLength, responseSize),
		attribute.Float64(attrHTTPDurationMS, float64(duration.Milliseconds())),
	)
}

// recordError records an error on the span and sets the span status to error.
func (c *Client) recordError(span trace.Span, err error) {
	if span == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(attrError, err.Error()))
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() error {
	if c.http != nil {
		c.http.GetClient().CloseIdleConnections()
	}
	return nil
}

// injectTraceContext injects W3C Trace Context into the request headers so
// traces propagate across service boundaries.
func (c *Client) injectTraceContext(ctx context.Context, headers map[string]string) map[string]string {
	carrier := propagation.MapCarrier{}
	for k, v := range headers {
		carrier.Set(k, v)
	}

	otel.GetTextMapPropagator().Inject(ctx, carrier)

	result := make(map[string]string, len(carrier))
	for k, v := range carrier {
		result[k] = v
	}
	return result
}
