// Package models defines the core data structures for the meili_admin application.
package models

import (
	"time"
)

// ImmutableConfig holds configuration values that are fixed after
// initialization. It is created from a validated Config and cannot be
// modified afterwards, so components reading it need no synchronization.
//
// Design rationale:
// - Separates mutable YAML parsing (Config) from immutable runtime use
// - Guarantees thread-safety: no locking needed for reads
// - Makes dependencies explicit: components declare they need finalized config
type ImmutableConfig struct {
	// Meilisearch connection settings
	baseURL            string
	apiKey             string
	clientTimeout      time.Duration
	insecureSkipVerify bool

	// Exporter server settings
	serverAddress    string
	metricsURI       string
	scrapingInterval time.Duration
	logName          string

	// OpenTelemetry settings
	otelEnabled      bool
	otelEndpoint     string
	otelInsecure     bool
	otelSamplingRate float64
}

// NewImmutableConfig creates an ImmutableConfig from a validated Config.
// This should be called after Config.Validate() has passed and all config
// mutations are complete.
//
// Returns an error if a duration field cannot be parsed.
func NewImmutableConfig(cfg *Config) (ImmutableConfig, error) {
	scrapingDuration, err := cfg.GetScrapingDuration()
	if err != nil {
		return ImmutableConfig{}, err
	}

	clientTimeout, err := cfg.GetClientTimeout()
	if err != nil {
		return ImmutableConfig{}, err
	}

	return ImmutableConfig{
		baseURL:            cfg.GetMeiliBaseURL(),
		apiKey:             cfg.MeiliServer.APIKey,
		clientTimeout:      clientTimeout,
		insecureSkipVerify: cfg.MeiliServer.InsecureSkipVerify,

		serverAddress:    cfg.GetServerAddress(),
		metricsURI:       cfg.Server.URI,
		scrapingInterval: scrapingDuration,
		logName:          cfg.Server.LogName,

		otelEnabled:      cfg.OpenTelemetry.Enabled,
		otelEndpoint:     cfg.OpenTelemetry.Endpoint,
		otelInsecure:     cfg.OpenTelemetry.Insecure,
		otelSamplingRate: cfg.OpenTelemetry.SamplingRate,
	}, nil
}

// Accessor methods - all return values, not references.

// BaseURL returns the complete Meilisearch base URL.
func (c ImmutableConfig) BaseURL() string {
	return c.baseURL
}

// APIKey returns the Meilisearch API key for authentication.
// SECURITY: Handle with care - do not log this value.
func (c ImmutableConfig) APIKey() string {
	return c.apiKey
}

// ClientTimeout returns the per-request timeout for the API client.
func (c ImmutableConfig) ClientTimeout() time.Duration {
	return c.clientTimeout
}

// InsecureSkipVerify returns whether TLS verification is disabled.
func (c ImmutableConfig) InsecureSkipVerify() bool {
	return c.insecureSkipVerify
}

// ServerAddress returns the HTTP server bind address (host:port).
func (c ImmutableConfig) ServerAddress() string {
	return c.serverAddress
}

// MetricsURI returns the metrics endpoint URI path.
func (c ImmutableConfig) MetricsURI() string {
	return c.metricsURI
}

// ScrapingInterval returns how long instance statistics stay cached
// between Prometheus scrapes.
func (c ImmutableConfig) ScrapingInterval() time.Duration {
	return c.scrapingInterval
}

// LogName returns the log file path.
func (c ImmutableConfig) LogName() string {
	return c.logName
}

// OTelEnabled returns whether OpenTelemetry is enabled.
func (c ImmutableConfig) OTelEnabled() bool {
	return c.otelEnabled
}

// OTelEndpoint returns the OTLP gRPC collector endpoint.
func (c ImmutableConfig) OTelEndpoint() string {
	return c.otelEndpoint
}

// OTelInsecure returns whether the OTLP connection skips TLS.
func (c ImmutableConfig) OTelInsecure() bool {
	return c.otelInsecure
}

// OTelSamplingRate returns the trace sampling rate (0.0 to 1.0).
func (c ImmutableConfig) OTelSamplingRate() float64 {
	return c.otelSamplingRate
}
