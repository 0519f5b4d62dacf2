// Package models defines the core data structures for the meili_admin
// application. It includes the YAML configuration model shared by the CLI
// and the Prometheus exporter.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fjacquet/meili_admin/meili"
)

// Default values applied by SetDefaults for optional fields.
const (
	defaultScheme           = "http"
	defaultMetricsURI       = "/metrics"
	defaultScrapingInterval = "1m"
	defaultClientTimeout    = "1m"
)

// Config represents the complete application configuration for meili_admin.
// It includes settings for the exporter HTTP server, the Meilisearch
// instance, and OpenTelemetry tracing.
type Config struct {
	Server struct {
		Port             string `yaml:"port"`
		Host             string `yaml:"host"`
		URI              string `yaml:"uri"`
		ScrapingInterval string `yaml:"scrapingInterval"`
		LogName          string `yaml:"logName"`
	} `yaml:"server"`

	MeiliServer struct {
		Scheme             string `yaml:"scheme"`
		Host               string `yaml:"host"`
		Port               string `yaml:"port"`
		APIKey             string `yaml:"apiKey"`
		Timeout            string `yaml:"timeout"`
		InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	} `yaml:"meiliserver"`

	OpenTelemetry struct {
		Enabled      bool    `yaml:"enabled"`
		Endpoint     string  `yaml:"endpoint"`
		Insecure     bool    `yaml:"insecure"`
		SamplingRate float64 `yaml:"samplingRate"`
	} `yaml:"opentelemetry"`
}

// SetDefaults sets default values for optional configuration fields.
// This method is called automatically by Validate() before validation checks.
func (c *Config) SetDefaults() {
	if c.MeiliServer.Scheme == "" {
		c.MeiliServer.Scheme = defaultScheme
	}
	if c.MeiliServer.Timeout == "" {
		c.MeiliServer.Timeout = defaultClientTimeout
	}
	if c.Server.URI == "" {
		c.Server.URI = defaultMetricsURI
	}
	if c.Server.ScrapingInterval == "" {
		c.Server.ScrapingInterval = defaultScrapingInterval
	}
}

// Validate checks if the configuration is valid and returns an error if not.
// It validates the exporter server settings (host, port, URI, scraping
// interval) and the Meilisearch server settings (host, port, scheme, API
// key, client timeout). SetDefaults() is applied before validation so
// optional fields get appropriate values.
//
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	c.SetDefaults()

	// Validate exporter server configuration
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}
	if c.Server.Host == "" {
		return errors.New("server host is required")
	}
	if _, err := time.ParseDuration(c.Server.ScrapingInterval); err != nil {
		return fmt.Errorf("invalid scraping interval: %w", err)
	}

	// Validate Meilisearch server configuration
	if c.MeiliServer.Host == "" {
		return errors.New("meilisearch host is required")
	}
	if c.MeiliServer.Port == "" {
		return errors.New("meilisearch port is required")
	}
	if port, err := strconv.Atoi(c.MeiliServer.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid meilisearch port: %s", c.MeiliServer.Port)
	}
	if c.MeiliServer.Scheme != "http" && c.MeiliServer.Scheme != "https" {
		return fmt.Errorf("invalid meilisearch scheme: %s (must be http or https)", c.MeiliServer.Scheme)
	}
	if _, err := time.ParseDuration(c.MeiliServer.Timeout); err != nil {
		return fmt.Errorf("invalid meilisearch client timeout: %w", err)
	}

	return nil
}

// GetMeiliBaseURL returns the complete base URL for the Meilisearch instance.
// Format: scheme://host:port
//
// Example: "http://meili.example.com:7700"
func (c *Config) GetMeiliBaseURL() string {
	return fmt.Sprintf("%s://%s:%s", c.MeiliServer.Scheme, c.MeiliServer.Host, c.MeiliServer.Port)
}

// GetServerAddress returns the complete server address for HTTP server binding.
// Format: host:port
//
// Example: "0.0.0.0:2112"
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetScrapingDuration parses and returns the scraping interval as a
// time.Duration. The scraping interval bounds how often the exporter hits
// the /stats endpoint; scrapes in between are served from cache.
func (c *Config) GetScrapingDuration() (time.Duration, error) {
	return time.ParseDuration(c.Server.ScrapingInterval)
}

// GetClientTimeout parses and returns the Meilisearch client timeout.
func (c *Config) GetClientTimeout() (time.Duration, error) {
	return time.ParseDuration(c.MeiliServer.Timeout)
}

// ClientConfig builds the immutable connection configuration for the
// Meilisearch client from the validated application configuration.
func (c *Config) ClientConfig() (meili.ClientConfig, error) {
	timeout, err := c.GetClientTimeout()
	if err != nil {
		return meili.ClientConfig{}, err
	}

	return meili.ClientConfig{
		Host:               c.GetMeiliBaseURL(),
		APIKey:             c.MeiliServer.APIKey,
		Timeout:            timeout,
		InsecureSkipVerify: c.MeiliServer.InsecureSkipVerify,
	}, nil
}

// IsOTelEnabled returns whether OpenTelemetry tracing is enabled.
func (c *Config) IsOTelEnabled() bool {
	return c.OpenTelemetry.Enabled
}

// MaskAPIKey returns a masked version of the API key for safe logging.
// Shows the first 4 and last 4 characters with asterisks in between.
//
// Example: "abcd1234efgh5678" -> "abcd****5678"
//
// For keys shorter than 8 characters, returns "****".
func (c *Config) MaskAPIKey() string {
	if len(c.MeiliServer.APIKey) <= 8 {
		return "****"
	}
	return c.MeiliServer.APIKey[:4] + "****" + c.MeiliServer.APIKey[len(c.MeiliServer.APIKey)-4:]
}
