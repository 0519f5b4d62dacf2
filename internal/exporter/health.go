// Package exporter provides health check functionality for the Meilisearch exporter.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjacquet/meili_admin/internal/telemetry"
	"github.com/fjacquet/meili_admin/meili"
)

// healthCheckTimeout is the default timeout for connectivity tests.
const healthCheckTimeout = 5 * time.Second

// TestConnectivity verifies the Meilisearch instance is reachable. It uses
// the lightweight /health endpoint with a short timeout, which validates
// both connectivity and TLS settings without touching any server state.
// Common failures are mapped onto actionable messages with troubleshooting
// steps.
//
// Example:
//
//	if err := collector.TestConnectivity(ctx); err != nil {
//	    log.Warnf("Meilisearch connectivity failed: %v", err)
//	}
func (c *MeiliCollector) TestConnectivity(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
	}

	err := c.client.Health(ctx)
	if err == nil {
		return nil
	}

	if meili.IsAPIErrorCode(err, "invalid_token") {
		return fmt.Errorf(telemetry.ErrInvalidAPIKeyTemplate, c.icfg.BaseURL())
	}

	var commErr *meili.CommunicationError
	if errors.As(err, &commErr) {
		return fmt.Errorf(telemetry.ErrUnreachableTemplate, c.icfg.BaseURL(), commErr.Err)
	}

	return fmt.Errorf("meilisearch connectivity test failed: %w", err)
}

// IsHealthy returns true if statistics were collected recently, within two
// cache TTL intervals of now. This is a quick check that makes no API call.
func (c *MeiliCollector) IsHealthy() bool {
	last := c.statsCache.LastCollectionTime()
	if last.IsZero() {
		return false
	}
	return time.Since(last) < 2*c.statsCache.ttl
}
