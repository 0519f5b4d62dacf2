// Package exporter implements the Prometheus Collector interface for
// Meilisearch metrics. It collects instance and per-index statistics
// through the API client and exposes them in Prometheus format.
package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fjacquet/meili_admin/internal/logging"
	"github.com/fjacquet/meili_admin/internal/models"
	"github.com/fjacquet/meili_admin/internal/telemetry"
	"github.com/fjacquet/meili_admin/meili"
)

const collectionTimeout = 2 * time.Minute // Maximum time allowed for metric collection

// CollectorOption configures optional MeiliCollector settings.
type CollectorOption func(*collectorOptions)

type collectorOptions struct {
	tracerProvider trace.TracerProvider
	client         meili.APIClient
}

func defaultCollectorOptions() collectorOptions {
	return collectorOptions{
		tracerProvider: nil, // Will use noop via TracerWrapper
	}
}

// WithCollectorTracerProvider sets the TracerProvider for the collector.
// If not provided, tracing operations use a noop provider (no overhead).
func WithCollectorTracerProvider(tp trace.TracerProvider) CollectorOption {
	return func(o *collectorOptions) {
		o.tracerProvider = tp
	}
}

// WithCollectorClient injects a pre-built API client. Used by tests to
// substitute a mock for the HTTP client.
func WithCollectorClient(client meili.APIClient) CollectorOption {
	return func(o *collectorOptions) {
		o.client = client
	}
}

// MeiliCollector implements the Prometheus Collector interface for
// Meilisearch metrics. On each scrape it checks instance health, reads the
// build version, and collects instance-wide and per-index statistics
// (served from a TTL cache between collections).
//
// Exposed metrics:
//   - meili_up: whether the instance answered the health check
//   - meili_database_size_bytes: total database size on disk
//   - meili_index_documents: document count per index (label: index)
//   - meili_index_indexing: whether an index is currently indexing (label: index)
//   - meili_response_time_ms: scrape round-trip time in milliseconds
//   - meili_version_info: instance build info (labels: version, commit)
type MeiliCollector struct {
	icfg       models.ImmutableConfig
	client     meili.APIClient
	tracing    *meili.TracerWrapper
	statsCache *StatsCache

	meiliUp             *prometheus.Desc
	meiliDatabaseSize   *prometheus.Desc
	meiliIndexDocuments *prometheus.Desc
	meiliIndexIndexing  *prometheus.Desc
	meiliResponseTime   *prometheus.Desc
	meiliVersionInfo    *prometheus.Desc
}

// NewMeiliCollector creates a new Meilisearch collector from finalized
// configuration. The API client is built from the immutable config unless
// one is injected via WithCollectorClient.
//
// Example:
//
//	icfg, _ := models.NewImmutableConfig(cfg)
//	collector := exporter.NewMeiliCollector(icfg, exporter.WithCollectorTracerProvider(tp))
//	prometheus.MustRegister(collector)
func NewMeiliCollector(icfg models.ImmutableConfig, opts ...CollectorOption) *MeiliCollector {
	options := defaultCollectorOptions()
	for _, opt := range opts {
		opt(&options)
	}

	client := options.client
	if client == nil {
		client = meili.NewClient(meili.ClientConfig{
			Host:               icfg.BaseURL(),
			APIKey:             icfg.APIKey(),
			Timeout:            icfg.ClientTimeout(),
			InsecureSkipVerify: icfg.InsecureSkipVerify(),
		}, meili.WithTracerProvider(options.tracerProvider))
	}

	return &MeiliCollector{
		icfg:       icfg,
		client:     client,
		tracing:    meili.NewTracerWrapper(options.tracerProvider, "meili_admin/collector"),
		statsCache: NewStatsCache(icfg.ScrapingInterval()),
		meiliUp: prometheus.NewDesc(
			"meili_up",
			"Whether the Meilisearch instance answered the health check",
			nil, nil,
		),
		meiliDatabaseSize: prometheus.NewDesc(
			"meili_database_size_bytes",
			"Total size of the Meilisearch database on disk",
			nil, nil,
		),
		meiliIndexDocuments: prometheus.NewDesc(
			"meili_index_documents",
			"Number of documents per index",
			[]string{"index"}, nil,
		),
		meiliIndexIndexing: prometheus.NewDesc(
			"meili_index_indexing",
			"Whether the index is currently processing documents",
			[]string{"index"}, nil,
		),
		meiliResponseTime: prometheus.NewDesc(
			"meili_response_time_ms",
			"The instance response time in milliseconds",
			nil, nil,
		),
		meiliVersionInfo: prometheus.NewDesc(
			"meili_version_info",
			"Build information of the Meilisearch instance",
			[]string{"version", "commit"}, nil,
		),
	}
}

// Describe sends the descriptors of each metric to the provided channel.
// Required by the prometheus.Collector interface.
func (c *MeiliCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.meiliUp
	ch <- c.meiliDatabaseSize
	ch <- c.meiliIndexDocuments
	ch <- c.meiliIndexIndexing
	ch <- c.meiliResponseTime
	ch <- c.meiliVersionInfo
}

// Collect fetches metrics from the Meilisearch instance on demand when
// Prometheus scrapes the endpoint. Statistics are served from the TTL
// cache between collections to keep scrape load off the instance.
func (c *MeiliCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectionTimeout)
	defer cancel()

	ctx, span := c.tracing.StartSpan(ctx, "prometheus.collect", trace.SpanKindInternal)
	defer span.End()

	startTime := time.Now()
	metricsCount := 0

	up := 1.0
	if err := c.client.Health(ctx); err != nil {
		up = 0.0
		logging.LogError(fmt.Sprintf("Health check failed: %v", err))
		span.RecordError(err)
		span.SetAttributes(attribute.String(telemetry.AttrError, err.Error()))
	}
	ch <- prometheus.MustNewConstMetric(c.meiliUp, prometheus.GaugeValue, up)
	metricsCount++

	if up == 0 {
		ch <- prometheus.MustNewConstMetric(c.meiliResponseTime, prometheus.GaugeValue,
			float64(time.Since(startTime).Milliseconds()))
		span.SetAttributes(attribute.String(telemetry.AttrScrapeStatus, "down"))
		span.SetStatus(codes.Error, "instance down")
		return
	}

	if version, err := c.client.Version(ctx); err != nil {
		log.Debugf("Version fetch failed: %v", err)
	} else {
		ch <- prometheus.MustNewConstMetric(c.meiliVersionInfo, prometheus.GaugeValue, 1,
			version.PkgVersion, version.CommitSha)
		metricsCount++
		span.SetAttributes(attribute.String(telemetry.AttrMeiliVersion, version.PkgVersion))
	}

	stats, cacheHit := c.statsCache.Get()
	if !cacheHit {
		fresh, err := c.client.Stats(ctx)
		if err != nil {
			logging.LogError(fmt.Sprintf("Stats fetch failed: %v", err))
			span.RecordError(err)
		} else {
			c.statsCache.Set(fresh)
			stats = fresh
		}
	}

	if stats != nil {
		ch <- prometheus.MustNewConstMetric(c.meiliDatabaseSize, prometheus.GaugeValue,
			float64(stats.DatabaseSize))
		metricsCount++

		for uid, indexStats := range stats.Indexes {
			ch <- prometheus.MustNewConstMetric(c.meiliIndexDocuments, prometheus.GaugeValue,
				float64(indexStats.NumberOfDocuments), uid)

			indexing := 0.0
			if indexStats.IsIndexing {
				indexing = 1.0
			}
			ch <- prometheus.MustNewConstMetric(c.meiliIndexIndexing, prometheus.GaugeValue,
				indexing, uid)
			metricsCount += 2
		}

		span.SetAttributes(attribute.Int(telemetry.AttrMeiliIndexCount, len(stats.Indexes)))
	}

	duration := time.Since(startTime)
	ch <- prometheus.MustNewConstMetric(c.meiliResponseTime, prometheus.GaugeValue,
		float64(duration.Milliseconds()))
	metricsCount++

	span.SetAttributes(
		attribute.String(telemetry.AttrMeiliEndpoint, c.icfg.BaseURL()),
		attribute.Float64(telemetry.AttrScrapeDurationMS, float64(duration.Milliseconds())),
		attribute.Int(telemetry.AttrScrapeMetricsCount, metricsCount),
		attribute.Bool(telemetry.AttrScrapeCacheHit, cacheHit),
		attribute.String(telemetry.AttrScrapeStatus, "success"),
	)
	span.SetStatus(codes.Ok, "Collection completed")
}

// FlushCache drops cached statistics so the next scrape fetches fresh data.
// Called after a configuration reload points at a different instance.
func (c *MeiliCollector) FlushCache() {
	c.statsCache.Flush()
}

// Close releases resources held by the underlying API client.
func (c *MeiliCollector) Close() error {
	return c.client.Close()
}
