package telemetry

// Meilisearch-specific attributes
const (
	AttrMeiliEndpoint   = "meili.endpoint"
	AttrMeiliVersion    = "meili.version"
	AttrMeiliIndexCount = "meili.index_count"
)

// Scrape cycle attributes
const (
	AttrScrapeDurationMS   = "scrape.duration_ms"
	AttrScrapeMetricsCount = "scrape.metrics_count"
	AttrScrapeStatus       = "scrape.status"
	AttrScrapeCacheHit     = "scrape.cache_hit"
)

// Error attributes
const (
	AttrError = "error"
)
