package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Version describes the build of the remote instance.
type Version struct {
	CommitSha  string `json:"commitSha"`
	CommitDate string `json:"commitDate"`
	PkgVersion string `json:"pkgVersion"`
}

// IndexStats holds the statistics of a single index.
type IndexStats struct {
	NumberOfDocuments  int64            `json:"numberOfDocuments"`
	IsIndexing         bool             `json:"isIndexing"`
	FieldsDistribution map[string]int64 `json:"fieldsDistribution"`
}

// Stats holds the statistics of the whole instance, keyed by index uid.
type Stats struct {
	DatabaseSize int64                 `json:"databaseSize"`
	LastUpdate   *time.Time            `json:"lastUpdate"`
	Indexes      map[string]IndexStats `json:"indexes"`
}

// Health checks that the instance is up. A nil error means healthy; any
// failure surfaces through the usual error taxonomy.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.execute(ctx, http.MethodGet, "/health", nil)
	return err
}

// Version returns the build information of the instance.
func (c *Client) Version(ctx context.Context) (*Version, error) {
	raw, err := c.execute(ctx, http.MethodGet, "/version", nil)
	if err != nil {
		return nil, err
	}

	var v Version
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &ParseError{Entity: "version", Err: err}
	}
	return &v, nil
}

// Stats returns the statistics of the whole instance.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	raw, err := c.execute(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, &ParseError{Entity: "stats", Err: err}
	}
	return &stats, nil
}

// IndexStats returns the statistics of a single index.
func (c *Client) IndexStats(ctx context.Context, uid string) (*IndexStats, error) {
	raw, err := c.execute(ctx, http.MethodGet, fmt.Sprintf("/indexes/%s/stats", uid), nil)
	if err != nil {
		return nil, err
	}

	var stats IndexStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, &ParseError{Entity: "index stats", Err: err}
	}
	return &stats, nil
}
