// Package meili provides interfaces for Meilisearch API client abstraction.
// These interfaces enable mock implementations in unit tests without
// requiring a live Meilisearch instance.
package meili

import (
	"context"
)

// APIClient defines the operations exposed by the Meilisearch client.
// The primary implementation is Client, which uses Resty for HTTP
// communication; consumers such as the Prometheus collector depend on this
// interface so tests can substitute mocks.
type APIClient interface {
	// ListIndexes returns all indexes of the instance.
	ListIndexes(ctx context.Context) ([]*Index, error)

	// GetIndex fetches a single index by uid.
	GetIndex(ctx context.Context, uid string) (*Index, error)

	// CreateIndex creates an index with the given uid and optional primary key.
	CreateIndex(ctx context.Context, uid, primaryKey string) (*Index, error)

	// UpdateIndex updates the primary key of an existing index.
	UpdateIndex(ctx context.Context, uid, primaryKey string) (*Index, error)

	// DeleteIndex deletes an index by uid.
	DeleteIndex(ctx context.Context, uid string) error

	// DeleteIndexIfExists deletes an index and reports whether it existed.
	DeleteIndexIfExists(ctx context.Context, uid string) (bool, error)

	// GetOrCreateIndex fetches an index, creating it on index_not_found.
	GetOrCreateIndex(ctx context.Context, uid, primaryKey string) (*Index, error)

	// Index creates a local reference to an index without any HTTP call.
	Index(uid string) *Index

	// CreateDump triggers an asynchronous dump job.
	CreateDump(ctx context.Context) (*Dump, error)

	// GetDumpStatus returns the status of a dump job.
	GetDumpStatus(ctx context.Context, uid string) (*Dump, error)

	// Health checks that the instance is reachable and healthy.
	Health(ctx context.Context) error

	// Version returns the build information of the instance.
	Version(ctx context.Context) (*Version, error)

	// Stats returns instance-wide statistics.
	Stats(ctx context.Context) (*Stats, error)

	// IndexStats returns the statistics of a single index.
	IndexStats(ctx context.Context, uid string) (*IndexStats, error)

	// Close releases resources held by the client.
	Close() error
}

// Compile-time check that Client satisfies APIClient.
var _ APIClient = (*Client)(nil)
