// Package testutil provides shared testing utilities and constants for
// meili_admin. It centralizes common test values and a fluent mock server
// builder to reduce duplication across test files.
package testutil

// HTTP headers
const (
	ContentTypeHeader = "Content-Type"
	APIKeyHeader      = "X-Meili-API-Key"
)

// Common test values
const (
	ContentTypeJSON = "application/json"
	TestAPIKey      = "test-api-key"
)

// Test endpoints and paths
const (
	TestPathStats   = "/stats"
	TestPathHealth  = "/health"
	TestPathVersion = "/version"
)

// Test server names and identifiers
const (
	TestMeiliHost      = "meili-test"
	TestMeiliPort      = "7700"
	TestServiceName    = "meili-admin-test"
	TestServiceVersion = "1.0.0-test"
)
