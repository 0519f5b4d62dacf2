// Package testutil provides shared test utilities and helper functions.
// This file contains fluent builders and common test helpers to reduce
// duplication across test files.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// MockServerBuilder provides a fluent interface for creating mock
// Meilisearch servers. It simplifies test setup with chainable methods for
// the endpoints the exporter and client touch.
//
// Example usage:
//
//	server := testutil.NewMockServer().
//	    WithHealthEndpoint().
//	    WithStatsEndpoint(statsResponse).
//	    Build()
//	defer server.Close()
type MockServerBuilder struct {
	handlers map[string]http.HandlerFunc
	apiKey   string
}

// NewMockServer creates a new MockServerBuilder.
func NewMockServer() *MockServerBuilder {
	return &MockServerBuilder{
		handlers: make(map[string]http.HandlerFunc),
	}
}

// WithAPIKey makes every configured endpoint require the given API key in
// the X-Meili-API-Key header, answering 403 with the standard error
// envelope otherwise.
func (b *MockServerBuilder) WithAPIKey(key string) *MockServerBuilder {
	b.apiKey = key
	return b
}

// WithHealthEndpoint adds a /health handler answering 204.
func (b *MockServerBuilder) WithHealthEndpoint() *MockServerBuilder {
	b.handlers[TestPathHealth] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
	return b
}

// WithVersionEndpoint adds a /version handler returning the given response.
func (b *MockServerBuilder) WithVersionEndpoint(response interface{}) *MockServerBuilder {
	b.handlers[TestPathVersion] = func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, response)
	}
	return b
}

// WithStatsEndpoint adds a /stats handler returning the given response.
func (b *MockServerBuilder) WithStatsEndpoint(response interface{}) *MockServerBuilder {
	b.handlers[TestPathStats] = func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, response)
	}
	return b
}

// WithEndpoint adds a raw handler for an arbitrary path.
func (b *MockServerBuilder) WithEndpoint(path string, handler http.HandlerFunc) *MockServerBuilder {
	b.handlers[path] = handler
	return b
}

// Build creates the httptest server with all configured endpoints.
func (b *MockServerBuilder) Build() *httptest.Server {
	mux := http.NewServeMux()
	for path, handler := range b.handlers {
		h := handler
		if b.apiKey != "" {
			h = b.requireAPIKey(h)
		}
		mux.HandleFunc(path, h)
	}
	return httptest.NewServer(mux)
}

// requireAPIKey wraps a handler with X-Meili-API-Key validation.
func (b *MockServerBuilder) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(APIKeyHeader) != b.apiKey {
			w.Header().Set(ContentTypeHeader, ContentTypeJSON)
			w.WriteHeader(http.StatusForbidden)
			writeJSONResponse(w, map[string]string{
				"message":   "Invalid API key",
				"errorCode": "invalid_token",
				"errorType": "authentication_error",
				"errorLink": "https://docs.meilisearch.com/errors#invalid_token",
			})
			return
		}
		next(w, r)
	}
}

// writeJSONResponse encodes the response as JSON with the proper content type.
func writeJSONResponse(w http.ResponseWriter, response interface{}) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	_ = json.NewEncoder(w).Encode(response)
}
