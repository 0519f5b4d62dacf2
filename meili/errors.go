package meili

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes returned by the Meilisearch API that the client branches on.
// The comparison is always a case-sensitive match against the errorCode
// field of the error envelope, never against the HTTP status.
const (
	ErrCodeIndexNotFound      = "index_not_found"
	ErrCodeIndexAlreadyExists = "index_already_exists"
)

// APIError is returned when the server understood the request but rejected
// it. It carries the stable machine-readable code from the error envelope
// so callers can branch programmatically (e.g. on index_not_found).
type APIError struct {
	Message    string `json:"message"`
	Code       string `json:"errorCode"`
	Type       string `json:"errorType"`
	Link       string `json:"errorLink"`
	StatusCode int    `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("meilisearch api error %s: %s", e.Code, e.Message)
}

// TransportError is returned for a non-2xx response whose body could not be
// parsed as a Meilisearch error envelope. It preserves the raw status and
// body so the caller can diagnose proxies, HTML error pages and the like.
type TransportError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("unexpected response status %d: %s", e.StatusCode, e.Body)
}

// CommunicationError is returned when the request never completed at the
// HTTP level: connection refused, timeout, DNS failure.
type CommunicationError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *CommunicationError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a response body cannot be deserialized into
// the expected entity, or when a required field is missing. Entities are
// never silently defaulted.
type ParseError struct {
	Entity string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsAPIErrorCode reports whether err is (or wraps) an APIError carrying
// exactly the given error code.
func IsAPIErrorCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// errorFromResponse maps a non-2xx response onto the typed error taxonomy.
// A body that decodes into the standard envelope {message, errorCode,
// errorType, errorLink} becomes an APIError; anything else becomes a
// TransportError carrying the raw status and body.
func errorFromResponse(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == "" {
		return &TransportError{
			StatusCode: statusCode,
			Body:       string(body),
		}
	}
	apiErr.StatusCode = statusCode
	return &apiErr
}
