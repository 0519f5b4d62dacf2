package meili

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFromResponseEnvelope(t *testing.T) {
	body := []byte(`{
		"message": "Index movies not found",
		"errorCode": "index_not_found",
		"errorType": "invalid_request_error",
		"errorLink": "https://docs.meilisearch.com/errors#index_not_found"
	}`)

	err := errorFromResponse(http.StatusNotFound, body)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrCodeIndexNotFound, apiErr.Code)
	require.Equal(t, "invalid_request_error", apiErr.Type)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestErrorFromResponseNonEnvelopeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html error page", "<html>502 Bad Gateway</html>"},
		{"empty body", ""},
		{"json without errorCode", `{"message":"something"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := errorFromResponse(http.StatusBadGateway, []byte(tc.body))

			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			require.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
			require.Equal(t, tc.body, transportErr.Body)
		})
	}
}

func TestIsAPIErrorCode(t *testing.T) {
	apiErr := &APIError{Code: ErrCodeIndexNotFound, Message: "Index movies not found"}

	require.True(t, IsAPIErrorCode(apiErr, ErrCodeIndexNotFound))
	require.False(t, IsAPIErrorCode(apiErr, ErrCodeIndexAlreadyExists))

	// Case sensitivity: the code is a stable machine identifier
	require.False(t, IsAPIErrorCode(apiErr, "Index_Not_Found"))

	// Wrapped errors are still matched
	wrapped := fmt.Errorf("listing indexes: %w", apiErr)
	require.True(t, IsAPIErrorCode(wrapped, ErrCodeIndexNotFound))

	require.False(t, IsAPIErrorCode(nil, ErrCodeIndexNotFound))
	require.False(t, IsAPIErrorCode(errors.New("plain"), ErrCodeIndexNotFound))
}

func TestCommunicationErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &CommunicationError{URL: "http://localhost:7700/health", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "http://localhost:7700/health")
}

func TestParseErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &ParseError{Entity: "index", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "index")
}
