package meili

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpStatusFinished(t *testing.T) {
	tests := []struct {
		status   DumpStatus
		finished bool
	}{
		{DumpStatusInProgress, false},
		{DumpStatusProcessing, false},
		{DumpStatusFailed, true},
		{DumpStatusDone, true},
	}

	for _, tc := range tests {
		require.Equal(t, tc.finished, tc.status.Finished(), "status %s", tc.status)
	}
}

func TestCreateDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/dumps", r.URL.Path)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"uid":    "20260825-110000000",
			"status": "in_progress",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	dump, err := client.CreateDump(context.Background())
	require.NoError(t, err)
	require.Equal(t, "20260825-110000000", dump.UID)
	require.Equal(t, DumpStatusInProgress, dump.Status)
}

func TestGetDumpStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/dumps/20260825-110000000/status", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{
			"uid":    "20260825-110000000",
			"status": "done",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	dump, err := client.GetDumpStatus(context.Background(), "20260825-110000000")
	require.NoError(t, err)
	require.Equal(t, DumpStatusDone, dump.Status)
	require.True(t, dump.Status.Finished())
}

func TestGetDumpStatusUnknownUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "dump_not_found", "Dump 42 not found")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetDumpStatus(context.Background(), "42")
	require.True(t, IsAPIErrorCode(err, "dump_not_found"))
}

func TestParseDumpRejectsMissingUID(t *testing.T) {
	_, err := parseDump([]byte(`{"status":"done"}`))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "dump", parseErr.Entity)
}
