package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockInstance is a minimal in-memory Meilisearch standing behind an
// httptest server. It records every request so tests can assert on the
// exact number of network calls an operation performs.
type mockInstance struct {
	mu      sync.Mutex
	indexes map[string]*Index
	calls   map[string]int
	server  *httptest.Server
}

func newMockInstance() *mockInstance {
	m := &mockInstance{
		indexes: make(map[string]*Index),
		calls:   make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *mockInstance) close() {
	m.server.Close()
}

// callCount returns how many requests were seen for "METHOD path".
func (m *mockInstance) callCount(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method+" "+path]
}

// totalCalls returns the total number of requests seen.
func (m *mockInstance) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockInstance) addIndex(uid, primaryKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[uid] = &Index{UID: uid, PrimaryKey: primaryKey}
}

func (m *mockInstance) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.calls[r.Method+" "+r.URL.Path]++
	m.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/indexes":
		m.mu.Lock()
		list := make([]*Index, 0, len(m.indexes))
		for _, idx := range m.indexes {
			list = append(list, idx)
		}
		m.mu.Unlock()
		writeJSON(w, http.StatusOK, list)

	case r.Method == http.MethodPost && r.URL.Path == "/indexes":
		var req createIndexRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		if _, exists := m.indexes[req.UID]; exists {
			m.mu.Unlock()
			writeError(w, http.StatusBadRequest, ErrCodeIndexAlreadyExists,
				fmt.Sprintf("Index %s already exists", req.UID))
			return
		}
		idx := &Index{UID: req.UID, PrimaryKey: req.PrimaryKey}
		m.indexes[req.UID] = idx
		m.mu.Unlock()
		writeJSON(w, http.StatusCreated, idx)

	case r.URL.Path == "/indexes/"+uidOf(r.URL.Path):
		m.handleSingleIndex(w, r, uidOf(r.URL.Path))

	default:
		http.NotFound(w, r)
	}
}

// uidOf extracts the uid segment of /indexes/{uid}.
func uidOf(path string) string {
	const prefix = "/indexes/"
	if len(path) <= len(prefix) {
		return ""
	}
	return path[len(prefix):]
}

func (m *mockInstance) handleSingleIndex(w http.ResponseWriter, r *http.Request, uid string) {
	m.mu.Lock()
	idx, exists := m.indexes[uid]
	m.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, ErrCodeIndexNotFound,
			fmt.Sprintf("Index %s not found", uid))
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, idx)
	case http.MethodPut:
		var req updateIndexRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		idx.PrimaryKey = req.PrimaryKey
		m.mu.Unlock()
		writeJSON(w, http.StatusOK, idx)
	case http.MethodDelete:
		m.mu.Lock()
		delete(m.indexes, uid)
		m.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(HeaderContentType, contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateIndexThenGet(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()

	client := newTestClient(instance.server.URL)
	ctx := context.Background()

	created, err := client.CreateIndex(ctx, "movies", "id")
	require.NoError(t, err)
	require.Equal(t, "movies", created.UID)
	require.Equal(t, "id", created.PrimaryKey)

	fetched, err := client.GetIndex(ctx, "movies")
	require.NoError(t, err)
	require.Equal(t, created.UID, fetched.UID)
	require.Equal(t, created.PrimaryKey, fetched.PrimaryKey)
}

func TestCreateIndexWithoutPrimaryKey(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()

	client := newTestClient(instance.server.URL)

	created, err := client.CreateIndex(context.Background(), "movies", "")
	require.NoError(t, err)
	require.Equal(t, "movies", created.UID)
	require.Empty(t, created.PrimaryKey)
}

func TestGetIndexNotFound(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()

	client := newTestClient(instance.server.URL)

	_, err := client.GetIndex(context.Background(), "missing")
	require.True(t, IsAPIErrorCode(err, ErrCodeIndexNotFound))
}

func TestListIndexesAttachesClient(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "id")
	instance.addIndex("books", "isbn")

	client := newTestClient(instance.server.URL)

	indexes, err := client.ListIndexes(context.Background())
	require.NoError(t, err)
	require.Len(t, indexes, 2)

	// Every returned entity must be able to perform further operations
	for _, idx := range indexes {
		require.NotNil(t, idx.client)
	}
}

func TestUpdateIndexPrimaryKey(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "")

	client := newTestClient(instance.server.URL)

	updated, err := client.UpdateIndex(context.Background(), "movies", "movie_id")
	require.NoError(t, err)
	require.Equal(t, "movie_id", updated.PrimaryKey)
}

func TestDeleteIndexIfExists(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "id")

	client := newTestClient(instance.server.URL)
	ctx := context.Background()

	deleted, err := client.DeleteIndexIfExists(ctx, "movies")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = client.DeleteIndexIfExists(ctx, "movies")
	require.NoError(t, err)
	require.False(t, deleted, "deleting a missing index must report false without error")
}

func TestGetOrCreateIndexCreatesWhenMissing(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()

	client := newTestClient(instance.server.URL)

	idx, err := client.GetOrCreateIndex(context.Background(), "movies", "id")
	require.NoError(t, err)
	require.Equal(t, "movies", idx.UID)
	require.Equal(t, "id", idx.PrimaryKey)

	// Exactly one failed get followed by exactly one create
	require.Equal(t, 1, instance.callCount(http.MethodGet, "/indexes/movies"))
	require.Equal(t, 1, instance.callCount(http.MethodPost, "/indexes"))
}

func TestGetOrCreateIndexExisting(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "id")

	client := newTestClient(instance.server.URL)

	idx, err := client.GetOrCreateIndex(context.Background(), "movies", "ignored")
	require.NoError(t, err)
	require.Equal(t, "movies", idx.UID)
	require.Equal(t, "id", idx.PrimaryKey)

	// Exactly one get and no create
	require.Equal(t, 1, instance.callCount(http.MethodGet, "/indexes/movies"))
	require.Equal(t, 0, instance.callCount(http.MethodPost, "/indexes"))
}

func TestGetOrCreateIndexPropagatesOtherAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "invalid_token", "Invalid API key")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetOrCreateIndex(context.Background(), "movies", "id")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid_token", apiErr.Code)
	require.Equal(t, "Invalid API key", apiErr.Message)
}

func TestGetOrCreateIndexErrorCodeMatchIsCaseSensitive(t *testing.T) {
	var creates int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			creates++
			writeJSON(w, http.StatusCreated, &Index{UID: "movies"})
			return
		}
		// Same meaning, different casing: must NOT trigger the fallback
		writeError(w, http.StatusNotFound, "Index_Not_Found", "Index movies not found")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetOrCreateIndex(context.Background(), "movies", "id")
	require.Error(t, err)
	require.Equal(t, 0, creates)
}

func TestGetOrCreateIndexPropagatesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("plain 404 from a proxy"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetOrCreateIndex(context.Background(), "movies", "id")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr, "an unparseable 404 must not trigger the create fallback")
}

func TestIndexLocalReferencePerformsNoNetworkCalls(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "id")

	client := newTestClient(instance.server.URL)

	idx := client.Index("movies")
	require.Equal(t, "movies", idx.UID)
	require.Equal(t, 0, instance.totalCalls(), "constructing a local reference must not hit the network")

	// The reference behaves identically to a fetched entity
	require.NoError(t, idx.Delete(context.Background()))
	require.Equal(t, 1, instance.callCount(http.MethodDelete, "/indexes/movies"))
}

func TestIndexFetchRefreshesEntity(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "id")

	client := newTestClient(instance.server.URL)

	idx := client.Index("movies")
	require.Empty(t, idx.PrimaryKey)

	require.NoError(t, idx.Fetch(context.Background()))
	require.Equal(t, "id", idx.PrimaryKey)
}

func TestIndexUpdatePrimaryKeyRefreshesEntity(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "")

	client := newTestClient(instance.server.URL)

	idx := client.Index("movies")
	require.NoError(t, idx.UpdatePrimaryKey(context.Background(), "movie_id"))
	require.Equal(t, "movie_id", idx.PrimaryKey)
}

func TestDetachedIndexMethodsFail(t *testing.T) {
	idx := &Index{UID: "movies"}

	require.ErrorIs(t, idx.Fetch(context.Background()), errDetachedIndex)
	require.ErrorIs(t, idx.Delete(context.Background()), errDetachedIndex)
	require.ErrorIs(t, idx.UpdatePrimaryKey(context.Background(), "id"), errDetachedIndex)
}

func TestParseIndexRejectsMissingUID(t *testing.T) {
	_, err := parseIndex([]byte(`{"primaryKey":"id"}`), nil)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "index", parseErr.Entity)
}

func TestGetRawIndexReturnsBodyVerbatim(t *testing.T) {
	instance := newMockInstance()
	defer instance.close()
	instance.addIndex("movies", "id")

	client := newTestClient(instance.server.URL)

	raw, err := client.GetRawIndex(context.Background(), "movies")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "movies", decoded["uid"])
}
