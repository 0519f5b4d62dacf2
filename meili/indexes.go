package meili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Index represents a named collection of documents on the remote instance.
//
// An Index obtained from any client operation carries a reference to the
// shared connection configuration (through the client handle), so it can
// perform further operations itself. The handle is attached after
// deserialization and is never serialized.
type Index struct {
	UID        string    `json:"uid"`
	PrimaryKey string    `json:"primaryKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`

	client *Client
}

type createIndexRequest struct {
	UID        string `json:"uid"`
	PrimaryKey string `json:"primaryKey,omitempty"`
}

type updateIndexRequest struct {
	PrimaryKey string `json:"primaryKey"`
}

// parseIndex deserializes a single index entity and attaches the client
// handle. A missing uid is a ParseError, never a silently zero-valued index.
func parseIndex(raw []byte, c *Client) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, &ParseError{Entity: "index", Err: err}
	}
	if idx.UID == "" {
		return nil, &ParseError{Entity: "index", Err: errors.New("missing required field uid")}
	}
	idx.client = c
	return &idx, nil
}

// ListIndexes returns all indexes of the instance. Every returned index
// carries the client handle and can perform further operations.
func (c *Client) ListIndexes(ctx context.Context) ([]*Index, error) {
	raw, err := c.GetRawIndexList(ctx)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Entity: "index list", Err: err}
	}

	indexes := make([]*Index, 0, len(items))
	for _, item := range items {
		idx, err := parseIndex(item, c)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// GetRawIndexList returns the raw JSON array of indexes without deserializing.
func (c *Client) GetRawIndexList(ctx context.Context) ([]byte, error) {
	return c.execute(ctx, http.MethodGet, "/indexes", nil)
}

// GetIndex fetches a single index by uid.
func (c *Client) GetIndex(ctx context.Context, uid string) (*Index, error) {
	raw, err := c.GetRawIndex(ctx, uid)
	if err != nil {
		return nil, err
	}
	return parseIndex(raw, c)
}

// GetRawIndex returns the raw JSON of a single index without deserializing.
func (c *Client) GetRawIndex(ctx context.Context, uid string) ([]byte, error) {
	return c.execute(ctx, http.MethodGet, fmt.Sprintf("/indexes/%s", uid), nil)
}

// CreateIndex creates an index with the given uid. primaryKey may be empty,
// in which case the instance infers it from the first indexed documents.
func (c *Client) CreateIndex(ctx context.Context, uid, primaryKey string) (*Index, error) {
	raw, err := c.execute(ctx, http.MethodPost, "/indexes", createIndexRequest{
		UID:        uid,
		PrimaryKey: primaryKey,
	})
	if err != nil {
		return nil, err
	}
	return parseIndex(raw, c)
}

// UpdateIndex updates the primary key of an existing index.
func (c *Client) UpdateIndex(ctx context.Context, uid, primaryKey string) (*Index, error) {
	raw, err := c.execute(ctx, http.MethodPut, fmt.Sprintf("/indexes/%s", uid), updateIndexRequest{
		PrimaryKey: primaryKey,
	})
	if err != nil {
		return nil, err
	}
	return parseIndex(raw, c)
}

// DeleteIndex deletes an index by uid. Deleting an unknown uid surfaces the
// server's index_not_found APIError.
func (c *Client) DeleteIndex(ctx context.Context, uid string) error {
	_, err := c.execute(ctx, http.MethodDelete, fmt.Sprintf("/indexes/%s", uid), nil)
	return err
}

// DeleteIndexIfExists deletes an index by uid and reports whether it
// existed. An index_not_found APIError is swallowed and reported as false;
// every other error propagates unchanged.
func (c *Client) DeleteIndexIfExists(ctx context.Context, uid string) (bool, error) {
	if err := c.DeleteIndex(ctx, uid); err != nil {
		if IsAPIErrorCode(err, ErrCodeIndexNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetOrCreateIndex fetches the index with the given uid, creating it when
// the get fails with the exact error code "index_not_found". Any other
// failure (other API codes, transport or communication errors) propagates
// unchanged. At most one get and one create are performed.
func (c *Client) GetOrCreateIndex(ctx context.Context, uid, primaryKey string) (*Index, error) {
	idx, err := c.GetIndex(ctx, uid)
	if err == nil {
		return idx, nil
	}
	if IsAPIErrorCode(err, ErrCodeIndexNotFound) {
		return c.CreateIndex(ctx, uid, primaryKey)
	}
	return nil, err
}

// Index creates a local reference to the index identified by uid without
// any HTTP call. The index may or may not exist remotely; the reference
// grants access to all further index operations either way.
func (c *Client) Index(uid string) *Index {
	return &Index{
		UID:    uid,
		client: c,
	}
}

// errDetachedIndex is returned when an entity method is called on an Index
// that was constructed without a client handle.
var errDetachedIndex = errors.New("index has no attached client")

// Fetch refreshes the index from the server in place.
func (i *Index) Fetch(ctx context.Context) error {
	if i.client == nil {
		return errDetachedIndex
	}
	fetched, err := i.client.GetIndex(ctx, i.UID)
	if err != nil {
		return err
	}
	*i = *fetched
	return nil
}

// UpdatePrimaryKey updates the index primary key on the server and
// refreshes the local entity.
func (i *Index) UpdatePrimaryKey(ctx context.Context, primaryKey string) error {
	if i.client == nil {
		return errDetachedIndex
	}
	updated, err := i.client.UpdateIndex(ctx, i.UID, primaryKey)
	if err != nil {
		return err
	}
	*i = *updated
	return nil
}

// Delete deletes the index on the server.
func (i *Index) Delete(ctx context.Context) error {
	if i.client == nil {
		return errDetachedIndex
	}
	return i.client.DeleteIndex(ctx, i.UID)
}

// Stats fetches the statistics of this index.
func (i *Index) Stats(ctx context.Context) (*IndexStats, error) {
	if i.client == nil {
		return nil, errDetachedIndex
	}
	return i.client.IndexStats(ctx, i.UID)
}
