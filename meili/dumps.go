package meili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DumpStatus is the lifecycle state of a dump job as reported by the server.
type DumpStatus string

// Dump status values returned by the API.
const (
	DumpStatusInProgress DumpStatus = "in_progress"
	DumpStatusProcessing DumpStatus = "processing"
	DumpStatusFailed     DumpStatus = "failed"
	DumpStatusDone       DumpStatus = "done"
)

// Finished reports whether the dump job reached a terminal state.
func (s DumpStatus) Finished() bool {
	return s == DumpStatusDone || s == DumpStatusFailed
}

// Dump represents an asynchronous export job on the remote instance,
// tracked by uid and status. Unlike Index, a Dump exposes no further
// operations and therefore carries no client handle.
type Dump struct {
	UID    string     `json:"uid"`
	Status DumpStatus `json:"status"`
}

// parseDump deserializes a dump entity. A missing uid is a ParseError.
func parseDump(raw []byte) (*Dump, error) {
	var dump Dump
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, &ParseError{Entity: "dump", Err: err}
	}
	if dump.UID == "" {
		return nil, &ParseError{Entity: "dump", Err: errors.New("missing required field uid")}
	}
	return &dump, nil
}

// CreateDump triggers the creation of a dump on the instance. The job runs
// asynchronously; poll GetDumpStatus with the returned uid for completion.
func (c *Client) CreateDump(ctx context.Context) (*Dump, error) {
	raw, err := c.execute(ctx, http.MethodPost, "/dumps", nil)
	if err != nil {
		return nil, err
	}
	return parseDump(raw)
}

// GetDumpStatus returns the current status of the dump job with the given uid.
func (c *Client) GetDumpStatus(ctx context.Context, uid string) (*Dump, error) {
	raw, err := c.execute(ctx, http.MethodGet, fmt.Sprintf("/dumps/%s/status", uid), nil)
	if err != nil {
		return nil, err
	}
	return parseDump(raw)
}
