// Package apiclient talks to a running `proforma serve` over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/proforma/internal/daemon"
	"github.com/theirongolddev/proforma/internal/engine"
	"github.com/theirongolddev/proforma/internal/store"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 16 << 20 // results for long horizons are a few hundred KB
)

var (
	// ErrNotFound is returned for unknown runs and a server without a ledger.
	ErrNotFound = errors.New("apiclient: not found")
)

// Error is a non-2xx response. For rejected assumptions StatusCode is 422
// and Message is the server's verbatim InvalidAssumptions text.
type Error struct {
	StatusCode int
	Message    string
	Problems   []engine.Problem
}

func (e *Error) Error() string {
	return e.Message
}

// Invalid reports whether the server rejected the assumptions.
func (e *Error) Invalid() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// Client calls the proforma HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for addr, given as host:port or a full URL.
// Returns nil if addr is empty.
func NewClient(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var st daemon.Status
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// Project posts inputs for projection. Rejected assumptions come back as
// an *Error with Invalid() true.
func (c *Client) Project(ctx context.Context, req daemon.ProjectRequest) (daemon.ProjectResponse, error) {
	var resp daemon.ProjectResponse
	err := c.do(ctx, http.MethodPost, "/v1/project", req, &resp)
	return resp, err
}

// Runs lists the newest runs recorded by the server.
func (c *Client) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	var runs []store.Run
	path := "/v1/runs?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// Run fetches one run with its result.
func (c *Client) Run(ctx context.Context, id string) (store.Run, error) {
	var run store.Run
	err := c.do(ctx, http.MethodGet, "/v1/runs/"+url.PathEscape(id), nil, &run)
	return run, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("apiclient: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("apiclient: reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er daemon.ErrorResponse
		if json.Unmarshal(data, &er) != nil || er.Error == "" {
			er.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: er.Error, Problems: er.Problems}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("apiclient: parsing %s: %w", path, err)
	}
	return nil
}
