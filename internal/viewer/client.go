package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/argusview/argus/internal/core"
)

// Client talks to the two server collaborators: the dimensions query and
// the stream transport.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the stream server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: the stream response body is unbounded by
		// design. Cancellation happens through the request context.
		httpc: &http.Client{},
	}
}

// Dimensions fetches the stream's fixed raster size. Any non-success
// status or malformed body fails the call; the caller must not start a
// session without valid dimensions.
func (c *Client) Dimensions(ctx context.Context) (core.Dimensions, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stream/dimensions", nil)
	if err != nil {
		return core.Dimensions{}, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return core.Dimensions{}, fmt.Errorf("dimensions query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Dimensions{}, fmt.Errorf("%w: %s", core.ErrStreamStatus, resp.Status)
	}

	var dims core.Dimensions
	if err := json.NewDecoder(resp.Body).Decode(&dims); err != nil {
		return core.Dimensions{}, fmt.Errorf("dimensions query: %w", err)
	}
	if !dims.Valid() {
		return core.Dimensions{}, fmt.Errorf("%w: %dx%d", core.ErrDimensionsInvalid, dims.Width, dims.Height)
	}
	return dims, nil
}

// Open starts the stream request and returns its unbounded response body.
// The body read fails with the context's error once ctx is cancelled,
// which callers must distinguish from genuine transport errors.
func (c *Client) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stream", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream open: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", core.ErrStreamStatus, resp.Status)
	}
	return resp.Body, nil
}
