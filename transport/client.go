/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
)

const (
	// DefaultTimeout bounds the whole call: connection, headers, and the
	// full duration of any stream.
	DefaultTimeout = 30 * time.Second

	// DefaultHealthTimeout bounds reachability probes, independently of the
	// main call timeout.
	DefaultHealthTimeout = 5 * time.Second
)

// Client performs the HTTP requests adapters depend on: one-shot JSON
// request/response, streamed requests yielding text lines as they arrive,
// and short-timeout health probes. Configuration is fixed at construction;
// a Client is safe for concurrent use.
type Client struct {
	endpoint      string
	headers       map[string]string
	timeout       time.Duration
	healthTimeout time.Duration
	httpc         *http.Client
	verbose       bool
}

// Response is the outcome of a one-shot request. Non-2xx statuses are
// returned here rather than as errors so adapters can decide whether the
// body carries an in-band upstream error.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// New creates a Client for the given endpoint URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	c := &Client{
		endpoint:      endpoint,
		headers:       map[string]string{"Content-Type": "application/json"},
		timeout:       DefaultTimeout,
		healthTimeout: DefaultHealthTimeout,
		httpc:         http.DefaultClient,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return c, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// PostJSON sends payload as a JSON POST and reads the complete response
// body. It returns an error only for transport failures (connection,
// timeout, unreadable body); HTTP error statuses come back in the Response.
func (c *Client) PostJSON(ctx context.Context, payload any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.verbose {
		clog.FromContext(ctx).With("status", resp.StatusCode).
			With("bytes", len(body)).
			Debug("Received response")
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Stream sends payload as a JSON POST and returns the response body as a
// forward-only sequence of text lines. The call timeout covers the entire
// stream; the caller must Close the stream on every exit path.
func (c *Client) Stream(ctx context.Context, payload any) (*LineStream, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	resp, err := c.do(ctx, http.MethodPost, payload)
	if err != nil {
		cancel()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("stream request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return newLineStream(resp.Body, cancel), nil
}

// Probe issues a best-effort reachability request with the health timeout.
// Pass a nil payload for a bare GET-style probe.
func (c *Client) Probe(ctx context.Context, method string, payload any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	resp, err := c.do(ctx, method, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Probes only care about the status; drain so the connection is reused.
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)); err != nil {
		return nil, fmt.Errorf("draining probe response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode}, nil
}

func (c *Client) do(ctx context.Context, method string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request payload: %w", err)
		}
		body = bytes.NewReader(raw)

		if c.verbose {
			clog.FromContext(ctx).With("method", method).
				With("endpoint", c.endpoint).
				With("bytes", len(raw)).
				Debug("Sending request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.endpoint, err)
	}
	return resp, nil
}
