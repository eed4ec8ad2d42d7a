/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Option is a functional option for configuring the Client.
type Option func(*Client) error

// WithHeaders merges the given headers over the defaults. Content-Type
// stays application/json unless explicitly overridden.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) error {
		for k, v := range headers {
			c.headers[k] = v
		}
		return nil
	}
}

// WithTimeout sets the timeout for the whole call, including the full
// duration of a stream.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.timeout = d
		return nil
	}
}

// WithHealthTimeout sets the independent timeout used by Probe.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("health timeout must be positive, got %s", d)
		}
		c.healthTimeout = d
		return nil
	}
}

// WithVerbose enables diagnostic request/response logging. No behavioral
// effect beyond logging.
func WithVerbose(verbose bool) Option {
	return func(c *Client) error {
		c.verbose = verbose
		return nil
	}
}

// WithHTTPClient overrides the underlying *http.Client, e.g. to inject a
// transport in tests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) error {
		if httpc == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpc = httpc
		return nil
	}
}
