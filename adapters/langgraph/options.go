/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package langgraph

import (
	"time"

	"chainguard.dev/evalview/metrics"
	"chainguard.dev/evalview/transport"
)

type options struct {
	transportOpts []transport.Option
	streaming     bool
	verbose       bool
	enricher      metrics.AttributeEnricher
}

// Option is a functional option for configuring the adapter.
type Option func(*options) error

// WithHeaders merges custom headers over the framework-mandatory
// Content-Type: application/json.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) error {
		o.transportOpts = append(o.transportOpts, transport.WithHeaders(headers))
		return nil
	}
}

// WithTimeout sets the timeout for the whole call, including streams.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.transportOpts = append(o.transportOpts, transport.WithTimeout(d))
		return nil
	}
}

// WithHealthTimeout sets the independent, shorter timeout used by
// HealthCheck.
func WithHealthTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.transportOpts = append(o.transportOpts, transport.WithHealthTimeout(d))
		return nil
	}
}

// WithStreaming selects the streaming endpoint behavior instead of the
// synchronous invoke endpoint.
func WithStreaming(streaming bool) Option {
	return func(o *options) error {
		o.streaming = streaming
		return nil
	}
}

// WithVerbose enables diagnostic logging. No behavioral effect.
func WithVerbose(verbose bool) Option {
	return func(o *options) error {
		o.verbose = verbose
		o.transportOpts = append(o.transportOpts, transport.WithVerbose(verbose))
		return nil
	}
}

// WithAttributeEnricher sets a custom attribute enricher for collection
// metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(o *options) error {
		o.enricher = enricher
		return nil
	}
}
