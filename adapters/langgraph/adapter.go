/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package langgraph

import (
	"context"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/metrics"
	"chainguard.dev/evalview/trace"
	"chainguard.dev/evalview/transport"
)

// Name is the stable framework identifier reported by this adapter.
const Name = "langgraph"

// Adapter normalizes LangGraph agent responses into the canonical trace
// schema. It speaks both the synchronous invoke endpoint (one JSON
// document) and the streaming endpoint (SSE-like "data: " lines), selected
// at construction via WithStreaming.
type Adapter struct {
	client     *transport.Client
	streaming  bool
	verbose    bool
	collection *metrics.Collection
}

// New creates a LangGraph adapter for the given endpoint URL.
func New(endpoint string, opts ...Option) (*Adapter, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	client, err := transport.New(endpoint, o.transportOpts...)
	if err != nil {
		return nil, err
	}

	collection := metrics.NewCollection("chainguard.ai.evalview")
	if o.enricher != nil {
		collection.SetAttributeEnricher(o.enricher)
	}

	return &Adapter{
		client:     client,
		streaming:  o.streaming,
		verbose:    o.verbose,
		collection: collection,
	}, nil
}

// Name implements adapters.Adapter.
func (a *Adapter) Name() string { return Name }

// Execute implements adapters.Adapter.
func (a *Adapter) Execute(ctx context.Context, query string, callContext map[string]any) (tr *trace.ExecutionTrace, err error) {
	ctx, span := adapters.StartExecution(ctx, Name, query)
	defer func() { adapters.FinishExecution(span, Name, tr, err) }()

	payload := adapters.BuildPayload(map[string]any{
		"messages": []any{map[string]any{"role": "user", "content": query}},
	}, callContext)

	if a.verbose {
		clog.FromContext(ctx).With("streaming", a.streaming).
			With("endpoint", a.client.Endpoint()).
			Info("Executing LangGraph request")
	}

	if a.streaming {
		return a.executeStreaming(ctx, payload)
	}
	return a.executeStandard(ctx, payload)
}

// HealthCheck implements adapters.Adapter. LangGraph deployments answer a
// minimal invoke with 200/201, or 422 when the graph rejects the toy input;
// all three prove reachability.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	resp, err := a.client.Probe(ctx, http.MethodPost, map[string]any{
		"messages": []any{map[string]any{"role": "user", "content": "test"}},
	})
	if err != nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func (a *Adapter) sessionID(threadID string, start time.Time) string {
	if threadID != "" {
		return threadID
	}
	return trace.SyntheticSessionID(Name, start)
}
