/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tapescope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/metrics"
	"chainguard.dev/evalview/trace"
	"chainguard.dev/evalview/transport"
)

// Name is the stable framework identifier reported by this adapter.
const Name = "tapescope"

// NoResponse is the sentinel final output for a stream that never produced
// any message or token content. It distinguishes "never produced" from an
// explicitly empty message.
const NoResponse = "No response"

// DefaultTimeout bounds the whole streamed call. TapeScope streams run
// long, so the default is generous.
const DefaultTimeout = 60 * time.Second

// Adapter normalizes TapeScope's streaming JSONL API into the canonical
// trace schema. Every non-empty response line is one standalone JSON event;
// tool_call and tool_result arrive as separate events that are correlated
// into a single step.
type Adapter struct {
	client     *transport.Client
	verbose    bool
	collection *metrics.Collection
}

// New creates a TapeScope adapter for the given endpoint URL (e.g.,
// http://localhost:3000/api/unifiedchat).
func New(endpoint string, opts ...Option) (*Adapter, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	// User options may override the protocol default.
	transportOpts := append([]transport.Option{transport.WithTimeout(DefaultTimeout)}, o.transportOpts...)
	client, err := transport.New(endpoint, transportOpts...)
	if err != nil {
		return nil, err
	}

	collection := metrics.NewCollection("chainguard.ai.evalview")
	if o.enricher != nil {
		collection.SetAttributeEnricher(o.enricher)
	}

	return &Adapter{
		client:     client,
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

	// TapeScope expects message rather than query; prompt is kept in sync
	// for older deployments that still read it.
	payload := adapters.BuildPayload(map[string]any{
		"message": query,
		"prompt":  query,
		"route":   "conversational",
		"userId":  "test-user",
	}, callContext)

	if a.verbose {
		clog.FromContext(ctx).With("endpoint", a.client.Endpoint()).
			Info("Executing TapeScope request")
	}

	start := time.Now()
	stream, err := a.client.Stream(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var corr correlator
	var output string

	for stream.Next() {
		line := strings.TrimSpace(stream.Text())
		if line == "" {
			continue
		}

		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			// Malformed lines are discarded; the stream continues.
			a.collection.RecordSkippedLine(ctx, Name)
			continue
		}

		data := adapters.MapField(event, "data")
		if data == nil {
			data = map[string]any{}
		}

		switch adapters.StringField(event, "type") {
		case "tool_call":
			toolName := adapters.StringField(data, "name")
			if toolName == "" {
				toolName = adapters.StringField(data, "tool_name")
			}
			if toolName == "" {
				toolName = "unknown"
			}
			params := adapters.MapField(data, "args")
			if params == nil {
				params = map[string]any{}
			}

			// Output stays nil until the matching tool_result arrives.
			step := &trace.StepTrace{
				StepID:     fmt.Sprintf("tool-%d", corr.count()),
				StepName:   toolName,
				ToolName:   toolName,
				Parameters: params,
				Success:    true,
			}
			corr.call(callKey(data, toolName), step)
			a.collection.RecordStep(ctx, Name, toolName)

		case "tool_result":
			toolName := adapters.StringField(data, "name")
			if toolName == "" {
				toolName = adapters.StringField(data, "tool_name")
			}
			if step := corr.resolve(callKey(data, toolName)); step != nil {
				step.Output = data["result"]
				step.Success = adapters.BoolField(data, "success", true)
				step.Error = adapters.StringField(data, "error")
			}

		case "final_message":
			// The final message replaces any accumulated token text.
			output = adapters.StringField(data, "text")

		case "token":
			output += adapters.StringField(data, "token")

		case "error":
			msg := adapters.StringField(event, "error")
			if msg == "" {
				msg = adapters.StringField(data, "error")
			}
			if msg == "" {
				msg = "Unknown error"
			}
			output = "Error: " + msg
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("reading tapescope stream: %w", err)
	}
	end := time.Now()

	finalOutput := strings.TrimSpace(output)
	if finalOutput == "" {
		finalOutput = NoResponse
	}

	steps := corr.finalized()
	return &trace.ExecutionTrace{
		SessionID:   trace.SyntheticSessionID(Name, start),
		StartTime:   start,
		EndTime:     end,
		Steps:       steps,
		FinalOutput: finalOutput,
		Metrics:     trace.Aggregate(steps, start, end),
	}, nil
}

// HealthCheck implements adapters.Adapter.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	resp, err := a.client.Probe(ctx, http.MethodGet, nil)
	if err != nil {
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// callKey derives the correlation key for a tool event: the explicit call
// id when the deployment sends one, else the tool name.
func callKey(data map[string]any, toolName string) string {
	if id := adapters.StringField(data, "id"); id != "" {
		return id
	}
	return toolName
}
