/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpagent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/metrics"
	"chainguard.dev/evalview/trace"
	"chainguard.dev/evalview/transport"
)

// Name is the stable framework identifier reported by this adapter.
const Name = "httpagent"

// Adapter normalizes generic HTTP agent endpoints that follow the simple
// query/context request contract. It understands three response shapes:
// flat run-level accounting, nested metadata with a steps list, and the
// tool_calls list emitted by simpler agents.
type Adapter struct {
	client     *transport.Client
	health     *transport.Client
	verbose    bool
	collection *metrics.Collection
}

// New creates an adapter for the given execute endpoint URL.
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

	// Probes go to a dedicated health URL when configured; agents that
	// only expose the execute route answer the probe there.
	health := client
	if o.healthURL != "" {
		health, err = transport.New(o.healthURL, o.transportOpts...)
		if err != nil {
			return nil, fmt.Errorf("configuring health endpoint: %w", err)
		}
	}

	collection := metrics.NewCollection("chainguard.ai.evalview")
	if o.enricher != nil {
		collection.SetAttributeEnricher(o.enricher)
	}

	return &Adapter{
		client:     client,
		health:     health,
		verbose:    o.verbose,
		collection: collection,
	}, nil
}

// Name implements adapters.Adapter.
func (a *Adapter) Name() string { return Name }

// Execute implements adapters.Adapter. The generic contract carries caller
// context as an envelope field rather than merged into the payload root;
// the agent decides what to do with it.
func (a *Adapter) Execute(ctx context.Context, query string, callContext map[string]any) (tr *trace.ExecutionTrace, err error) {
	ctx, span := adapters.StartExecution(ctx, Name, query)
	defer func() { adapters.FinishExecution(span, Name, tr, err) }()

	if callContext == nil {
		callContext = map[string]any{}
	}
	payload := map[string]any{
		"query":   query,
		"context": callContext,
	}

	if a.verbose {
		clog.FromContext(ctx).With("endpoint", a.client.Endpoint()).
			Info("Executing HTTP agent request")
	}

	start := time.Now()
	resp, err := a.client.PostJSON(ctx, payload)
	if err != nil {
		return nil, err
	}
	end := time.Now()

	var data map[string]any
	if err := resp.JSON(&data); err != nil {
		if !resp.OK() {
			return nil, fmt.Errorf("agent request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parsing agent response: %w", err)
	}

	if !resp.OK() {
		msg := adapters.StringField(data, "error")
		if msg == "" {
			msg = adapters.StringField(data, "detail")
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return &trace.ExecutionTrace{
			SessionID:   a.sessionID(data, start),
			StartTime:   start,
			EndTime:     end,
			Steps:       []*trace.StepTrace{},
			FinalOutput: "Error: " + msg,
			Metrics:     trace.Aggregate(nil, start, end),
		}, nil
	}

	steps := a.parseSteps(ctx, data)
	metrics := trace.Aggregate(steps, start, end)
	applyRunAccounting(&metrics, data)

	return &trace.ExecutionTrace{
		SessionID:   a.sessionID(data, start),
		StartTime:   start,
		EndTime:     end,
		Steps:       steps,
		FinalOutput: extractOutput(data),
		Metrics:     metrics,
	}, nil
}

// HealthCheck implements adapters.Adapter.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	resp, err := a.health.Probe(ctx, http.MethodGet, nil)
	if err != nil {
		return false
	}
	return resp.OK()
}

// parseSteps extracts steps from either the nested steps list or the
// tool_calls list.
func (a *Adapter) parseSteps(ctx context.Context, data map[string]any) []*trace.StepTrace {
	if raw := adapters.SliceField(data, "steps"); raw != nil {
		return a.parseStepList(ctx, raw)
	}
	if raw := adapters.SliceField(data, "tool_calls"); raw != nil {
		return a.parseToolCalls(ctx, raw)
	}
	return nil
}

func (a *Adapter) parseStepList(ctx context.Context, raw []any) []*trace.StepTrace {
	steps := make([]*trace.StepTrace, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		toolName := adapters.StringField(m, "tool_name")
		stepName := toolName
		if stepName == "" {
			stepName = fmt.Sprintf("Step %d", i+1)
		}
		params := adapters.MapField(m, "parameters")
		if params == nil {
			params = map[string]any{}
		}

		steps = append(steps, &trace.StepTrace{
			StepID:     fmt.Sprintf("step-%d", i),
			StepName:   stepName,
			ToolName:   toolName,
			Parameters: params,
			Output:     m["output"],
			Success:    adapters.BoolField(m, "success", true),
			Error:      adapters.StringField(m, "error"),
			Metrics: trace.StepMetrics{
				LatencyMS: adapters.FloatField(m, "latency"),
				Cost:      adapters.FloatField(m, "cost"),
			},
		})
		a.collection.RecordStep(ctx, Name, toolName)
	}
	return steps
}

func (a *Adapter) parseToolCalls(ctx context.Context, raw []any) []*trace.StepTrace {
	steps := make([]*trace.StepTrace, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		toolName := adapters.StringField(m, "name")
		params := adapters.MapField(m, "arguments")
		if params == nil {
			params = map[string]any{}
		}

		steps = append(steps, &trace.StepTrace{
			StepID:     fmt.Sprintf("call-%d", i),
			StepName:   toolName,
			ToolName:   toolName,
			Parameters: params,
			Output:     m["result"],
			Success:    true,
			Metrics: trace.StepMetrics{
				LatencyMS: adapters.FloatField(m, "latency"),
				Cost:      adapters.FloatField(m, "cost"),
			},
		})
		a.collection.RecordStep(ctx, Name, toolName)
	}
	return steps
}

// applyRunAccounting folds run-level cost and token reporting into the
// aggregate when steps carried none. Flat responses report cost and a bare
// token count at the root; nested responses hang them off metadata, with
// tokens split into input/output/cached.
func applyRunAccounting(m *trace.ExecutionMetrics, data map[string]any) {
	meta := adapters.MapField(data, "metadata")

	if m.TotalCost == 0 {
		if cost := adapters.FloatField(data, "cost"); cost > 0 {
			m.TotalCost = cost
		} else if meta != nil {
			m.TotalCost = adapters.FloatField(meta, "cost")
		}
	}

	if m.TotalTokens != nil {
		return
	}
	if tokens := adapters.IntField(data, "tokens"); tokens > 0 {
		m.TotalTokens = &tokens
		return
	}
	if meta != nil {
		if tokenMap := adapters.MapField(meta, "tokens"); tokenMap != nil {
			usage := trace.TokenUsage{
				InputTokens:  adapters.IntField(tokenMap, "input"),
				OutputTokens: adapters.IntField(tokenMap, "output"),
				CachedTokens: adapters.IntField(tokenMap, "cached"),
			}
			if total := usage.TotalTokens(); total > 0 {
				m.TotalTokens = &total
			}
		}
	}
}

func (a *Adapter) sessionID(data map[string]any, start time.Time) string {
	if id := adapters.StringField(data, "session_id"); id != "" {
		return id
	}
	return trace.SyntheticSessionID(Name, start)
}

// extractOutput resolves the final output, in order: response, output,
// result.
func extractOutput(data map[string]any) string {
	for _, key := range []string{"response", "output", "result"} {
		if out := adapters.Stringify(data[key]); out != "" {
			return out
		}
	}
	return ""
}
