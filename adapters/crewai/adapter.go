/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package crewai

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
const Name = "crewai"

// Adapter normalizes CrewAI kickoff responses into the canonical trace
// schema. CrewAI reports steps either as a tasks list or as an
// agent_executions list, and keeps cost/token accounting at the run level
// only (usage_metrics), never per step.
type Adapter struct {
	client     *transport.Client
	verbose    bool
	collection *metrics.Collection
}

// New creates a CrewAI adapter for the given kickoff endpoint URL.
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
		"inputs": map[string]any{"query": query},
	}, callContext)

	if a.verbose {
		clog.FromContext(ctx).With("endpoint", a.client.Endpoint()).
			Info("Executing CrewAI request")
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
			return nil, fmt.Errorf("crewai request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parsing crewai response: %w", err)
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
	applyUsageMetrics(&metrics, adapters.MapField(data, "usage_metrics"))

	return &trace.ExecutionTrace{
		SessionID:   a.sessionID(data, start),
		StartTime:   start,
		EndTime:     end,
		Steps:       steps,
		FinalOutput: extractOutput(data),
		Metrics:     metrics,
	}, nil
}

// HealthCheck implements adapters.Adapter. Like LangGraph, a 422 from the
// kickoff endpoint still proves the service is up.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	resp, err := a.client.Probe(ctx, http.MethodPost, map[string]any{"inputs": map[string]any{}})
	if err != nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// parseSteps extracts steps from whichever shape the deployment reports:
// the tasks list, else the agent_executions list.
func (a *Adapter) parseSteps(ctx context.Context, data map[string]any) []*trace.StepTrace {
	if tasks := adapters.SliceField(data, "tasks"); tasks != nil {
		return a.parseTasks(ctx, tasks)
	}
	if execs := adapters.SliceField(data, "agent_executions"); execs != nil {
		return a.parseAgentExecutions(ctx, execs)
	}
	return nil
}

func (a *Adapter) parseTasks(ctx context.Context, tasks []any) []*trace.StepTrace {
	steps := make([]*trace.StepTrace, 0, len(tasks))
	for i, item := range tasks {
		task, ok := item.(map[string]any)
		if !ok {
			continue
		}

		stepID := adapters.StringField(task, "id")
		if stepID == "" {
			stepID = fmt.Sprintf("task-%d", i)
		}
		stepName := adapters.StringField(task, "description")
		if stepName == "" {
			stepName = stepID
		}
		params := adapters.MapField(task, "inputs")
		if params == nil {
			params = map[string]any{}
		}

		// Task status is the only failure signal CrewAI reports.
		status := adapters.StringField(task, "status")
		success := status == "" || status == "completed" || status == "success"
		var stepErr string
		if !success {
			stepErr = fmt.Sprintf("task status %q", status)
		}

		toolName := adapters.StringField(task, "tool")
		steps = append(steps, &trace.StepTrace{
			StepID:     stepID,
			StepName:   stepName,
			ToolName:   toolName,
			Parameters: params,
			Output:     task["output"],
			Success:    success,
			Error:      stepErr,
			Metrics: trace.StepMetrics{
				LatencyMS: adapters.FloatField(task, "duration"),
				Cost:      adapters.FloatField(task, "cost"),
			},
		})
		a.collection.RecordStep(ctx, Name, toolName)
	}
	return steps
}

func (a *Adapter) parseAgentExecutions(ctx context.Context, execs []any) []*trace.StepTrace {
	steps := make([]*trace.StepTrace, 0, len(execs))
	for i, item := range execs {
		exec, ok := item.(map[string]any)
		if !ok {
			continue
		}

		stepName := adapters.StringField(exec, "agent_name")
		if stepName == "" {
			stepName = fmt.Sprintf("Agent %d", i+1)
		}

		toolName := adapters.StringField(exec, "tool_used")
		steps = append(steps, &trace.StepTrace{
			StepID:     fmt.Sprintf("exec-%d", i),
			StepName:   stepName,
			ToolName:   toolName,
			Parameters: map[string]any{},
			Output:     exec["output"],
			Success:    true,
		})
		a.collection.RecordStep(ctx, Name, toolName)
	}
	return steps
}

// applyUsageMetrics folds run-level usage_metrics into the aggregate when
// the steps themselves carried no accounting. Step-level sums win when
// present; run-level values only fill the gaps.
func applyUsageMetrics(m *trace.ExecutionMetrics, usage map[string]any) {
	if usage == nil {
		return
	}
	if m.TotalCost == 0 {
		m.TotalCost = adapters.FloatField(usage, "total_cost")
	}
	if m.TotalTokens == nil {
		if total := adapters.IntField(usage, "total_tokens"); total > 0 {
			m.TotalTokens = &total
		}
	}
}

func (a *Adapter) sessionID(data map[string]any, start time.Time) string {
	if id := adapters.StringField(data, "crew_id"); id != "" {
		return id
	}
	return trace.SyntheticSessionID(Name, start)
}

// extractOutput resolves the final output from the locations CrewAI uses,
// in order: result, then final_output, then output.
func extractOutput(data map[string]any) string {
	for _, key := range []string{"result", "final_output", "output"} {
		if out := adapters.Stringify(data[key]); out != "" {
			return out
		}
	}
	return ""
}
