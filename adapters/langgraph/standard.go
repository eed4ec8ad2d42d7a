/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package langgraph

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/trace"
)

// executeStandard performs one synchronous invoke and parses the single
// JSON document it returns.
func (a *Adapter) executeStandard(ctx context.Context, payload map[string]any) (*trace.ExecutionTrace, error) {
	start := time.Now()

	resp, err := a.client.PostJSON(ctx, payload)
	if err != nil {
		return nil, err
	}
	end := time.Now()

	var data map[string]any
	if err := resp.JSON(&data); err != nil {
		if !resp.OK() {
			return nil, fmt.Errorf("langgraph request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parsing langgraph response: %w", err)
	}

	if !resp.OK() {
		// A parseable error body is an upstream application error: surface
		// it inside the trace rather than failing the collection.
		msg := adapters.StringField(data, "error")
		if msg == "" {
			msg = adapters.StringField(data, "detail")
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return &trace.ExecutionTrace{
			SessionID:   a.sessionID("", start),
			StartTime:   start,
			EndTime:     end,
			Steps:       []*trace.StepTrace{},
			FinalOutput: "Error: " + msg,
			Metrics:     trace.Aggregate(nil, start, end),
		}, nil
	}

	steps, runTokens := a.parseSteps(ctx, data)

	metrics := trace.Aggregate(steps, start, end)
	if metrics.TotalTokens == nil && runTokens != nil {
		// Token accounting reported at the run level only.
		total := runTokens.TotalTokens()
		metrics.TotalTokens = &total
	}

	return &trace.ExecutionTrace{
		SessionID:   a.sessionID(adapters.StringField(data, "thread_id"), start),
		StartTime:   start,
		EndTime:     end,
		Steps:       steps,
		FinalOutput: extractOutput(data),
		Metrics:     metrics,
	}, nil
}

// parseSteps extracts step records from a synchronous response, in priority
// order: intermediate_steps pairs, then a declared steps list, then tool
// calls embedded in the message history. The second return value carries
// token usage that could not be attributed to any step.
func (a *Adapter) parseSteps(ctx context.Context, data map[string]any) ([]*trace.StepTrace, *trace.TokenUsage) {
	if raw := adapters.SliceField(data, "intermediate_steps"); raw != nil {
		return a.parseIntermediateSteps(ctx, raw), nil
	}
	if raw := adapters.SliceField(data, "steps"); raw != nil {
		return a.parseDeclaredSteps(ctx, raw), nil
	}
	return a.parseMessageSteps(ctx, extractMessages(data))
}

// parseIntermediateSteps handles the (action, observation) pair shape. This
// shape carries no failure signal, so every step reports success.
func (a *Adapter) parseIntermediateSteps(ctx context.Context, raw []any) []*trace.StepTrace {
	steps := make([]*trace.StepTrace, 0, len(raw))
	for i, item := range raw {
		pair, ok := item.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		action, observation := pair[0], pair[1]

		var toolName string
		var params map[string]any
		if m, ok := action.(map[string]any); ok {
			toolName = adapters.StringField(m, "tool")
			params = adapters.MapField(m, "tool_input")
		} else {
			toolName = adapters.Stringify(action)
		}
		if params == nil {
			params = map[string]any{}
		}

		steps = append(steps, &trace.StepTrace{
			StepID:     fmt.Sprintf("step-%d", i),
			StepName:   fmt.Sprintf("Step %d", i+1),
			ToolName:   toolName,
			Parameters: params,
			Output:     observation,
			Success:    true,
		})
		a.collection.RecordStep(ctx, Name, toolName)
	}
	return steps
}

// parseDeclaredSteps handles the explicit steps list shape, mapping
// declared fields directly with documented defaults for anything absent.
func (a *Adapter) parseDeclaredSteps(ctx context.Context, raw []any) []*trace.StepTrace {
	steps := make([]*trace.StepTrace, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		stepID := adapters.StringField(m, "id")
		if stepID == "" {
			stepID = fmt.Sprintf("step-%d", i)
		}
		stepName := adapters.StringField(m, "name")
		if stepName == "" {
			stepName = fmt.Sprintf("Step %d", i+1)
		}
		params := adapters.MapField(m, "parameters")
		if params == nil {
			params = map[string]any{}
		}

		toolName := adapters.StringField(m, "tool")
		steps = append(steps, &trace.StepTrace{
			StepID:     stepID,
			StepName:   stepName,
			ToolName:   toolName,
			Parameters: params,
			Output:     m["output"],
			Success:    adapters.BoolField(m, "success", true),
			Metrics: trace.StepMetrics{
				LatencyMS: adapters.FloatField(m, "latency"),
				Cost:      adapters.FloatField(m, "cost"),
			},
		})
		a.collection.RecordStep(ctx, Name, toolName)
	}
	return steps
}

// parseMessageSteps derives steps from the message history: each tool_call
// on an AI message opens a step, and the tool message answering it (matched
// by tool_call_id) fills the output. Per-message usage metadata attaches to
// the step derived from that message, falling back to the most recent step;
// usage that lands before any step exists is returned for run-level
// accounting.
func (a *Adapter) parseMessageSteps(ctx context.Context, messages []any) ([]*trace.StepTrace, *trace.TokenUsage) {
	var steps []*trace.StepTrace
	var unattributed *trace.TokenUsage
	byCallID := make(map[string]*trace.StepTrace)

	for _, item := range messages {
		msg, ok := item.(map[string]any)
		if !ok {
			continue
		}

		switch adapters.StringField(msg, "type") {
		case "ai":
			var opened []*trace.StepTrace
			for _, rawCall := range adapters.SliceField(msg, "tool_calls") {
				call, ok := rawCall.(map[string]any)
				if !ok {
					continue
				}
				toolName := adapters.StringField(call, "name")
				params := adapters.MapField(call, "args")
				if params == nil {
					params = map[string]any{}
				}
				stepID := adapters.StringField(call, "id")
				if stepID == "" {
					stepID = fmt.Sprintf("step-%d", len(steps))
				}

				step := &trace.StepTrace{
					StepID:     stepID,
					StepName:   toolName,
					ToolName:   toolName,
					Parameters: params,
					Success:    true,
				}
				steps = append(steps, step)
				opened = append(opened, step)
				if id := adapters.StringField(call, "id"); id != "" {
					byCallID[id] = step
				}
				a.collection.RecordStep(ctx, Name, toolName)
			}

			if usage := parseUsage(msg); usage != nil {
				a.collection.RecordTokens(ctx, Name, int64(usage.InputTokens), int64(usage.OutputTokens))
				switch {
				case len(opened) > 0:
					opened[len(opened)-1].Metrics.Tokens = usage
				case len(steps) > 0:
					steps[len(steps)-1].Metrics.Tokens = usage
				default:
					unattributed = usage
				}
			}

		case "tool":
			step := byCallID[adapters.StringField(msg, "tool_call_id")]
			if step == nil && len(steps) > 0 {
				// No call id to correlate on: best-effort attribution to
				// the most recently opened step.
				step = steps[len(steps)-1]
			}
			if step != nil {
				step.Output = msg["content"]
			}
		}
	}

	return steps, unattributed
}

// parseUsage reads per-message token accounting from either the
// usage_metadata shape or the Cloud response_metadata.token_usage shape.
func parseUsage(msg map[string]any) *trace.TokenUsage {
	if usage := adapters.MapField(msg, "usage_metadata"); usage != nil {
		return &trace.TokenUsage{
			InputTokens:  adapters.IntField(usage, "input_tokens"),
			OutputTokens: adapters.IntField(usage, "output_tokens"),
			CachedTokens: adapters.IntField(usage, "cached_tokens"),
		}
	}
	if meta := adapters.MapField(msg, "response_metadata"); meta != nil {
		if usage := adapters.MapField(meta, "token_usage"); usage != nil {
			return &trace.TokenUsage{
				InputTokens:  adapters.IntField(usage, "prompt_tokens"),
				OutputTokens: adapters.IntField(usage, "completion_tokens"),
			}
		}
	}
	return nil
}

// extractMessages finds the message list, which LangGraph Cloud nests under
// an agent key.
func extractMessages(data map[string]any) []any {
	if messages := adapters.SliceField(data, "messages"); messages != nil {
		return messages
	}
	if agent := adapters.MapField(data, "agent"); agent != nil {
		return adapters.SliceField(agent, "messages")
	}
	return nil
}

// extractOutput resolves the final output, trying each known location until
// one yields a non-empty string: the last message's content, then the
// top-level output field, then the top-level result field.
func extractOutput(data map[string]any) string {
	if messages := extractMessages(data); len(messages) > 0 {
		if last, ok := messages[len(messages)-1].(map[string]any); ok {
			if content := adapters.Stringify(last["content"]); content != "" {
				return content
			}
		}
	}
	if out := adapters.Stringify(data["output"]); out != "" {
		return out
	}
	if result := adapters.Stringify(data["result"]); result != "" {
		return result
	}
	return ""
}
