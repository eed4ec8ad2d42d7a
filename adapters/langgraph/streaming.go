/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package langgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/trace"
)

// eventPrefix marks event lines in the SSE-like stream; anything else on
// the stream is ignored.
const eventPrefix = "data: "

// executeStreaming consumes the streaming endpoint line by line. Each event
// line is decoded independently; a line that fails to decode is skipped,
// never fatal, so one corrupt event cannot abort the whole trace.
func (a *Adapter) executeStreaming(ctx context.Context, payload map[string]any) (*trace.ExecutionTrace, error) {
	start := time.Now()

	stream, err := a.client.Stream(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var steps []*trace.StepTrace
	var output strings.Builder
	var threadID string

	for stream.Next() {
		line := stream.Text()
		if !strings.HasPrefix(line, eventPrefix) {
			continue
		}

		var event map[string]any
		if err := json.Unmarshal([]byte(line[len(eventPrefix):]), &event); err != nil {
			a.collection.RecordSkippedLine(ctx, Name)
			continue
		}

		switch adapters.StringField(event, "type") {
		case "step":
			if step := a.parseStepEvent(ctx, event, len(steps)); step != nil {
				// This protocol reports each step as one self-contained
				// event; steps only ever accumulate by append.
				steps = append(steps, step)
			}
		case "message":
			output.WriteString(adapters.StringField(event, "content"))
		case "metadata":
			if id := adapters.StringField(event, "thread_id"); id != "" {
				threadID = id
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("reading langgraph stream: %w", err)
	}
	end := time.Now()

	return &trace.ExecutionTrace{
		SessionID:   a.sessionID(threadID, start),
		StartTime:   start,
		EndTime:     end,
		Steps:       steps,
		FinalOutput: strings.TrimSpace(output.String()),
		Metrics:     trace.Aggregate(steps, start, end),
	}, nil
}

// parseStepEvent converts a step event into a StepTrace. The streaming
// format only marks tool usage explicitly via tool or action fields; events
// without either are progress chatter, not steps.
func (a *Adapter) parseStepEvent(ctx context.Context, event map[string]any, index int) *trace.StepTrace {
	if _, hasTool := event["tool"]; !hasTool {
		if _, hasAction := event["action"]; !hasAction {
			return nil
		}
	}

	content := adapters.StringField(event, "content")
	stepName := content
	if len(stepName) > 50 {
		stepName = stepName[:50]
	}
	if stepName == "" {
		stepName = "Step"
	}

	stepID := adapters.StringField(event, "id")
	if stepID == "" {
		stepID = fmt.Sprintf("step-%d", index)
	}
	params := adapters.MapField(event, "parameters")
	if params == nil {
		params = map[string]any{}
	}

	toolName := adapters.StringField(event, "tool")
	a.collection.RecordStep(ctx, Name, toolName)

	return &trace.StepTrace{
		StepID:     stepID,
		StepName:   stepName,
		ToolName:   toolName,
		Parameters: params,
		Output:     content,
		Success:    true,
	}
}
