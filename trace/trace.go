/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TokenUsage records token accounting for a single step as reported by the
// upstream framework. The total is always derived from the parts and never
// stored, so the two can't drift apart.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cached_tokens"`
}

// TotalTokens returns the derived token total (input + output + cached).
func (u TokenUsage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens + u.CachedTokens
}

// MarshalJSON includes the derived total_tokens field so serialized traces
// carry the same accounting downstream consumers see on the wire.
func (u TokenUsage) MarshalJSON() ([]byte, error) {
	type alias TokenUsage
	return json.Marshal(struct {
		alias
		TotalTokens int `json:"total_tokens"`
	}{alias(u), u.TotalTokens()})
}

// Validate checks the TokenUsage invariants.
func (u TokenUsage) Validate() error {
	if u.InputTokens < 0 || u.OutputTokens < 0 || u.CachedTokens < 0 {
		return fmt.Errorf("token counts must be non-negative, got input=%d output=%d cached=%d",
			u.InputTokens, u.OutputTokens, u.CachedTokens)
	}
	return nil
}

// StepMetrics holds per-step accounting. Latency is informational only and
// need not sum to the trace's wall-clock total. Tokens is nil when the
// framework reports no token usage for the step.
type StepMetrics struct {
	LatencyMS float64     `json:"latency_ms"`
	Cost      float64     `json:"cost"`
	Tokens    *TokenUsage `json:"tokens,omitempty"`
}

// StepTrace represents one tool invocation or reasoning step within a trace.
//
// A StepTrace is mutable only while the adapter that created it is still
// consuming the upstream response (streaming protocols fill Output/Success/
// Error when the matching result event arrives). Once the enclosing
// ExecutionTrace is returned, no step is mutated again.
type StepTrace struct {
	StepID     string         `json:"step_id"`
	StepName   string         `json:"step_name"`
	ToolName   string         `json:"tool_name,omitempty"`
	Parameters map[string]any `json:"parameters"`
	Output     any            `json:"output"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Metrics    StepMetrics    `json:"metrics"`
}

// Validate checks the StepTrace invariants.
func (s *StepTrace) Validate() error {
	if s.StepID == "" {
		return errors.New("step_id cannot be empty")
	}
	if s.Metrics.LatencyMS < 0 {
		return fmt.Errorf("step %q: latency must be non-negative, got %f", s.StepID, s.Metrics.LatencyMS)
	}
	if s.Metrics.Cost < 0 {
		return fmt.Errorf("step %q: cost must be non-negative, got %f", s.StepID, s.Metrics.Cost)
	}
	if s.Metrics.Tokens != nil {
		if err := s.Metrics.Tokens.Validate(); err != nil {
			return fmt.Errorf("step %q: %w", s.StepID, err)
		}
	}
	return nil
}

// ExecutionMetrics aggregates accounting over a whole trace.
//
// TotalTokens is nil, not zero, when no step carried token data: absence
// signals "framework does not report tokens", which downstream tooling
// treats differently from a genuine zero.
type ExecutionMetrics struct {
	TotalCost      float64 `json:"total_cost"`
	TotalLatencyMS float64 `json:"total_latency_ms"`
	TotalTokens    *int    `json:"total_tokens,omitempty"`
}

// ExecutionTrace is the canonical record of one agent invocation, from query
// to final output. Every adapter produces exactly one per Execute call;
// traces are independent and immutable after return.
type ExecutionTrace struct {
	SessionID   string           `json:"session_id"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Steps       []*StepTrace     `json:"steps"`
	FinalOutput string           `json:"final_output"`
	Metrics     ExecutionMetrics `json:"metrics"`
}

// Validate checks the structural invariants of the trace and all its steps.
func (t *ExecutionTrace) Validate() error {
	if t.SessionID == "" {
		return errors.New("session_id cannot be empty")
	}
	if t.EndTime.Before(t.StartTime) {
		return fmt.Errorf("end_time %s precedes start_time %s", t.EndTime, t.StartTime)
	}
	if t.Metrics.TotalCost < 0 {
		return fmt.Errorf("total_cost must be non-negative, got %f", t.Metrics.TotalCost)
	}
	if t.Metrics.TotalLatencyMS < 0 {
		return fmt.Errorf("total_latency must be non-negative, got %f", t.Metrics.TotalLatencyMS)
	}
	seen := make(map[string]bool, len(t.Steps))
	for _, step := range t.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
		if seen[step.StepID] {
			return fmt.Errorf("duplicate step_id %q", step.StepID)
		}
		seen[step.StepID] = true
	}
	return nil
}

// Aggregate computes ExecutionMetrics from a finalized step list and the
// wall-clock bounds of the call that produced it.
//
// Total latency is always the wall-clock duration of the outer call, never
// the sum of per-step latencies. Total cost is the sum over steps. Total
// tokens is the sum over steps that carry token data, or nil when none do.
func Aggregate(steps []*StepTrace, start, end time.Time) ExecutionMetrics {
	metrics := ExecutionMetrics{
		TotalLatencyMS: float64(end.Sub(start)) / float64(time.Millisecond),
	}
	var tokens int
	var sawTokens bool
	for _, step := range steps {
		metrics.TotalCost += step.Metrics.Cost
		if step.Metrics.Tokens != nil {
			tokens += step.Metrics.Tokens.TotalTokens()
			sawTokens = true
		}
	}
	if sawTokens {
		metrics.TotalTokens = &tokens
	}
	return metrics
}

// SyntheticSessionID derives a session identifier for frameworks whose wire
// format carries no native thread or session id.
func SyntheticSessionID(framework string, start time.Time) string {
	return fmt.Sprintf("%s-%d", framework, start.UnixNano())
}
