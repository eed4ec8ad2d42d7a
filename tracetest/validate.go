/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracetest

import (
	"strings"
	"testing"

	"chainguard.dev/evalview/trace"
)

// AssertValidTrace fails the test if the trace breaks any schema invariant:
// missing session id, reversed timestamps, duplicate step ids, or negative
// accounting.
func AssertValidTrace(t testing.TB, tr *trace.ExecutionTrace) {
	t.Helper()
	if tr == nil {
		t.Fatal("trace is nil")
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("trace invalid: %v", err)
	}
	for _, step := range tr.Steps {
		AssertValidStep(t, step)
	}
}

// AssertValidStep fails the test if the step breaks any schema invariant.
func AssertValidStep(t testing.TB, step *trace.StepTrace) {
	t.Helper()
	if step == nil {
		t.Fatal("step is nil")
	}
	if err := step.Validate(); err != nil {
		t.Fatalf("step %q invalid: %v", step.StepID, err)
	}
	if step.Parameters == nil {
		t.Errorf("step %q has nil Parameters, wanted empty map", step.StepID)
	}
	AssertTokensValid(t, step.Metrics.Tokens)
}

// AssertTokensValid fails the test if a token usage record carries negative
// components. Nil usage is valid; it means the step reported none.
func AssertTokensValid(t testing.TB, tokens *trace.TokenUsage) {
	t.Helper()
	if tokens == nil {
		return
	}
	if tokens.InputTokens < 0 || tokens.OutputTokens < 0 || tokens.CachedTokens < 0 {
		t.Errorf("token usage has negative components: %+v", tokens)
	}
	want := tokens.InputTokens + tokens.OutputTokens + tokens.CachedTokens
	if got := tokens.TotalTokens(); got != want {
		t.Errorf("TotalTokens() = %d, wanted %d", got, want)
	}
}

// AssertTraceMatches checks that the trace used the expected tools, in any
// order, and that the final output mentions each expected fragment.
func AssertTraceMatches(t testing.TB, tr *trace.ExecutionTrace, wantTools []string, wantOutput []string) {
	t.Helper()

	used := make(map[string]bool, len(tr.Steps))
	for _, step := range tr.Steps {
		used[step.ToolName] = true
	}
	for _, tool := range wantTools {
		if !used[tool] {
			t.Errorf("tool %q not used; trace used %v", tool, keys(used))
		}
	}
	for _, fragment := range wantOutput {
		if !containsFold(tr.FinalOutput, fragment) {
			t.Errorf("final output %q does not contain %q", tr.FinalOutput, fragment)
		}
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
