/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tapescope

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chainguard.dev/evalview/trace"
	"chainguard.dev/evalview/tracetest"
)

func TestExecute(t *testing.T) {
	srv := tracetest.StreamServer(t, tracetest.TapeScopeEventLines())

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tr, err := adapter.Execute(context.Background(), "What is the capital of France?", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	tracetest.AssertValidTrace(t, tr)
	tracetest.AssertTraceMatches(t, tr, []string{"search"}, []string{"Paris"})

	// final_message replaces the accumulated token text.
	if tr.FinalOutput != "The capital of France is Paris." {
		t.Errorf("FinalOutput = %q", tr.FinalOutput)
	}
	if len(tr.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, wanted 1", len(tr.Steps))
	}

	step := tr.Steps[0]
	if step.ToolName != "search" {
		t.Errorf("ToolName = %q, wanted search", step.ToolName)
	}
	if got, want := step.Output, any("Paris"); got != want {
		t.Errorf("Output = %v, wanted %v", got, want)
	}
	if !step.Success {
		t.Error("Success = false, wanted true")
	}
}

func TestExecuteTokensOnly(t *testing.T) {
	srv := tracetest.StreamServer(t, []string{
		`{"type": "token", "data": {"token": "Hello "}}`,
		`{"type": "token", "data": {"token": "world."}}`,
	})

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tr, err := adapter.Execute(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if tr.FinalOutput != "Hello world." {
		t.Errorf("FinalOutput = %q, wanted Hello world.", tr.FinalOutput)
	}
}

func TestExecuteErrorEvent(t *testing.T) {
	srv := tracetest.StreamServer(t, []string{
		`{"type": "token", "data": {"token": "partial"}}`,
		`{"type": "error", "error": "boom"}`,
	})

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	// An in-stream error is the agent failing, not the collection failing.
	tr, err := adapter.Execute(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	tracetest.AssertValidTrace(t, tr)
	if tr.FinalOutput != "Error: boom" {
		t.Errorf("FinalOutput = %q, wanted Error: boom", tr.FinalOutput)
	}
}

func TestExecuteEmptyStream(t *testing.T) {
	srv := tracetest.StreamServer(t, nil)

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tr, err := adapter.Execute(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	tracetest.AssertValidTrace(t, tr)

	if tr.FinalOutput != NoResponse {
		t.Errorf("FinalOutput = %q, wanted %q", tr.FinalOutput, NoResponse)
	}
	if len(tr.Steps) != 0 {
		t.Errorf("len(Steps) = %d, wanted 0", len(tr.Steps))
	}
}

func TestExecuteSkipsMalformedLines(t *testing.T) {
	lines := tracetest.TapeScopeEventLines()
	withJunk := append([]string{lines[0], lines[1], `{truncated garbage`}, lines[2:]...)

	clean := tracetest.StreamServer(t, lines)
	dirty := tracetest.StreamServer(t, withJunk)

	run := func(url string) *trace.ExecutionTrace {
		adapter, err := New(url)
		if err != nil {
			t.Fatalf("New() = %v", err)
		}
		tr, err := adapter.Execute(context.Background(), "q", nil)
		if err != nil {
			t.Fatalf("Execute() = %v", err)
		}
		return tr
	}

	want, got := run(clean.URL), run(dirty.URL)
	if diff := cmp.Diff(want.Steps, got.Steps); diff != "" {
		t.Errorf("steps differ with malformed line present (-clean, +dirty):\n%s", diff)
	}
	if want.FinalOutput != got.FinalOutput {
		t.Errorf("FinalOutput = %q, wanted %q", got.FinalOutput, want.FinalOutput)
	}
}

func TestExecuteCorrelatesResultsByID(t *testing.T) {
	// Results arrive in the opposite order of the calls; the explicit call
	// ids must still pair each result with its own step.
	srv := tracetest.StreamServer(t, []string{
		`{"type": "tool_call", "data": {"id": "a", "name": "search", "args": {"query": "France"}}}`,
		`{"type": "tool_call", "data": {"id": "b", "name": "weather", "args": {"city": "Paris"}}}`,
		`{"type": "tool_result", "data": {"id": "b", "result": "Sunny"}}`,
		`{"type": "tool_result", "data": {"id": "a", "result": "Paris"}}`,
		`{"type": "final_message", "data": {"text": "done"}}`,
	})

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tr, err := adapter.Execute(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if len(tr.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, wanted 2", len(tr.Steps))
	}
	if got, want := tr.Steps[0].Output, any("Paris"); got != want {
		t.Errorf("search Output = %v, wanted %v", got, want)
	}
	if got, want := tr.Steps[1].Output, any("Sunny"); got != want {
		t.Errorf("weather Output = %v, wanted %v", got, want)
	}
}

func TestExecuteFailedToolResult(t *testing.T) {
	srv := tracetest.StreamServer(t, []string{
		`{"type": "tool_call", "data": {"name": "search", "args": {}}}`,
		`{"type": "tool_result", "data": {"name": "search", "success": false, "error": "rate limited"}}`,
		`{"type": "final_message", "data": {"text": "could not search"}}`,
	})

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tr, err := adapter.Execute(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if len(tr.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, wanted 1", len(tr.Steps))
	}
	if tr.Steps[0].Success {
		t.Error("Success = true, wanted false")
	}
	if tr.Steps[0].Error != "rate limited" {
		t.Errorf("Error = %q, wanted rate limited", tr.Steps[0].Error)
	}
}

func TestExecuteOrphanResultIsHarmless(t *testing.T) {
	srv := tracetest.StreamServer(t, []string{
		`{"type": "tool_result", "data": {"name": "search", "result": "orphan"}}`,
		`{"type": "final_message", "data": {"text": "ok"}}`,
	})

	adapter, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	tr, err := adapter.Execute(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if len(tr.Steps) != 0 {
		t.Errorf("len(Steps) = %d, wanted 0 for result with no call", len(tr.Steps))
	}
	if tr.FinalOutput != "ok" {
		t.Errorf("FinalOutput = %q, wanted ok", tr.FinalOutput)
	}
}

func TestExecuteTransportFailure(t *testing.T) {
	srv := tracetest.StreamServer(t, nil)
	url := srv.URL
	srv.Close()

	adapter, err := New(url)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if _, err := adapter.Execute(context.Background(), "q", nil); err == nil {
		t.Error("Execute() = nil, wanted transport error")
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{{
		name:   "ok",
		status: http.StatusOK,
		want:   true,
	}, {
		name:   "not found",
		status: http.StatusNotFound,
		want:   false,
	}, {
		name:   "server error",
		status: http.StatusInternalServerError,
		want:   false,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := tracetest.JSONServer(t, test.status, "{}")
			adapter, err := New(srv.URL)
			if err != nil {
				t.Fatalf("New() = %v", err)
			}
			if got := adapter.HealthCheck(context.Background()); got != test.want {
				t.Errorf("HealthCheck() = %t, wanted %t", got, test.want)
			}
		})
	}
}
