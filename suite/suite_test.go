/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"context"
	"errors"
	"testing"
	"time"

	"chainguard.dev/evalview/trace"
)

type fakeAdapter struct {
	name    string
	tr      *trace.ExecutionTrace
	err     error
	healthy bool

	gotQuery   string
	gotContext map[string]any
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Execute(ctx context.Context, query string, callContext map[string]any) (*trace.ExecutionTrace, error) {
	f.gotQuery = query
	f.gotContext = callContext
	return f.tr, f.err
}

func (f *fakeAdapter) HealthCheck(ctx context.Context) bool { return f.healthy }

func fakeTrace(framework string) *trace.ExecutionTrace {
	start := time.Now()
	return &trace.ExecutionTrace{
		SessionID:   trace.SyntheticSessionID(framework, start),
		StartTime:   start,
		EndTime:     start.Add(time.Second),
		Steps:       []*trace.StepTrace{},
		FinalOutput: "done",
		Metrics:     trace.Aggregate(nil, start, start.Add(time.Second)),
	}
}

func TestExecuteFansOut(t *testing.T) {
	a := &fakeAdapter{name: "alpha", tr: fakeTrace("alpha")}
	b := &fakeAdapter{name: "beta", tr: fakeTrace("beta")}

	s := New(a, b)
	results := s.Execute(context.Background(), "What is 2+2?", map[string]any{"session_id": "s-1"})

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, wanted 2", len(results))
	}
	for _, name := range []string{"alpha", "beta"} {
		r, ok := results[name]
		if !ok {
			t.Fatalf("results missing %q", name)
		}
		if r.Err != nil {
			t.Errorf("results[%q].Err = %v, wanted nil", name, r.Err)
		}
		if r.Trace == nil || r.Trace.FinalOutput != "done" {
			t.Errorf("results[%q].Trace = %+v, wanted FinalOutput done", name, r.Trace)
		}
	}

	if a.gotQuery != "What is 2+2?" {
		t.Errorf("adapter received query %q", a.gotQuery)
	}
	if got := b.gotContext["session_id"]; got != "s-1" {
		t.Errorf("adapter received context session_id %v, wanted s-1", got)
	}
}

func TestExecuteIsolatesFailures(t *testing.T) {
	healthy := &fakeAdapter{name: "alpha", tr: fakeTrace("alpha")}
	broken := &fakeAdapter{name: "beta", err: errors.New("connection refused")}

	s := New(healthy, broken)
	results := s.Execute(context.Background(), "ping", nil)

	if r := results["alpha"]; r.Err != nil || r.Trace == nil {
		t.Errorf("healthy adapter result = %+v, wanted trace and nil error", r)
	}
	if r := results["beta"]; r.Err == nil {
		t.Error("broken adapter result has nil error, wanted transport error")
	} else if r.Trace != nil {
		t.Errorf("broken adapter result carries trace %+v, wanted nil", r.Trace)
	}
}

func TestHealthCheck(t *testing.T) {
	s := New(
		&fakeAdapter{name: "alpha", healthy: true},
		&fakeAdapter{name: "beta", healthy: false},
	)

	health := s.HealthCheck(context.Background())
	if !health["alpha"] {
		t.Error("health[alpha] = false, wanted true")
	}
	if health["beta"] {
		t.Error("health[beta] = true, wanted false")
	}
}
