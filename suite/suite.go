/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"context"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"

	"chainguard.dev/evalview/adapters"
	"chainguard.dev/evalview/trace"
)

// Result carries the outcome of one adapter's run. A nil Err with a non-nil
// Trace is the normal case; expected agent failures surface inside the
// trace, so Err is set only for transport-level problems.
type Result struct {
	Trace *trace.ExecutionTrace
	Err   error
}

// Suite runs the same query across a set of adapters.
type Suite struct {
	adapters []adapters.Adapter
}

// New creates a suite over the given adapters.
func New(adapters ...adapters.Adapter) *Suite {
	return &Suite{adapters: adapters}
}

// Adapters returns the adapters the suite runs, in declaration order.
func (s *Suite) Adapters() []adapters.Adapter {
	return s.adapters
}

// Execute runs the query against every adapter in parallel and returns the
// per-framework results. A transport failure on one adapter does not stop
// the others; each result carries its own error.
func (s *Suite) Execute(ctx context.Context, query string, callContext map[string]any) map[string]Result {
	var mu sync.Mutex
	results := make(map[string]Result, len(s.adapters))

	g := new(errgroup.Group)
	for _, adapter := range s.adapters {
		g.Go(func() error {
			name := adapter.Name()
			tr, err := adapter.Execute(ctx, query, callContext)
			if err != nil {
				clog.FromContext(ctx).With("framework", name).
					Errorf("Trace collection failed: %v", err)
				suiteFailures.WithLabelValues(name).Inc()
			}
			suiteRuns.WithLabelValues(name).Inc()

			mu.Lock()
			defer mu.Unlock()
			results[name] = Result{Trace: tr, Err: err}
			return nil
		})
	}
	// Goroutines never return errors; failures land in the result map.
	_ = g.Wait()

	return results
}

// HealthCheck probes every adapter in parallel and reports reachability per
// framework. Probes never return errors; an unreachable agent is just false.
func (s *Suite) HealthCheck(ctx context.Context) map[string]bool {
	var mu sync.Mutex
	health := make(map[string]bool, len(s.adapters))

	g := new(errgroup.Group)
	for _, adapter := range s.adapters {
		g.Go(func() error {
			name := adapter.Name()
			ok := adapter.HealthCheck(ctx)
			if ok {
				adapterHealthy.WithLabelValues(name).Set(1)
			} else {
				adapterHealthy.WithLabelValues(name).Set(0)
			}

			mu.Lock()
			defer mu.Unlock()
			health[name] = ok
			return nil
		})
	}
	_ = g.Wait()

	return health
}
