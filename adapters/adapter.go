/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package adapters

import (
	"context"

	"chainguard.dev/evalview/trace"
)

// Adapter is the capability contract every framework adapter implements.
// Concrete adapters form a closed set of wire-format variants, selected at
// construction time by configuration rather than by runtime introspection
// of unknown response shapes.
type Adapter interface {
	// Name returns a stable lowercase identifier for the framework (e.g.,
	// "langgraph", "tapescope"). Callers use it for routing and reporting;
	// the adapter itself does not.
	Name() string

	// Execute builds a framework-specific request from query and
	// callContext, performs the call, and returns a fully populated,
	// immutable ExecutionTrace.
	//
	// Expected upstream failures (HTTP error bodies, malformed stream
	// lines, error events) are captured inside the trace via Success=false,
	// Error, or a "Error: …" final output; Execute still returns a valid
	// trace for them. Only genuine transport failures (connection errors,
	// timeouts, unparseable non-2xx responses) are returned as errors.
	Execute(ctx context.Context, query string, callContext map[string]any) (*trace.ExecutionTrace, error)

	// HealthCheck is a best-effort reachability probe with its own short
	// timeout, distinct from the main call timeout. It never panics and
	// reports false on any failure.
	HealthCheck(ctx context.Context) bool
}

// BuildPayload assembles a request payload with framework-mandatory fields
// set first and caller-supplied context merged over them. Context entries
// can override or extend mandatory fields but never unset them.
func BuildPayload(mandatory, callContext map[string]any) map[string]any {
	payload := make(map[string]any, len(mandatory)+len(callContext))
	for k, v := range mandatory {
		payload[k] = v
	}
	for k, v := range callContext {
		payload[k] = v
	}
	return payload
}
