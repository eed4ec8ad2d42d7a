/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package adapters defines the capability contract shared by all framework
// adapters, plus the payload-merge and observability helpers the concrete
// adapters build on.
//
// Each subpackage speaks one upstream wire format and normalizes it into
// the canonical trace schema:
//
//   - langgraph: synchronous JSON invoke responses and SSE-like "data: "
//     streams
//   - tapescope: line-delimited JSON event streams with asynchronous
//     tool_call/tool_result correlation
//   - crewai: synchronous JSON responses with task-level or
//     agent-execution-level step reporting and run-level usage accounting
//   - httpagent: generic HTTP agents with flat, nested-metadata, or
//     tool_calls response shapes
//
// Adapters are independent per call: no shared mutable state exists beyond
// read-only configuration fixed at construction, so concurrent Execute
// calls against one adapter instance are safe.
package adapters
