/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package trace defines the canonical execution trace schema that every
// framework adapter produces.
//
// The types here are pure data: an ExecutionTrace is the complete record of
// one agent invocation, made of ordered StepTrace records (one per tool
// invocation or reasoning step) and aggregate ExecutionMetrics. Downstream
// comparison tooling consumes this schema and never sees the upstream
// framework's own wire format.
//
// # Ownership and lifecycle
//
// Every entity is created and finalized within a single adapter Execute
// call. There is no persistence and no cache; no entity outlives the call
// that produced it, and a returned trace is never mutated again.
//
// # Aggregation rules
//
// Aggregate implements the merge rules shared by all adapters: wall-clock
// total latency, summed step cost, and summed step tokens with nil (absent)
// rather than zero when no step reports token usage.
package trace
