/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package httpagent adapts generic HTTP agents that accept
// {"query": ..., "context": {...}} requests. Responses may be flat
// ({"response", "cost", "tokens", "latency"}), carry a nested metadata
// object with a steps list, or report a tool_calls list; all three
// normalize to the same trace schema.
package httpagent
