/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package langgraph adapts LangGraph agents to the canonical trace schema.
//
// It supports the standard invoke endpoint, the streaming endpoint, and the
// Cloud API response shape:
//
//   - {"messages": [...], "output": "..."} with optional intermediate_steps
//     or steps lists
//   - Streaming: data: {"type": "step" | "message" | "metadata", ...}
//   - Cloud: {"thread_id": ..., "agent": {"messages": [...]}}
//
// # Usage
//
//	adapter, err := langgraph.New("http://localhost:8123/invoke",
//	    langgraph.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	tr, err := adapter.Execute(ctx, "What is 2+2?", nil)
//
// Step extraction for synchronous responses tries, in priority order, the
// intermediate_steps pair list, the declared steps list, and finally tool
// calls embedded in the message history, where per-message usage_metadata
// becomes step-level token accounting.
package langgraph
