/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tapescope adapts TapeScope's streaming JSONL API to the
// canonical trace schema.
//
// Every non-empty response line is one standalone JSON object with a type
// discriminator:
//
//	{"type": "tool_call",    "data": {"name": ..., "args": {...}}}
//	{"type": "tool_result",  "data": {"result": ..., "success": ..., "error": ...}}
//	{"type": "token",        "data": {"token": "..."}}
//	{"type": "final_message","data": {"text": "..."}}
//	{"type": "error",        "error": "..."}
//
// tool_call opens a step with a nil output; the tool_result that answers it
// fills output, success, and error in place. Correlation uses an explicit
// pending-call map keyed by call id or tool name (see correlator) rather
// than blind last-step mutation, though unmatched results still fall back
// to the most recent step.
//
// A stream that ends without producing any message content yields the
// NoResponse sentinel rather than an empty string.
package tapescope
