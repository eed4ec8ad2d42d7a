/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package suite fans one query out to several framework adapters in
// parallel and collects the per-framework traces, so the same agent task
// can be compared across LangGraph, CrewAI, Tapescope, and generic HTTP
// agents in a single run.
package suite
