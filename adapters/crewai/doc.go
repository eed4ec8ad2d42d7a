/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package crewai adapts CrewAI crew kickoff responses (tasks or
// agent_executions shapes, run-level usage_metrics) to the canonical trace
// schema.
package crewai
