/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tracetest provides shared test fixtures for adapter tests: canned
// framework responses, trace schema assertions, and in-process test servers
// including a small calculator demo agent.
package tracetest
