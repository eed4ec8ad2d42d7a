/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package transport provides the HTTP capabilities framework adapters
// depend on: one-shot JSON request/response, streamed requests consumed as
// a line sequence, and short-timeout health probes.
//
// Adapters never construct HTTP requests themselves; they hold a Client
// configured once at construction (endpoint, headers, timeouts) and call
// PostJSON, Stream, or Probe per execution. Transport-level failures
// (connection refused, DNS, timeout) are the only errors this package
// returns; HTTP error statuses travel back in the Response so the adapter
// can decide whether the body is a parseable in-band upstream error.
package transport
