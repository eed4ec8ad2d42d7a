/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// JSONServer serves the given body with the given status on every request.
// The server is torn down with the test.
func JSONServer(t testing.TB, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// CapturingServer is JSONServer plus request capture: the decoded JSON body
// of the most recent request is stored into captured.
func CapturingServer(t testing.TB, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			*captured = req
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// StreamServer serves the given lines one per write, flushing between lines
// so clients observe a real stream.
func StreamServer(t testing.TB, lines []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher, _ := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// DemoAgent is an in-process calculator agent speaking the generic HTTP
// contract: POST /execute takes {"query": ..., "context": {...}}, answers
// arithmetic questions through a calculator tool call, and reports per-call
// accounting; GET /health reports {"status": "healthy"}.
func DemoAgent(t testing.TB) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "healthy"}`)
	})
	mux.HandleFunc("/execute", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query   string         `json:"query"`
			Context map[string]any `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"detail": "Either query or messages must be provided"}`)
			return
		}

		output, toolCalls := runCalculator(req.Query)
		resp := map[string]any{
			"output":     output,
			"tool_calls": toolCalls,
			"cost":       0.001 * float64(len(toolCalls)),
			"latency":    15.0,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCalculator(query string) (string, []map[string]any) {
	lower := strings.ToLower(query)
	nums := numberPattern.FindAllString(query, 2)
	if len(nums) < 2 {
		return "I received your query: " + query, nil
	}
	a, _ := strconv.ParseFloat(nums[0], 64)
	b, _ := strconv.ParseFloat(nums[1], 64)

	var op string
	var result float64
	switch {
	case strings.Contains(lower, "plus") || strings.Contains(lower, "add") || strings.Contains(lower, "+") || strings.Contains(lower, "sum"):
		op, result = "add", a+b
	case strings.Contains(lower, "minus") || strings.Contains(lower, "subtract") || strings.Contains(lower, "-"):
		op, result = "subtract", a-b
	case strings.Contains(lower, "times") || strings.Contains(lower, "multiply") || strings.Contains(lower, "*"):
		op, result = "multiply", a*b
	default:
		return "I received your query: " + query, nil
	}

	call := map[string]any{
		"name":      "calculator",
		"arguments": map[string]any{"operation": op, "a": a, "b": b},
		"result":    result,
		"latency":   1.0,
		"cost":      0.001,
	}
	output := fmt.Sprintf("The result of %v %s %v = %v", a, opSymbol(op), b, result)
	return output, []map[string]any{call}
}

func opSymbol(op string) string {
	switch op {
	case "add":
		return "+"
	case "subtract":
		return "-"
	case "multiply":
		return "*"
	}
	return op
}
