/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q, want Bearer token", got)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		if payload["query"] != "hello" {
			t.Errorf("payload query = %v, want hello", payload["query"])
		}

		fmt.Fprint(w, `{"output":"world"}`)
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithHeaders(map[string]string{"Authorization": "Bearer token"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.PostJSON(context.Background(), map[string]any{"query": "hello"})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status = %d, want 2xx", resp.StatusCode)
	}

	var body map[string]string
	if err := resp.JSON(&body); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if body["output"] != "world" {
		t.Errorf("output = %q, want world", body["output"])
	}
}

func TestPostJSONErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":"bad input"}`)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// HTTP error statuses are not transport failures; the body comes back
	// for the adapter to interpret.
	resp, err := client.PostJSON(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if resp.OK() {
		t.Error("OK() = true for 422")
	}
	if !strings.Contains(string(resp.Body), "bad input") {
		t.Errorf("body = %q, want error payload", resp.Body)
	}
}

func TestPostJSONConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Immediately closed: guaranteed refused connection.

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.PostJSON(context.Background(), map[string]any{}); err == nil {
		t.Error("PostJSON against closed server should fail")
	}
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"type":"token","data":{"token":"Hi"}}`)
		fmt.Fprintln(w, `{"type":"token","data":{"token":" there"}}`)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stream, err := client.Stream(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var lines []string
	for stream.Next() {
		lines = append(lines, stream.Text())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
}

func TestStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Stream(context.Background(), map[string]any{}); err == nil {
		t.Error("Stream with 404 should fail")
	}
}

func TestStreamTimeoutCoversWholeStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"type":"token"}`)
		flusher.Flush()
		// Hold the stream open past the client timeout.
		time.Sleep(500 * time.Millisecond)
		fmt.Fprintln(w, `{"type":"token"}`)
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stream, err := client.Stream(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	for stream.Next() {
	}
	if stream.Err() == nil {
		t.Error("expected timeout error mid-stream")
	}
}

func TestStreamCloseIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "line")
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stream, err := client.Stream(context.Background(), nil)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestProbe(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithHealthTimeout(time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Probe(context.Background(), http.MethodGet, nil)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
}

func TestProbeUsesHealthTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	// Generous main timeout, tight health timeout: the probe must time out.
	client, err := New(srv.URL,
		WithTimeout(10*time.Second),
		WithHealthTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Probe(context.Background(), http.MethodGet, nil); err == nil {
		t.Error("Probe should have timed out")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New with empty endpoint should fail")
	}
	if _, err := New("http://localhost:1234", WithTimeout(-time.Second)); err == nil {
		t.Error("negative timeout should fail")
	}
	if _, err := New("http://localhost:1234", WithHTTPClient(nil)); err == nil {
		t.Error("nil http client should fail")
	}
}
