/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package adapters

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"chainguard.dev/evalview/trace"
)

var (
	// Global metrics with consistent dimensions
	collectionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trace_collections_total",
			Help: "Total number of trace collections performed",
		},
		[]string{"framework"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trace_collection_failures_total",
			Help: "Total number of trace collections that failed at the transport level",
		},
		[]string{"framework"},
	)

	stepGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trace_collection_steps",
			Help: "Number of steps captured by the most recent collection",
		},
		[]string{"framework"},
	)
)

// StartExecution begins the observability scope for one Execute call,
// returning a derived context carrying the span.
func StartExecution(ctx context.Context, framework, query string) (context.Context, oteltrace.Span) {
	tr := otel.Tracer("chainguard.ai.evalview",
		oteltrace.WithInstrumentationVersion("1.0.0"))
	return tr.Start(ctx, "trace.collect", oteltrace.WithAttributes(
		attribute.String("framework", framework),
		attribute.String("query", query),
	))
}

// FinishExecution closes the observability scope opened by StartExecution,
// recording Prometheus counters and span attributes from the outcome.
func FinishExecution(span oteltrace.Span, framework string, tr *trace.ExecutionTrace, err error) {
	collectionCounter.WithLabelValues(framework).Inc()

	if err != nil {
		failureCounter.WithLabelValues(framework).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return
	}

	stepGauge.WithLabelValues(framework).Set(float64(len(tr.Steps)))
	span.SetAttributes(
		attribute.String("session_id", tr.SessionID),
		attribute.Int("steps", len(tr.Steps)),
		attribute.Float64("total_cost", tr.Metrics.TotalCost),
		attribute.Float64("total_latency_ms", tr.Metrics.TotalLatencyMS),
	)
	if tr.Metrics.TotalTokens != nil {
		span.SetAttributes(attribute.Int("total_tokens", *tr.Metrics.TotalTokens))
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}
