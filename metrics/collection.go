/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Collection provides OpenTelemetry metrics for trace collection.
// It includes counters for normalized token usage, captured steps, and
// stream lines skipped as malformed, with support for graceful degradation
// if metric creation fails.
type Collection struct {
	meter        metric.Meter
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	stepCounter  metric.Int64Counter
	skippedLines metric.Int64Counter
	attrEnricher AttributeEnricher
}

// NewCollection creates a new Collection metrics instance with the specified
// meter name. Uses graceful degradation: if any metric counter fails to
// initialize, logs a warning and uses a no-op counter instead of failing
// entirely.
//
// The meterName should be unified across all adapters (e.g.,
// "chainguard.ai.evalview") with the framework name serving as a dimension
// on the recorded metrics to differentiate between upstream protocols.
func NewCollection(meterName string) *Collection {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	inputTokens, err := meter.Int64Counter("trace.token.input",
		metric.WithDescription("The number of input tokens reported by traced steps"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create input tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		inputTokens = noop.Int64Counter{}
	}

	outputTokens, err := meter.Int64Counter("trace.token.output",
		metric.WithDescription("The number of output tokens reported by traced steps"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create output tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		outputTokens = noop.Int64Counter{}
	}

	stepCounter, err := meter.Int64Counter("trace.steps",
		metric.WithDescription("The number of steps captured across collected traces"),
		metric.WithUnit("{steps}"))
	if err != nil {
		slog.Warn("Failed to create step counter, metrics will be disabled", "error", err, "meter", meterName)
		stepCounter = noop.Int64Counter{}
	}

	skippedLines, err := meter.Int64Counter("trace.stream.skipped_lines",
		metric.WithDescription("The number of malformed stream lines discarded during collection"),
		metric.WithUnit("{lines}"))
	if err != nil {
		slog.Warn("Failed to create skipped lines counter, metrics will be disabled", "error", err, "meter", meterName)
		skippedLines = noop.Int64Counter{}
	}

	return &Collection{
		meter:        meter,
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
		stepCounter:  stepCounter,
		skippedLines: skippedLines,
	}
}

// SetAttributeEnricher sets the attribute enricher for this metrics
// instance. The enricher is called before recording each metric to add
// contextual attributes (e.g., suite, run, environment).
func (m *Collection) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordTokens records normalized input and output token usage for a
// framework with optional enrichment.
func (m *Collection) RecordTokens(ctx context.Context, framework string, inputTokens, outputTokens int64, attrs ...attribute.KeyValue) {
	baseAttrs := m.enrich(ctx, framework, attrs)
	m.inputTokens.Add(ctx, inputTokens, metric.WithAttributes(baseAttrs...))
	m.outputTokens.Add(ctx, outputTokens, metric.WithAttributes(baseAttrs...))
}

// RecordStep records one captured step with optional enrichment. The tool
// name is added as a base attribute when present.
func (m *Collection) RecordStep(ctx context.Context, framework, toolName string, attrs ...attribute.KeyValue) {
	if toolName != "" {
		attrs = append(attrs, attribute.String("tool", toolName))
	}
	baseAttrs := m.enrich(ctx, framework, attrs)
	m.stepCounter.Add(ctx, 1, metric.WithAttributes(baseAttrs...))
}

// RecordSkippedLine records one stream line discarded as malformed.
func (m *Collection) RecordSkippedLine(ctx context.Context, framework string, attrs ...attribute.KeyValue) {
	baseAttrs := m.enrich(ctx, framework, attrs)
	m.skippedLines.Add(ctx, 1, metric.WithAttributes(baseAttrs...))
}

func (m *Collection) enrich(ctx context.Context, framework string, attrs []attribute.KeyValue) []attribute.KeyValue {
	baseAttrs := []attribute.KeyValue{
		attribute.String("framework", framework),
	}
	if m.attrEnricher != nil {
		baseAttrs = m.attrEnricher(ctx, baseAttrs)
	}
	return append(baseAttrs, attrs...)
}
