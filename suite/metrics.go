/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Global metrics with consistent dimensions
	suiteRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suite_runs_total",
			Help: "Total number of suite executions per framework",
		},
		[]string{"framework"},
	)

	suiteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suite_run_failures_total",
			Help: "Total number of suite executions that failed at the transport level",
		},
		[]string{"framework"},
	)

	adapterHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "suite_adapter_healthy",
			Help: "Most recent health probe result per framework (1 healthy, 0 unreachable)",
		},
		[]string{"framework"},
	)
)
