// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status labels for operation metrics.
const (
	StatusSuccess     = "success"
	StatusInvalidArgs = "invalid_args"
	StatusUnknown     = "unknown_operation"
	StatusError       = "error"
)

// unknownOperationLabel replaces client-supplied names that are not in the
// table, keeping label cardinality bounded.
const unknownOperationLabel = "_unknown"

// OperationTotal counts dispatched operations.
// Use RegisterMetrics to register this with a Prometheus registry.
var OperationTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "postline_operation_total",
		Help: "Total number of dispatched API operations",
	},
	[]string{"operation", "status"},
)

// OperationDuration observes how long operations take.
// Use RegisterMetrics to register this with a Prometheus registry.
var OperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "postline_operation_duration_seconds",
		Help:    "API operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// RegisterMetrics registers api metrics with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(OperationTotal)
	reg.MustRegister(OperationDuration)
}

func recordOperation(operation, status string, d time.Duration) {
	OperationTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}
