// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for auth attempt metrics.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid"
	OutcomeTaken         = "taken"
	OutcomeUnknownUser   = "unknown_user"
	OutcomeWrongPassword = "wrong_password"
	OutcomeError         = "error"
)

// Attempts counts register and login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Attempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "postline_auth_attempts_total",
		Help: "Total number of register and login attempts",
	},
	[]string{"operation", "outcome"},
)

// RegisterMetrics registers auth metrics with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Attempts)
}

func recordAttempt(operation, outcome string) {
	Attempts.WithLabelValues(operation, outcome).Inc()
}
