// Package metrics defines the custom Prometheus metrics of the dealer admin
// API. HTTP request metrics come from the echoprometheus middleware; these
// cover domain outcomes.
//
// All metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealer_admin"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register/login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Dealer metrics ────────────────────────────────────────────────────────────

// DealerMutationsTotal counts successful dealer writes.
// Label:
//   - operation: "create", "update" or "remove"
var DealerMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dealer_mutations_total",
		Help:      "Total number of successful dealer mutations, by operation.",
	},
	[]string{"operation"},
)

// StatsDuration measures how long an aggregate request takes.
// Label:
//   - variant: "dealers" or "dashboard"
var StatsDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stats_duration_seconds",
		Help:      "Duration of dealer statistics computation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"variant"},
)
