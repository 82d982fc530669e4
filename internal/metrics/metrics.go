// Package metrics exposes Prometheus counters for reconciliation outcomes.
// The sync loop increments them; cmd/reconciler serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsMatched counts settled payments by matching method.
	PaymentsMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentmatch_payments_matched_total",
		Help: "Payments settled against the rent ledger, by matching method.",
	}, []string{"method"})

	// PaymentsUnmatched counts transactions left for manual review.
	PaymentsUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentmatch_payments_unmatched_total",
		Help: "Inbound payments no matching strategy could attribute.",
	})

	// DepositsDetected counts payments classified as deposits.
	DepositsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentmatch_deposits_detected_total",
		Help: "Payments classified as move-in deposits instead of rent.",
	})

	// BelowThreshold counts payments rejected by the 50% gate.
	BelowThreshold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentmatch_payments_below_threshold_total",
		Help: "Matched payments rejected for being under the rent threshold.",
	})

	// LedgersSettled counts ledger periods closed as fully paid.
	LedgersSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentmatch_ledgers_settled_total",
		Help: "Ledger entries transitioned to fully paid.",
	})

	// AggregatedGroups counts partial-payment combinations committed.
	AggregatedGroups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentmatch_aggregated_groups_total",
		Help: "Multi-transaction partial payment groups settled.",
	})
)
