// Package metrics registers the Prometheus instruments for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsCreated counts months locked via the settlement
	// lifecycle.
	SettlementsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_settlements_created_total",
		Help: "Number of month settlements created.",
	})

	// SettlementsRemoved counts months reopened.
	SettlementsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_settlements_removed_total",
		Help: "Number of month settlements removed (unsettled).",
	})

	// ReconciliationsComputed counts reconciliation runs.
	ReconciliationsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_reconciliations_total",
		Help: "Number of month reconciliations computed.",
	})

	// BudgetStatusesComputed counts budget status computations.
	BudgetStatusesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_budget_statuses_total",
		Help: "Number of budget rule statuses computed.",
	})

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homeledger_http_request_duration_seconds",
		Help:    "HTTP request duration by method, path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
