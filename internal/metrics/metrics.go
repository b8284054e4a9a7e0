// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesAppended counts ledger entries accepted, by kind
	// ("expense" or "payment").
	EntriesAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chipin_ledger_entries_appended_total",
		Help: "Number of ledger entries accepted into group ledgers.",
	}, []string{"kind"})

	// BalanceComputations counts full balance recomputations. Balances are
	// derived on every read, so this tracks read-side load.
	BalanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chipin_balance_computations_total",
		Help: "Number of full group balance recomputations.",
	})

	// SettlementConflicts counts settlement recordings rejected because the
	// transfer reference was already in the ledger.
	SettlementConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chipin_settlement_conflicts_total",
		Help: "Number of duplicate settlement recordings rejected.",
	})

	// ValidationRejections counts entries rejected before reaching the ledger.
	ValidationRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chipin_validation_rejections_total",
		Help: "Number of ledger entries rejected by validation.",
	})
)
