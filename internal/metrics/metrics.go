// Package metrics provides Prometheus instrumentation for the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EntryAttempts counts openShort attempts, partitioned by result.
	EntryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortflow_entry_attempts_total",
		Help: "Total short entry attempts",
	}, []string{"result"})

	// EntriesPlaced counts successfully placed entry orders.
	EntriesPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortflow_entries_placed_total",
		Help: "Entry orders accepted by the exchange",
	})

	// StopsPlaced counts successfully placed stop-loss orders.
	StopsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortflow_stops_placed_total",
		Help: "Stop-loss orders accepted by the exchange",
	})

	// RetriesExhausted counts cycles that gave up after max retries.
	RetriesExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortflow_retries_exhausted_total",
		Help: "Entry cycles that exhausted all retries",
	})

	// ReconcileErrors counts failed position reconciliations.
	ReconcileErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortflow_reconcile_errors_total",
		Help: "Failed exchange position queries during reconciliation",
	})

	// OpenPosition is 1 while a tracked short position is open.
	OpenPosition = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shortflow_open_position",
		Help: "Whether a tracked short position is currently open",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
