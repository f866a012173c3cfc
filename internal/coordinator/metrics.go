package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Subsystem: "sync",
		Name:      "refresh_total",
		Help:      "Full refreshes by outcome (ok, error, skipped, discarded).",
	}, []string{"outcome"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendance",
		Subsystem: "sync",
		Name:      "refresh_duration_seconds",
		Help:      "Time spent fetching and folding the remote log.",
		Buckets:   prometheus.DefBuckets,
	})

	writeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Subsystem: "sync",
		Name:      "write_total",
		Help:      "Appends to the remote log by action and outcome.",
	}, []string{"action", "outcome"})

	rollbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Subsystem: "sync",
		Name:      "rollback_total",
		Help:      "Optimistic roster changes rolled back after a failed write.",
	})

	statusGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "attendance",
		Subsystem: "sync",
		Name:      "status",
		Help:      "Current sync status (0 offline, 1 connecting, 2 connected, 3 syncing, 4 error).",
	})

	droppedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "attendance",
		Subsystem: "ledger",
		Name:      "dropped_rows",
		Help:      "Rows dropped by the last successful refresh.",
	})
)
