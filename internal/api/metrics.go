package api

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erazemk/lostfound/internal/model"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_http_requests_total",
		Help: "Total HTTP requests processed, labeled by route and status code",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lostfound_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	ledgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_ledger_operations_total",
		Help: "Ledger operations by outcome; rejected operations are labeled with their kind",
	}, []string{"operation", "outcome"})

	rewardsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_rewards_released_minor_units_total",
		Help: "Sum of rewards paid out to finders, in minor currency units",
	})
)

// observeOperation counts one ledger operation under its outcome.
func observeOperation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var rej *model.Rejection
		if errors.As(err, &rej) {
			outcome = string(rej.Kind)
		}
	}
	ledgerOperationsTotal.WithLabelValues(op, outcome).Inc()
}
