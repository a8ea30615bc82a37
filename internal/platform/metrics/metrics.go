package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK    = "ok"
	ResultNoop  = "noop"
	ResultError = "error"
)

var (
	// DuelTransitions counts duel state changes by transition name and outcome.
	DuelTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_duel_transitions_total",
			Help: "Duel state transitions attempted, by transition and result",
		},
		[]string{"transition", "result"},
	)

	RatedVCOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_ratedvc_operations_total",
			Help: "Rated virtual contest operations, by operation and result",
		},
		[]string{"operation", "result"},
	)

	GitgudOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_gitgud_operations_total",
			Help: "Gitgud challenge operations, by operation and result",
		},
		[]string{"operation", "result"},
	)

	// ExpirySweeps counts runs of the pending duel expiry job.
	ExpirySweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_duel_expiry_sweeps_total",
			Help: "Runs of the pending duel expiry sweep, by result",
		},
		[]string{"result"},
	)

	ExpiredDuels = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tle_duel_expired_total",
			Help: "Pending duels moved to EXPIRED by the sweep",
		},
	)

	// RequestCounter counts operator API requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tle_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Result labels the outcome of a guarded write: error, noop for zero affected
// rows, ok otherwise.
func Result(affected int64, err error) string {
	switch {
	case err != nil:
		return ResultError
	case affected == 0:
		return ResultNoop
	}
	return ResultOK
}
