package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insgw_fetches_total",
			Help: "Fetch runs by outcome and environment",
		},
		[]string{"outcome", "environment"}, // completed|timed_out|... , uat|prod
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insgw_upstream_requests_total",
			Help: "Scoring API calls by HTTP status code (error = transport failure)",
		},
		[]string{"code"},
	)

	PollDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insgw_poll_duration_seconds",
			Help:    "Wall-clock duration of polling runs",
			Buckets: []float64{0.5, 1, 3, 5, 10, 15, 30, 45, 60},
		},
		[]string{"outcome"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		FetchesTotal,
		UpstreamRequestsTotal,
		PollDuration,
	)
}
