// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts applied vote transitions by target and transition
	// (create, switch, remove).
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_total",
			Help: "Applied vote transitions by target type and transition",
		},
		[]string{"target", "transition"},
	)

	// VoteConflictsTotal counts conditional-write conflicts on vote records
	// that were retried internally.
	VoteConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vote_conflicts_total",
			Help: "Vote record write conflicts retried internally",
		},
	)

	// RankingDuration tracks feed ranking latency per algorithm.
	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Feed ranking duration in seconds by algorithm",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"algorithm"},
	)

	// HTTPRequestsTotal counts handled requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Handled HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)
