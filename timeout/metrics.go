package timeout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeTimedOut = "timed_out"
)

var (
	racesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebox_races_started_total",
		Help: "Number of races started, by race name.",
	}, []string{"name"})

	racesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timebox_races_resolved_total",
		Help: "Number of races resolved, by race name and outcome.",
	}, []string{"name", "outcome"})

	raceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timebox_race_duration_seconds",
		Help:    "Wall time from race start to resolution, by race name and outcome.",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"name", "outcome"})
)

func outcomeLabel(err error) string {
	switch err.(type) { //nolint:errorlint // classifying the top-level error, not the chain
	case nil:
		return outcomeSuccess
	case *TimedOutError:
		return outcomeTimedOut
	default:
		return outcomeFailure
	}
}
