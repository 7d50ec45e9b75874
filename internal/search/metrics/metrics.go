package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote resolution outcomes.
const (
	OutcomeLocal       = "local"
	OutcomeKnown       = "known"
	OutcomeDiscovered  = "discovered"
	OutcomeUnresolved  = "unresolved"
	OutcomeError       = "error"
	OutcomeBreakerOpen = "breaker_open"
)

// Metrics tracks search latency, stage timings, remote resolution outcomes
// and result sizes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SearchDuration    *prometheus.HistogramVec
	StageDuration     *prometheus.HistogramVec
	RemoteResolutions *prometheus.CounterVec
	Matches           prometheus.Histogram
	FallbackSearches  *prometheus.CounterVec
}

// New registers the search metrics with reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usersearch_search_duration_seconds",
			Help:    "End-to-end search latency by searchBy",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"search_by"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usersearch_search_stage_duration_seconds",
			Help:    "Latency of individual search stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"stage"}),
		RemoteResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usersearch_remote_resolutions_total",
			Help: "Remote identity resolution attempts by outcome",
		}, []string{"outcome"}),
		Matches: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "usersearch_search_matches",
			Help:    "Match count per search before pagination",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}),
		FallbackSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usersearch_fallback_searches_total",
			Help: "Index searches run after the initial dispatch found nothing, by field",
		}, []string{"field"}),
	}
}

// ObserveSearch records a completed search. Call with the start time.
func (m *Metrics) ObserveSearch(searchBy string, start time.Time, matches int) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues(searchBy).Observe(time.Since(start).Seconds())
	m.Matches.Observe(float64(matches))
}

// ObserveStage records one pipeline stage. Call with the stage start time.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementRemoteResolution(outcome string) {
	if m == nil {
		return
	}
	m.RemoteResolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementFallback(field string) {
	if m == nil {
		return
	}
	m.FallbackSearches.WithLabelValues(field).Inc()
}
