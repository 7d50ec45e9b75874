package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected *prometheus.CounterVec
	Degraded prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usersearch_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter, by subject kind",
		}, []string{"subject"}),
		Degraded: factory.NewCounter(prometheus.CounterOpts{
			Name: "usersearch_ratelimit_degraded_checks_total",
			Help: "Rate limit checks served by the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRejected(subject string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(subject).Inc()
}

func (m *Metrics) IncrementDegraded() {
	if m == nil {
		return
	}
	m.Degraded.Inc()
}
