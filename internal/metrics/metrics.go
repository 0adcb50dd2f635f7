package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuthMetrics tracks authorization outcomes. Rejection reasons are recorded
// here and in logs only; callers never leak them to clients.
type AuthMetrics struct {
	Decisions    *prometheus.CounterVec
	LiveSessions prometheus.Gauge
	SweptTotal   prometheus.Counter
}

func New(reg prometheus.Registerer) *AuthMetrics {
	factory := promauto.With(reg)
	return &AuthMetrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobgate",
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Authorization decisions by result and internal reason.",
		}, []string{"result", "reason"}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "jobgate",
			Subsystem: "sessions",
			Name:      "live",
			Help:      "Sessions currently held by the session store.",
		}),
		SweptTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "jobgate",
			Subsystem: "sessions",
			Name:      "swept_total",
			Help:      "Expired sessions removed by the background sweeper.",
		}),
	}
}
