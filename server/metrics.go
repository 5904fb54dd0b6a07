package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the per-turn counters and latency histograms exposed at
// /metrics. A nil *Metrics is a no-op so tests can skip registration.
type Metrics struct {
	turnsTotal   *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agent",
				Name:      "turns_total",
				Help:      "Conversation turns handled, by turn and outcome.",
			},
			[]string{"turn", "outcome"},
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agent",
				Name:      "turn_duration_seconds",
				Help:      "Turn handling latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"turn"},
		),
	}
	reg.MustRegister(m.turnsTotal, m.turnDuration)
	return m
}

func (m *Metrics) ObserveTurn(turn string, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(turn, outcome).Inc()
}

func (m *Metrics) TurnTimer(turn string) *prometheus.Timer {
	if m == nil {
		return prometheus.NewTimer(noopObserver{})
	}
	return prometheus.NewTimer(m.turnDuration.WithLabelValues(turn))
}

type noopObserver struct{}

func (noopObserver) Observe(float64) {}
