package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics instruments the intake conversation pipeline. A nil receiver
// is a no-op so callers can run without a registry in tests.
type TriageMetrics struct {
	turnsTotal   *prometheus.CounterVec
	emergencies  prometheus.Counter
	bookings     prometheus.Counter
	llmFallbacks prometheus.Counter
	llmLatency   prometheus.Histogram
}

// NewTriageMetrics builds and registers the triage collectors. reg may be
// nil, in which case the collectors exist but are not exported.
func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medikah",
			Subsystem: "triage",
			Name:      "turns_total",
			Help:      "Conversation turns processed, labeled by resulting stage.",
		}, []string{"stage"}),
		emergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medikah",
			Subsystem: "triage",
			Name:      "emergency_escalations_total",
			Help:      "Sessions escalated to emergency guidance.",
		}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medikah",
			Subsystem: "triage",
			Name:      "bookings_total",
			Help:      "Appointments confirmed through intake.",
		}),
		llmFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medikah",
			Subsystem: "triage",
			Name:      "llm_fallbacks_total",
			Help:      "Turns answered by the template table because generation failed.",
		}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medikah",
			Subsystem: "triage",
			Name:      "llm_latency_seconds",
			Help:      "Wall-clock latency of reply generation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.turnsTotal, m.emergencies, m.bookings, m.llmFallbacks, m.llmLatency)
	}
	return m
}

func (m *TriageMetrics) RecordTurn(stage string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage).Inc()
}

func (m *TriageMetrics) RecordEmergency() {
	if m == nil {
		return
	}
	m.emergencies.Inc()
}

func (m *TriageMetrics) RecordBooking() {
	if m == nil {
		return
	}
	m.bookings.Inc()
}

func (m *TriageMetrics) RecordLLMFallback() {
	if m == nil {
		return
	}
	m.llmFallbacks.Inc()
}

func (m *TriageMetrics) ObserveLLMLatency(seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.Observe(seconds)
}
