package metrics

import "github.com/prometheus/client_golang/prometheus"

// BridgeMetrics exposes counters/histograms for webhook bridging flows.
type BridgeMetrics struct {
	eventsTotal    *prometheus.CounterVec
	botCallsTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	m := &BridgeMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total inbound Chatwoot webhook events by routing decision",
		}, []string{"event", "decision"}),
		botCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bridge",
			Subsystem: "bot",
			Name:      "calls_total",
			Help:      "Total Rasa conversation turns by outcome",
		}, []string{"outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bridge",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of webhook event handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.botCallsTotal, m.webhookLatency)
	return m
}

func (m *BridgeMetrics) ObserveEvent(event, decision string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(event, decision).Inc()
}

func (m *BridgeMetrics) ObserveBotCall(outcome string) {
	if m == nil {
		return
	}
	m.botCallsTotal.WithLabelValues(outcome).Inc()
}

func (m *BridgeMetrics) ObserveWebhookLatency(event string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(event).Observe(seconds)
}
