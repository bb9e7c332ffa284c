package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBridgeMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBridgeMetrics(reg)
	m.ObserveEvent("message_created", "send_to_bot")
	m.ObserveBotCall("reply")
	m.ObserveWebhookLatency("message_created", 0.5)
}

func TestBridgeMetricsNilSafe(t *testing.T) {
	var m *BridgeMetrics
	m.ObserveEvent("event", "ignore")
	m.ObserveBotCall("empty")
	m.ObserveWebhookLatency("event", 0.1)
}
