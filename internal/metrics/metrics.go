package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_events_published_total",
		Help: "Envelopes successfully handed to the broker by the relay",
	})

	EventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_events_failed_total",
		Help: "Publish attempts that errored",
	})

	EventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_events_delivered_total",
		Help: "Envelopes forwarded from the broker to the websocket transport",
	})

	PublishLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "realtime_publish_latency_seconds",
		Help:    "Broker publish call duration",
		Buckets: prometheus.DefBuckets,
	})

	OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_outbox_depth",
		Help: "Unpublished outbox rows, sampled each relay tick",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_websocket_active",
		Help: "Active websocket sessions",
	})

	TransportDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_transport_dropped_total",
		Help: "Envelopes dropped from full per-session send queues",
	})

	HandshakeRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_handshake_rejected_total",
		Help: "Websocket handshakes rejected before a session was created",
	})
)
