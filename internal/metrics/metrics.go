package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wishfox/notifier/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsFannedOut  *prometheus.CounterVec
	NotificationsSent       *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	NotificationsStalled    *prometheus.CounterVec
	DeliveryLatency         *prometheus.HistogramVec
	QueueDepth              prometheus.GaugeFunc
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct. queueDepth is sampled on every scrape.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer, queueDepth func() int) *Metrics {
	m := &Metrics{
		NotificationsFannedOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_fanned_out_total",
			Help: "Total number of pending notifications created by fan-out.",
		}, []string{"type"}),

		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of successfully delivered notifications.",
		}, []string{"type"}),

		NotificationsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Total number of notifications terminalized without delivery.",
		}, []string{"type"}),

		NotificationsStalled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_stalled_total",
			Help: "Total number of deliveries left claimed after exhausting retries.",
		}, []string{"type"}),

		DeliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_delivery_seconds",
			Help:    "End-to-end delivery latency from claim to transport ack.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),

		QueueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "delivery_queue_depth",
			Help: "Current number of work items waiting in the delivery queue.",
		}, func() float64 { return float64(queueDepth()) }),
	}

	reg.MustRegister(
		m.NotificationsFannedOut,
		m.NotificationsSent,
		m.NotificationsSuppressed,
		m.NotificationsStalled,
		m.DeliveryLatency,
		m.QueueDepth,
	)

	return m
}

// FanOutHook returns the callback injected into the fan-out service.
func (m *Metrics) FanOutHook() func(domain.NotificationType, int) {
	return func(typ domain.NotificationType, count int) {
		m.NotificationsFannedOut.WithLabelValues(string(typ)).Add(float64(count))
	}
}

// WorkerHooks returns the metric callbacks expected by worker.MetricHooks.
// Centralises the prometheus observation calls so the worker package stays
// import-free.
func (m *Metrics) WorkerHooks() (
	onSent func(domain.NotificationType, time.Duration),
	onSuppressed func(domain.NotificationType),
	onStalled func(domain.NotificationType),
) {
	onSent = func(typ domain.NotificationType, latency time.Duration) {
		m.NotificationsSent.WithLabelValues(string(typ)).Inc()
		m.DeliveryLatency.WithLabelValues(string(typ)).Observe(latency.Seconds())
	}
	onSuppressed = func(typ domain.NotificationType) {
		m.NotificationsSuppressed.WithLabelValues(string(typ)).Inc()
	}
	onStalled = func(typ domain.NotificationType) {
		m.NotificationsStalled.WithLabelValues(string(typ)).Inc()
	}
	return
}
