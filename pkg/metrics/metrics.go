package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels a delivery attempt.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeFailed Outcome = "failed"
)

// Recorder receives fire-and-forget notification counters.
// Implementations must not block and must be safe for concurrent use.
type Recorder interface {
	NotificationCreated(channel string)
	DeliveryAttempted(channel string, outcome Outcome, duration time.Duration)
	NotificationRetried(channel string)
	NotificationDeleted()
}

// Noop discards everything.
type Noop struct{}

func (Noop) NotificationCreated(string)                       {}
func (Noop) DeliveryAttempted(string, Outcome, time.Duration) {}
func (Noop) NotificationRetried(string)                       {}
func (Noop) NotificationDeleted()                             {}

// Prometheus records counters and a delivery latency histogram.
type Prometheus struct {
	created          *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	retried          *prometheus.CounterVec
	deleted          prometheus.Counter
}

// NewPrometheus registers the collectors on reg. Registering twice on the same
// registry panics, so build one per process.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	f := promauto.With(reg)

	return &Prometheus{
		created: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Total number of notifications created",
		}, []string{"channel"}),
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_deliveries_total",
			Help:      "Total number of delivery attempts by outcome",
		}, []string{"channel", "outcome"}),
		deliveryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_delivery_duration_seconds",
			Help:      "Channel transport call duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"channel", "outcome"}),
		retried: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_retried_total",
			Help:      "Total number of notifications re-armed for delivery",
		}, []string{"channel"}),
		deleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_deleted_total",
			Help:      "Total number of notifications deleted",
		}),
	}
}

func (p *Prometheus) NotificationCreated(channel string) {
	p.created.WithLabelValues(channel).Inc()
}

func (p *Prometheus) DeliveryAttempted(channel string, outcome Outcome, duration time.Duration) {
	p.deliveries.WithLabelValues(channel, string(outcome)).Inc()
	p.deliveryDuration.WithLabelValues(channel, string(outcome)).Observe(duration.Seconds())
}

func (p *Prometheus) NotificationRetried(channel string) {
	p.retried.WithLabelValues(channel).Inc()
}

func (p *Prometheus) NotificationDeleted() {
	p.deleted.Inc()
}
