package metrics

import (
	"meetflow/config"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "meetflow"

const (
	SagaConfirmed   = "confirmed"
	SagaReplayed    = "replayed"
	SagaCompensated = "compensated"
	SagaFailed      = "failed"

	NotificationAccepted  = "accepted"
	NotificationDuplicate = "duplicate"
	NotificationDropped   = "dropped"
	NotificationInvalid   = "invalid"

	JobDone    = "done"
	JobRetried = "retried"
	JobFailed  = "failed"

	SubscriptionCreated = "created"
	SubscriptionRenewed = "renewed"
	SubscriptionErrored = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SagaOutcomes       *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	WebhookJobs        *prometheus.CounterVec
	HoldsExpired       prometheus.Counter
	Subscriptions      *prometheus.CounterVec
	WorkerTickDuration *prometheus.HistogramVec
}

func New(cfg *config.Config) *Metrics {
	namespace := cfg.Metrics.Namespace
	if namespace == "" {
		namespace = defaultNamespace
	}

	return newMetrics(namespace)
}

func newMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		SagaOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirm_saga_total",
			Help:      "Confirmation saga outcomes",
		}, []string{"outcome"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_notifications_total",
			Help:      "Provider notifications by ingestion result",
		}, []string{"result"}),

		WebhookJobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_jobs_total",
			Help:      "Webhook job attempts by resulting status",
		}, []string{"status"}),

		HoldsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_expired_total",
			Help:      "Bookings moved to expired by the sweeper",
		}),

		Subscriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_total",
			Help:      "Provider subscription maintenance actions",
		}, []string{"action"}),

		WorkerTickDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_tick_duration_seconds",
			Help:      "Duration of background worker ticks",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
	}
}

// NewNoop returns collectors on a private registry, for tests and tools.
func NewNoop() *Metrics {
	return newMetrics(defaultNamespace)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) RecordSaga(outcome string) {
	m.SagaOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordNotification(result string) {
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordJob(status string) {
	m.WebhookJobs.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordExpired(count int64) {
	m.HoldsExpired.Add(float64(count))
}

func (m *Metrics) RecordSubscription(action string) {
	m.Subscriptions.WithLabelValues(action).Inc()
}

// TrackTick returns a function that records how long a worker tick took.
func (m *Metrics) TrackTick(task string) func(start time.Time) {
	return func(start time.Time) {
		m.WorkerTickDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, http.StatusText(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
