package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	InvitesTotal         *prometheus.CounterVec
	TransitionsTotal     *prometheus.CounterVec
	ExpirySweepTotal     prometheus.Counter
	SharedDataViewsTotal *prometheus.CounterVec

	AuditLogsWrittenTotal prometheus.Counter
	AuditLogsDroppedTotal prometheus.Counter

	NotificationsTotal *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag. Prometheus collectors are
// registered once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		InvitesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "care_circle_invites_total",
				Help: "Total number of care circle invitations issued",
			},
			[]string{"result"},
		),
		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "care_circle_transitions_total",
				Help: "Total number of connection state transition attempts",
			},
			[]string{"event", "result"},
		),
		ExpirySweepTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "care_circle_expired_invites_total",
				Help: "Total number of pending invites revoked by the expiry sweep",
			},
		),
		SharedDataViewsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "care_circle_shared_data_views_total",
				Help: "Total number of shared data view requests",
			},
			[]string{"view", "result"},
		),
		AuditLogsWrittenTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "care_circle_audit_logs_written_total",
				Help: "Total number of audit log entries persisted",
			},
		),
		AuditLogsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "care_circle_audit_logs_dropped_total",
				Help: "Total number of audit log entries dropped due to a full buffer",
			},
		),
		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "care_circle_notifications_total",
				Help: "Total number of notification dispatch attempts",
			},
			[]string{"kind", "result"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) RecordInvite(result string) {
	m.InvitesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordTransition(event, result string) {
	m.TransitionsTotal.WithLabelValues(event, result).Inc()
}

func (m *Metrics) RecordExpirySweep(swept int64) {
	if swept > 0 {
		m.ExpirySweepTotal.Add(float64(swept))
	}
}

func (m *Metrics) RecordSharedDataView(view, result string) {
	m.SharedDataViewsTotal.WithLabelValues(view, result).Inc()
}

func (m *Metrics) RecordAuditLogsWritten(count int) {
	if count > 0 {
		m.AuditLogsWrittenTotal.Add(float64(count))
	}
}

func (m *Metrics) RecordAuditLogDropped() {
	m.AuditLogsDroppedTotal.Inc()
}

func (m *Metrics) RecordNotification(kind string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	m.NotificationsTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
