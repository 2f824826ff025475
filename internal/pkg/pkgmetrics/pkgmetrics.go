// Package pkgmetrics exposes the service's Prometheus metrics: counters for
// the logging pipeline's own health and for the fraud domain, plus HTTP
// request instrumentation. Each Metrics owns its registry so independent
// instances never collide.
package pkgmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	logsEmitted     *prometheus.CounterVec
	logsDropped     *prometheus.CounterVec
	sinkErrors      *prometheus.CounterVec
	serialFallbacks prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	transactionsTotal  *prometheus.CounterVec
	ruleExecutions     *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	alertQueueDepth    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		logsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Subsystem: "logging",
			Name:      "records_emitted_total",
			Help:      "Total number of log records emitted by level and component.",
		}, []string{"level", "component"}),
		logsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Subsystem: "logging",
			Name:      "records_dropped_total",
			Help:      "Total number of log records dropped because a sink queue was full.",
		}, []string{"component"}),
		sinkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Subsystem: "logging",
			Name:      "sink_write_errors_total",
			Help:      "Total number of failed sink writes by component.",
		}, []string{"component"}),
		serialFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Subsystem: "logging",
			Name:      "serialization_fallbacks_total",
			Help:      "Total number of field values replaced by their string form during serialization.",
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fraud_detection",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		transactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Name:      "transactions_total",
			Help:      "Total number of processed transactions by final status.",
		}, []string{"status"}),
		ruleExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Name:      "rule_executions_total",
			Help:      "Total number of rule evaluations by rule type and outcome.",
		}, []string{"rule_type", "outcome"}),
		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_detection",
			Name:      "notifications_total",
			Help:      "Total number of alert notifications by channel and outcome.",
		}, []string{"channel", "outcome"}),
		alertQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fraud_detection",
			Name:      "alert_queue_depth",
			Help:      "Number of alert events waiting for notification dispatch.",
		}),
	}
}

// Handler serves this instance's registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEmitted, RecordDropped, SinkWriteError and SerializationFallback
// give the logging pipeline a counter side channel without importing this
// package from there.

func (m *Metrics) RecordEmitted(level, component string) {
	m.logsEmitted.WithLabelValues(level, component).Inc()
}

func (m *Metrics) RecordDropped(component string) {
	m.logsDropped.WithLabelValues(component).Inc()
}

func (m *Metrics) SinkWriteError(component string) {
	m.sinkErrors.WithLabelValues(component).Inc()
}

func (m *Metrics) SerializationFallback() {
	m.serialFallbacks.Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) TransactionProcessed(status string) {
	m.transactionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RuleExecuted(ruleType string, matched bool) {
	outcome := "not_matched"
	if matched {
		outcome = "matched"
	}
	m.ruleExecutions.WithLabelValues(ruleType, outcome).Inc()
}

func (m *Metrics) NotificationResult(channel, outcome string) {
	m.notificationsTotal.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) SetAlertQueueDepth(n int) {
	m.alertQueueDepth.Set(float64(n))
}
