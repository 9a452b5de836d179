package providers

import (
	"time"
	"timeclock/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncSaveFailures()
	IncSessionsMinted()
	IncSessionVerdict(verdict string)
	IncPinFailures()
	IncLockouts()
	SetEmployeesTotal(count int)
	SetShiftsTotal(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	saveFailures        prometheus.Counter
	sessionsMinted      prometheus.Counter
	sessionVerdicts     *prometheus.CounterVec
	pinFailures         prometheus.Counter
	lockouts            prometheus.Counter
	employeesTotal      prometheus.Gauge
	shiftsTotal         prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSaveFailures() {
	m.saveFailures.Inc()
}

func (m *MetricsProvider) IncSessionsMinted() {
	m.sessionsMinted.Inc()
}

func (m *MetricsProvider) IncSessionVerdict(verdict string) {
	m.sessionVerdicts.WithLabelValues(verdict).Inc()
}

func (m *MetricsProvider) IncPinFailures() {
	m.pinFailures.Inc()
}

func (m *MetricsProvider) IncLockouts() {
	m.lockouts.Inc()
}

func (m *MetricsProvider) SetEmployeesTotal(count int) {
	m.employeesTotal.Set(float64(count))
}

func (m *MetricsProvider) SetShiftsTotal(count int) {
	m.shiftsTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "timeclock_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timeclock_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "timeclock_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		saveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_save_failures_total",
			Help: "Total number of failed state saves",
		}),

		sessionsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_sessions_minted_total",
			Help: "Total number of clock sessions minted",
		}),

		sessionVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "timeclock_session_verdicts_total",
			Help: "Clock session verification outcomes",
		}, []string{"verdict"}),

		pinFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_pin_failures_total",
			Help: "Total number of rejected PIN submissions",
		}),

		lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "timeclock_lockouts_total",
			Help: "Total number of identity flows cancelled after exhausted PIN attempts",
		}),

		employeesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "timeclock_employees_total",
			Help: "Current number of employees",
		}),

		shiftsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "timeclock_shifts_total",
			Help: "Current number of shifts",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)        {}
func (n *noopMetrics) IncSaveFailures()                                  {}
func (n *noopMetrics) IncSessionsMinted()                                {}
func (n *noopMetrics) IncSessionVerdict(_ string)                        {}
func (n *noopMetrics) IncPinFailures()                                   {}
func (n *noopMetrics) IncLockouts()                                      {}
func (n *noopMetrics) SetEmployeesTotal(_ int)                           {}
func (n *noopMetrics) SetShiftsTotal(_ int)                              {}
