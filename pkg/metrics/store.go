package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics provides observability for store metadata operations.
//
// This interface is optional. Components given nil fall back to
// NewNoopStoreMetrics and pay nothing for it.
type StoreMetrics interface {
	// RecordOperation records a completed ROP with its outcome.
	//
	// Parameters:
	//   - operation: ROP name (e.g., "GetReceiveFolder", "ReadPerUserInformation")
	//   - duration: Time taken to complete the operation
	//   - err: Error if the operation failed, nil if successful
	RecordOperation(operation string, duration time.Duration, err error)

	// SetActiveSessions updates the number of open logon sessions.
	SetActiveSessions(count int)

	// RecordSessionClosed counts a closed session by reason ("logoff", "idle", "shutdown").
	RecordSessionClosed(reason string)

	// RecordPerUserBytes counts per-user BLOB bytes by direction ("read", "write").
	RecordPerUserBytes(direction string, n int)

	// RecordLogon counts a logon attempt by outcome ("success", "wrong-server", ...).
	RecordLogon(outcome string)
}

type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	activeSessions    prometheus.Gauge
	sessionsClosed    *prometheus.CounterVec
	perUserBytes      *prometheus.CounterVec
	logonsTotal       *prometheus.CounterVec
}

// NewStoreMetrics creates a Prometheus-backed StoreMetrics, or a no-op one
// when metrics are disabled.
func NewStoreMetrics() StoreMetrics {
	if !IsEnabled() {
		return NewNoopStoreMetrics()
	}

	reg := GetRegistry()
	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittostore_operations_total",
				Help: "Total number of store operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dittostore_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittostore_active_sessions",
				Help: "Current number of open logon sessions",
			},
		),
		sessionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittostore_sessions_closed_total",
				Help: "Total number of closed sessions by reason",
			},
			[]string{"reason"},
		),
		perUserBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittostore_per_user_bytes_total",
				Help: "Per-user information bytes transferred by direction",
			},
			[]string{"direction"},
		),
		logonsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittostore_logons_total",
				Help: "Total number of logon attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *storeMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *storeMetrics) SetActiveSessions(count int) {
	m.activeSessions.Set(float64(count))
}

func (m *storeMetrics) RecordSessionClosed(reason string) {
	m.sessionsClosed.WithLabelValues(reason).Inc()
}

func (m *storeMetrics) RecordPerUserBytes(direction string, n int) {
	m.perUserBytes.WithLabelValues(direction).Add(float64(n))
}

func (m *storeMetrics) RecordLogon(outcome string) {
	m.logonsTotal.WithLabelValues(outcome).Inc()
}

// noopStoreMetrics discards everything.
type noopStoreMetrics struct{}

// NewNoopStoreMetrics returns a StoreMetrics that records nothing.
func NewNoopStoreMetrics() StoreMetrics {
	return noopStoreMetrics{}
}

func (noopStoreMetrics) RecordOperation(string, time.Duration, error) {}
func (noopStoreMetrics) SetActiveSessions(int)                        {}
func (noopStoreMetrics) RecordSessionClosed(string)                   {}
func (noopStoreMetrics) RecordPerUserBytes(string, int)               {}
func (noopStoreMetrics) RecordLogon(string)                           {}
