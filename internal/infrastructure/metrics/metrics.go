// Package metrics expone las métricas Prometheus del ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const namespace = "stock_ledger"

// Metrics implementa inventory.Metrics sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	TransactionsTotal   *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	MovementsTotal      *prometheus.CounterVec
	AuditFailures       prometheus.Counter
	PublishFailures     prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ inventory.Metrics = (*Metrics)(nil)

// New registra las métricas del ledger y las estándar de Go y del proceso.
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{registry: registry}

	m.TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "transactions_total",
			Help:        "Transacciones del ledger por operación y resultado",
			ConstLabels: labels,
		},
		[]string{"operation", "status"},
	)
	m.TransactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "transaction_duration_seconds",
			Help:        "Duración de las transacciones del ledger",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			ConstLabels: labels,
		},
		[]string{"operation"},
	)
	m.MovementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "movements_total",
			Help:        "Movimientos confirmados por tipo",
			ConstLabels: labels,
		},
		[]string{"type"},
	)
	m.AuditFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "audit_write_failures_total",
		Help:        "Entradas de auditoría que no se pudieron escribir tras el commit",
		ConstLabels: labels,
	})
	m.PublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "event_publish_failures_total",
		Help:        "Eventos post-commit que no se pudieron publicar",
		ConstLabels: labels,
	})
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Peticiones HTTP",
			ConstLabels: labels,
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Duración de las peticiones HTTP",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			ConstLabels: labels,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		m.TransactionsTotal,
		m.TransactionDuration,
		m.MovementsTotal,
		m.AuditFailures,
		m.PublishFailures,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler handler HTTP del endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry devuelve el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveTransaction(operation string, success bool, elapsed time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.TransactionsTotal.WithLabelValues(operation, status).Inc()
	m.TransactionDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) IncMovement(movementType entity.MovementType) {
	m.MovementsTotal.WithLabelValues(string(movementType)).Inc()
}

func (m *Metrics) IncAuditFailure() { m.AuditFailures.Inc() }

func (m *Metrics) IncPublishFailure() { m.PublishFailures.Inc() }

// RecordHTTPRequest registra una petición. path es la ruta registrada, no la URL concreta.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
