// Package metrics expone métricas Prometheus del motor de lotes y de la API HTTP.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/lotes-api/internal/application/ports"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

const namespace = "lotes"

var _ ports.MovementNotifier = (*Metrics)(nil)

// Metrics agrupa los collectors en un registro propio.
type Metrics struct {
	registry      *prometheus.Registry
	movements     *prometheus.CounterVec
	movementUnits *prometheus.CounterVec
	txRetries     *prometheus.CounterVec
	txConflicts   prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New crea y registra los collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos del libro confirmados, por tipo.",
		}, []string{"kind"}),
		movementUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_units_total",
			Help:      "Unidades movidas por tipo de movimiento.",
		}, []string{"kind"}),
		txRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Reintentos de transacción por causa (serialization, deadlock, unique).",
		}, []string{"reason"}),
		txConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_conflicts_total",
			Help:      "Transacciones abandonadas tras agotar los reintentos.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.movements,
		m.movementUnits,
		m.txRetries,
		m.txConflicts,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// MovementsCommitted cuenta movimientos y unidades por tipo.
func (m *Metrics) MovementsCommitted(_ context.Context, movements []*entity.MovementEntry) {
	for _, mov := range movements {
		m.movements.WithLabelValues(mov.Kind).Inc()
		m.movementUnits.WithLabelValues(mov.Kind).Add(float64(mov.Quantity))
	}
}

// TxRetried registra un reintento de transacción.
func (m *Metrics) TxRetried(reason string) {
	m.txRetries.WithLabelValues(reason).Inc()
}

// TxConflict registra una transacción que agotó los reintentos.
func (m *Metrics) TxConflict() {
	m.txConflicts.Inc()
}

// ObserveHTTP registra una petición atendida.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
