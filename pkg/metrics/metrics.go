// Package metrics expone contadores Prometheus de la caja: lotes escritos,
// planes de pago, guardas rechazadas y peticiones HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados usados como etiqueta "outcome".
const (
	OutcomeOK         = "ok"
	OutcomeInfeasible = "infeasible"
	OutcomeRejected   = "rejected"
	OutcomeError      = "error"
)

// Config namespace y subsistema de las métricas.
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig namespace "cashbox".
func DefaultConfig() Config {
	return Config{Namespace: "cashbox"}
}

// Metrics agrupa los colectores registrados en un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	BatchesTotal     *prometheus.CounterVec
	BatchAmountCents *prometheus.CounterVec
	PayoutPlans      *prometheus.CounterVec
	GuardRejections  *prometheus.CounterVec
	ReversalsTotal   *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New crea y registra los colectores.
func New(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "batches_total",
			Help:      "Lotes del ledger por tipo de evento y resultado",
		},
		[]string{"event", "outcome"},
	)
	m.BatchAmountCents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "batch_amount_cents_total",
			Help:      "Monto acumulado (centavos) de los lotes confirmados",
		},
		[]string{"event"},
	)
	m.PayoutPlans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "payout_plans_total",
			Help:      "Planes de pago calculados por resultado",
		},
		[]string{"universe", "outcome"},
	)
	m.GuardRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "guard_rejections_total",
			Help:      "Lotes rechazados porque la disponibilidad cambió antes del commit",
		},
		[]string{"universe"},
	)
	m.ReversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "reversals_total",
			Help:      "Reversas por modo y resultado",
		},
		[]string{"mode", "outcome"},
	)
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	m.registry.MustRegister(
		m.BatchesTotal,
		m.BatchAmountCents,
		m.PayoutPlans,
		m.GuardRejections,
		m.ReversalsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry devuelve el registro propio (útil en tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expone el registro en formato de texto Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBatch cuenta un lote; el monto solo se acumula si se confirmó.
func (m *Metrics) RecordBatch(event, outcome string, amountCents int64) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(event, outcome).Inc()
	if outcome == OutcomeOK && amountCents > 0 {
		m.BatchAmountCents.WithLabelValues(event).Add(float64(amountCents))
	}
}

// RecordPlan cuenta un plan de pago.
func (m *Metrics) RecordPlan(universe, outcome string) {
	if m == nil {
		return
	}
	m.PayoutPlans.WithLabelValues(universe, outcome).Inc()
}

// RecordGuardRejection cuenta un lote rechazado en el commit.
func (m *Metrics) RecordGuardRejection(universe string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(universe).Inc()
}

// RecordReversal cuenta una reversa.
func (m *Metrics) RecordReversal(mode, outcome string) {
	if m == nil {
		return
	}
	m.ReversalsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordHTTPRequest registra una petición terminada.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
