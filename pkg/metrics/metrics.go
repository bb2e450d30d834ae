package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	serviceName string

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	DBQueriesTotal       *prometheus.CounterVec
	DBQueryDuration      *prometheus.HistogramVec
	SagaExecutionsTotal  *prometheus.CounterVec
	CompensationFailures *prometheus.CounterVec
	GatewayCallsTotal    *prometheus.CounterVec
	EventsProcessedTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		serviceName: serviceName,
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		SagaExecutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_saga_executions_total",
			Help:        "Total number of booking saga executions by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		CompensationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_saga_compensation_failures_total",
			Help:        "Compensation steps that failed and require operator attention",
			ConstLabels: constLabels,
		}, []string{"step"}),
		GatewayCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_gateway_calls_total",
			Help:        "Outbound payment gateway calls by operation and result",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),
		EventsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_events_processed_total",
			Help:        "Inbound webhook events by type and result",
			ConstLabels: constLabels,
		}, []string{"event_type", "result"}),
	}
}

// ObserveSagaOutcome фиксирует исход выполнения саги: succeeded / failed / compensated / suspended
func (m *Metrics) ObserveSagaOutcome(outcome string) {
	if m == nil {
		return
	}
	m.SagaExecutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCompensationFailure фиксирует проваленную компенсацию шага саги.
// Алерт строится поверх этой метрики: висящая бронь или платежный метод -
// инцидент целостности данных, а не косметика.
func (m *Metrics) ObserveCompensationFailure(step string) {
	if m == nil {
		return
	}
	m.CompensationFailures.WithLabelValues(step).Inc()
}

// ObserveGatewayCall фиксирует исходящий вызов платежного шлюза
func (m *Metrics) ObserveGatewayCall(operation, result string) {
	if m == nil {
		return
	}
	m.GatewayCallsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveEvent фиксирует обработку входящего webhook-события
func (m *Metrics) ObserveEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.EventsProcessedTotal.WithLabelValues(eventType, result).Inc()
}
