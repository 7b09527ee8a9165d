package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver is an Observer implementation backed by Prometheus metrics.
// Every observed operation increments a counter labeled by component, operation
// and outcome, and records its duration in a histogram.
type PrometheusObserver struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collectors with the provided registerer.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_operations_total",
			Help: "Total client operations by component, operation and outcome.",
		},
		[]string{"component", "operation", "outcome"},
	)

	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_operation_duration_seconds",
			Help:    "Client operation latency by component and operation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"component", "operation"},
	)

	reg.MustRegister(operations, durations)

	return &PrometheusObserver{
		operations: operations,
		durations:  durations,
	}
}

// ObserveOperation implements Observer.
func (p *PrometheusObserver) ObserveOperation(ctx OperationContext) {
	outcome := "success"
	if ctx.Error != nil {
		outcome = "error"
	}

	p.operations.WithLabelValues(ctx.Component, ctx.Operation, outcome).Inc()
	p.durations.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
}
