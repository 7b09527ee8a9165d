package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry, the scrape server and the
// application-level metric vectors for the evalhub service.
type Metrics struct {
	Server      *http.Server
	Registry    *prometheus.Registry
	serviceName string

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	pageViewsTotal  *prometheus.CounterVec
	corpusItems     *prometheus.GaugeVec
	corpusReloads   *prometheus.CounterVec
}

func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}

	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m := &Metrics{
		Registry:    registry,
		serviceName: cfg.ServiceName,

		requestsTotal: createCounterVec(
			"http_requests_total",
			"Total HTTP requests by route, method and status code.",
			[]string{"route", "method", "status"},
		),
		requestDuration: createHistogramVec(
			"http_request_duration_seconds",
			"HTTP request latency by route.",
			[]string{"route"},
			prometheus.DefBuckets,
		),
		pageViewsTotal: createCounterVec(
			"page_views_total",
			"Recorded page views by framework.",
			[]string{"framework"},
		),
		corpusItems: createGaugeVec(
			"corpus_items",
			"Number of items in the loaded content corpus.",
			[]string{"source"},
		),
		corpusReloads: createCounterVec(
			"corpus_reloads_total",
			"Corpus reloads by outcome.",
			[]string{"outcome"},
		),
	}

	wrappedRegistry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.pageViewsTotal,
		m.corpusItems,
		m.corpusReloads,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	return m
}

// IncrementRequests increments the HTTP request counter.
func (m *Metrics) IncrementRequests(route, method, status string) {
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
}

// RecordRequestDuration records the elapsed time since start for a route.
func (m *Metrics) RecordRequestDuration(start time.Time, route string) {
	m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// IncrementPageViews increments the page-view counter for a framework.
// The framework label is used instead of the raw path to keep label
// cardinality bounded.
func (m *Metrics) IncrementPageViews(framework string) {
	m.pageViewsTotal.WithLabelValues(framework).Inc()
}

// SetCorpusItems records the size of the currently loaded corpus snapshot.
func (m *Metrics) SetCorpusItems(source string, n int) {
	m.corpusItems.WithLabelValues(source).Set(float64(n))
}

// IncrementCorpusReloads counts a corpus reload attempt.
func (m *Metrics) IncrementCorpusReloads(outcome string) {
	m.corpusReloads.WithLabelValues(outcome).Inc()
}
