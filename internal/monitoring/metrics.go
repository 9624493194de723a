package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector owns the Prometheus collectors of the service on a private
// registry.
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewMetricsCollector creates a collector with every metric registered
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catering_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	orderWrites := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catering_order_writes_total",
			Help: "Committed order writes",
		},
		[]string{"op"},
	)

	orderWriteFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catering_order_write_failures_total",
			Help: "Rolled back order writes by the step that failed",
		},
		[]string{"op", "step"},
	)

	orderValue := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catering_order_value",
			Help:    "Total amount of created orders",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	reviews := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catering_reviews_total",
			Help: "Reviews submitted and moderated by resulting status",
		},
		[]string{"status"},
	)

	recipeLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catering_recipe_lookups_total",
			Help: "Recipe finder calls by outcome",
		},
		[]string{"outcome"},
	)

	liveClients := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catering_live_clients",
			Help: "Connected live order feed clients",
		},
	)

	metrics := map[string]prometheus.Collector{
		"request_duration":     requestDuration,
		"order_writes":         orderWrites,
		"order_write_failures": orderWriteFailures,
		"order_value":          orderValue,
		"reviews":              reviews,
		"recipe_lookups":       recipeLookups,
		"live_clients":         liveClients,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the registry, mainly for tests
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Handler serves the registry in the Prometheus text format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records the latency of one HTTP request
func (mc *MetricsCollector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if histogram, ok := mc.metrics["request_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
	}
}

// RecordOrderWrite counts a committed create, update, delete or status change
func (mc *MetricsCollector) RecordOrderWrite(op string) {
	if counter, ok := mc.metrics["order_writes"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(op).Inc()
	}
}

// RecordOrderWriteFailure counts a rolled back write by its failed step
func (mc *MetricsCollector) RecordOrderWriteFailure(op, step string) {
	if counter, ok := mc.metrics["order_write_failures"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(op, step).Inc()
	}
}

// RecordOrderValue observes the total of a new order
func (mc *MetricsCollector) RecordOrderValue(total float64) {
	if histogram, ok := mc.metrics["order_value"].(prometheus.Histogram); ok {
		histogram.Observe(total)
	}
}

// RecordReview counts a review reaching status
func (mc *MetricsCollector) RecordReview(status string) {
	if counter, ok := mc.metrics["reviews"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(status).Inc()
	}
}

// RecordRecipeLookup counts a recipe finder call: ok, unparseable or error
func (mc *MetricsCollector) RecordRecipeLookup(outcome string) {
	if counter, ok := mc.metrics["recipe_lookups"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(outcome).Inc()
	}
}

// SetLiveClients reports how many live feed clients are connected
func (mc *MetricsCollector) SetLiveClients(n int) {
	if gauge, ok := mc.metrics["live_clients"].(prometheus.Gauge); ok {
		gauge.Set(float64(n))
	}
}
