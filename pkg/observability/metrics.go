package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conversion sources
const (
	SourceFile    = "file"
	SourceContent = "content"
	SourceHTTP    = "http"
	SourcePlugin  = "plugin"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Conversion metrics
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	GeneratedMethods   prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics. A nil registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proto2openrpc_conversions_total",
				Help: "Total number of proto to OpenRPC conversions",
			},
			[]string{"source", "status"},
		),
		ConversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proto2openrpc_conversion_duration_seconds",
				Help:    "Conversion duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"source"},
		),
		GeneratedMethods: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "proto2openrpc_generated_methods",
				Help:    "Number of methods per generated document",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proto2openrpc_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proto2openrpc_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.ConversionsTotal,
		m.ConversionDuration,
		m.GeneratedMethods,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// RecordConversion records the outcome of one conversion
func (m *Metrics) RecordConversion(source string, duration time.Duration, methods int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ConversionsTotal.WithLabelValues(source, status).Inc()
	m.ConversionDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err == nil {
		m.GeneratedMethods.Observe(float64(methods))
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments requests. Routes are labeled with the
// mux path template so the label set stays bounded.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := routeTemplate(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
