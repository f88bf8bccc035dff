// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the web process.

Architecture:

  - Own registry: nothing leaks into the global default registry, so tests can
    build as many collectors as they like.
  - HTTP: request count and latency labelled by chi route pattern, never by raw
    path, to keep label cardinality bounded.
  - Backend: every content API call, labelled by method and resource.
  - Admin: add/edit/remove outcomes per resource.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/scholar/internal/platform/middleware"
)

const namespace = "scholar"

// Collector owns the registry and the metric vectors.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	BackendCallsTotal   *prometheus.CounterVec
	BackendCallDuration *prometheus.HistogramVec
	PanelOperations     *prometheus.CounterVec
}

// New creates a Collector with its own Prometheus registry.
func New() *Collector {
	registry := prometheus.NewRegistry()

	collector := &Collector{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "route", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		BackendCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Total number of content API calls",
		}, []string{"method", "resource", "status_code"}),

		BackendCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Duration of content API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),

		PanelOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_operations_total",
			Help:      "Admin add/edit/remove operations by outcome",
		}, []string{"resource", "operation", "outcome"}),
	}

	registry.MustRegister(
		collector.HTTPRequestsTotal,
		collector.HTTPRequestDuration,
		collector.BackendCallsTotal,
		collector.BackendCallDuration,
		collector.PanelOperations,
	)

	return collector
}

// Registry returns the underlying registry.
func (m *Collector) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler that serves Prometheus metrics.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveBackendCall records one content API call. A zero status means the
// request never got a response.
func (m *Collector) ObserveBackendCall(method, resource string, statusCode int, duration time.Duration) {
	m.BackendCallsTotal.WithLabelValues(method, resource, strconv.Itoa(statusCode)).Inc()
	m.BackendCallDuration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// ObservePanelOperation records the outcome of an admin mutation.
func (m *Collector) ObservePanelOperation(resource, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.PanelOperations.WithLabelValues(resource, operation, outcome).Inc()
}

// Middleware records count and latency for every request, labelled by the
// matched chi route pattern.
func (m *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &middleware.StatusRecorder{ResponseWriter: writer, Status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.RecordHTTPRequest(request.Method, route, recorder.Status, time.Since(startTime))
	})
}
