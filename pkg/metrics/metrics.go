// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the lead lifecycle.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadcrm_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadcrm_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	leadsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadcrm_leads_created_total",
			Help: "Total number of leads created.",
		},
	)

	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadcrm_status_transitions_total",
			Help: "Total number of lead status transitions by target status.",
		},
		[]string{"to_status"},
	)
)

// Middleware records request counts and latency per route. Registered routes
// are used as the label, not raw paths, to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			method := c.Request().Method
			status := c.Response().Status

			httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// LeadCreated increments the lead creation counter.
func LeadCreated() {
	leadsCreatedTotal.Inc()
}

// StatusTransition increments the transition counter for the target status.
func StatusTransition(toStatus string) {
	statusTransitionsTotal.WithLabelValues(toStatus).Inc()
}
