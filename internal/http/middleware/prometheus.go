package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsPath = "/metrics"

// PrometheusMiddleware records request counts and latencies per route pattern.
type PrometheusMiddleware struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusMiddleware registers the HTTP collectors on reg. Registering twice on the
// same registry fails, so build one per registry.
func NewPrometheusMiddleware(reg prometheus.Registerer) (*PrometheusMiddleware, error) {
	count := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "path", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "path"})

	if err := reg.Register(count); err != nil {
		return nil, err
	}
	if err := reg.Register(duration); err != nil {
		reg.Unregister(count)
		return nil, err
	}
	return &PrometheusMiddleware{requestCount: count, requestDuration: duration}, nil
}

// Handler returns the fiber middleware. Scrapes of /metrics are not counted.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == metricsPath {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		// Route pattern, e.g. /api/projects/:id/, keeps label cardinality bounded.
		// Unmatched requests fall back to the catch-all pattern.
		route := c.Route().Path
		method := c.Method()

		m.requestCount.WithLabelValues(method, route, strconv.Itoa(finalStatus(c, err))).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
		return err
	}
}
