package middlewares

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestLabels = []string{"method", "path", "status"}

type httpMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	inFlight prometheus.Gauge
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, requestLabels),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, requestLabels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served",
		}),
	}
	reg.MustRegister(m.duration, m.total, m.inFlight)
	return m
}

func (m *httpMetrics) handle(c *fiber.Ctx) error {
	m.inFlight.Inc()
	defer m.inFlight.Dec()

	start := time.Now()
	err := c.Next()

	labels := prometheus.Labels{
		"method": c.Method(),
		"path":   normalizeRoutePath(c),
		"status": normalizeStatus(c.Response().StatusCode()),
	}
	m.duration.With(labels).Observe(time.Since(start).Seconds())
	m.total.With(labels).Inc()
	return err
}

// normalizeRoutePath labels by route template, keeping ids out of the
// label set. Unmatched requests (404s) fall back to the raw path.
func normalizeRoutePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil {
		return route.Path
	}
	return c.Path()
}

// normalizeStatus buckets a status code: 2xx, 4xx, 5xx or the code itself.
func normalizeStatus(status int) string {
	switch status / 100 {
	case 2:
		return "2xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	}
	return strconv.Itoa(status)
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// AttachMetrics times every request into reg and serves reg on /metrics.
func AttachMetrics(app *fiber.App, reg *prometheus.Registry) {
	app.Use(newHTTPMetrics(reg).handle)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}
