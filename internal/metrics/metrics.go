// Package metrics exposes Prometheus collectors for HTTP traffic and the
// import, image and period workflows.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
)

// Metrics owns its registry so several apps can live in one process (tests).
type Metrics struct {
	Registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	importRows *prometheus.CounterVec
	imageOps   *prometheus.CounterVec
	periods    prometheus.Counter
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		importRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_import_rows_total",
			Help:      "CSV import rows by import kind and outcome",
		}, []string{"kind", "outcome"}),
		imageOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_operations_total",
			Help:      "Product image operations",
		}, []string{"operation"}),
		periods: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periods_created_total",
			Help:      "Inventory periods created",
		}),
	}
}

// Middleware records count and latency per route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperr.HTTPStatus(err)
		}
		// Label values outlive the request; never hand fasthttp's buffers to the registry.
		path := utils.CopyString(c.Route().Path)
		if path == "" || path == "/" && c.Path() != "/" {
			path = "unmatched"
		}
		labels := []string{utils.CopyString(c.Method()), path, strconv.Itoa(status)}
		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ImportRow(kind, outcome string) {
	if m != nil {
		m.importRows.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) ImageOp(op string) {
	if m != nil {
		m.imageOps.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) PeriodCreated() {
	if m != nil {
		m.periods.Inc()
	}
}
