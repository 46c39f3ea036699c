package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LabelsGeneratedTotal prometheus.Counter
	PDFsCreatedTotal     prometheus.Counter
	ExcelUploadsTotal    prometheus.Counter
	FilesArchivedTotal   prometheus.Counter
}

// New creates and registers all metrics on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barcode_api_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barcode_api_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LabelsGeneratedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barcode_api_labels_generated_total",
			Help: "Total number of barcode label images rendered",
		}),
		PDFsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barcode_api_pdfs_created_total",
			Help: "Total number of PDF collections assembled",
		}),
		ExcelUploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barcode_api_excel_uploads_total",
			Help: "Total number of Excel files ingested",
		}),
		FilesArchivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barcode_api_files_archived_total",
			Help: "Total number of files moved to the archive",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LabelsGeneratedTotal,
		m.PDFsCreatedTotal,
		m.ExcelUploadsTotal,
		m.FilesArchivedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latencies. The route template
// (not the raw path) is used as the label to keep cardinality bounded.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
