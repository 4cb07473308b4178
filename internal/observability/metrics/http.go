package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics carries the API-side registry. Each binary owns its own
// registry so the API and worker never fight over collector names.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal       *prometheus.CounterVec
	batchesTotal       *prometheus.CounterVec
	batchSize          *prometheus.HistogramVec
	exportsTotal       *prometheus.CounterVec
	versionWritesTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docstore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docstore",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "intake",
			Name:      "uploads_total",
			Help:      "Total single-document uploads by status.",
		},
		[]string{"service", "status"},
	)
	batchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "intake",
			Name:      "batches_total",
			Help:      "Total submitted batches by status.",
		},
		[]string{"service", "status"},
	)
	batchSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docstore",
			Subsystem: "intake",
			Name:      "batch_size_files",
			Help:      "Distribution of files per submitted batch.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
		[]string{"service"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Total export requests by format and status.",
		},
		[]string{"service", "format", "status"},
	)
	versionWritesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "versions",
			Name:      "writes_total",
			Help:      "Total manually created document versions by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		batchesTotal,
		batchSize,
		exportsTotal,
		versionWritesTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		uploadsTotal:       uploadsTotal,
		batchesTotal:       batchesTotal,
		batchSize:          batchSize,
		exportsTotal:       exportsTotal,
		versionWritesTotal: versionWritesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource IDs so label cardinality stays bounded.
func normalizePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		if looksLikeID(segment) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func looksLikeID(segment string) bool {
	if len(segment) < 16 {
		if _, err := strconv.Atoi(segment); err == nil && segment != "" {
			return true
		}
		return false
	}
	return strings.Count(segment, "-") == 4
}

func (m *HTTPServerMetrics) RecordUpload(service string, err error) {
	m.uploadsTotal.WithLabelValues(service, statusLabel(err)).Inc()
}

func (m *HTTPServerMetrics) RecordBatchSubmit(service string, fileCount int, err error) {
	m.batchesTotal.WithLabelValues(service, statusLabel(err)).Inc()
	if err == nil {
		m.batchSize.WithLabelValues(service).Observe(float64(fileCount))
	}
}

func (m *HTTPServerMetrics) RecordExport(service, format string, err error) {
	if format == "" {
		format = "unknown"
	}
	m.exportsTotal.WithLabelValues(service, format, statusLabel(err)).Inc()
}

func (m *HTTPServerMetrics) RecordVersionWrite(service string, err error) {
	m.versionWritesTotal.WithLabelValues(service, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
