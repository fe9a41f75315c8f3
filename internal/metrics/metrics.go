// Package metrics exposes Prometheus collectors for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vidmind"

// Collector owns a private registry so several servers (and tests) can
// coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	uploadsTotal  *prometheus.CounterVec
	uploadBytes   prometheus.Histogram
	exportsTotal  *prometheus.CounterVec
	exportSeconds *prometheus.HistogramVec
	chatTotal     *prometheus.CounterVec
	sweptFiles    prometheus.Counter
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		uploadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Video uploads by outcome",
		}, []string{"outcome"}),
		uploadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_size_bytes",
			Help:      "Size of accepted video uploads",
			Buckets:   prometheus.ExponentialBuckets(1<<20, 4, 8),
		}),
		exportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Mind-map exports by format and outcome",
		}, []string{"format", "outcome"}),
		exportSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent writing mind-map documents",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		chatTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_answers_total",
			Help:      "Chat answers by matched rule",
		}, []string{"rule"}),
		sweptFiles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "janitor_removed_files_total",
			Help:      "Stale export files removed by the janitor",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpload records an upload attempt. size is only observed on success.
func (c *Collector) ObserveUpload(outcome string, size int64) {
	c.uploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.uploadBytes.Observe(float64(size))
	}
}

// ObserveExport records one export call.
func (c *Collector) ObserveExport(format, outcome string, d time.Duration) {
	c.exportsTotal.WithLabelValues(format, outcome).Inc()
	c.exportSeconds.WithLabelValues(format).Observe(d.Seconds())
}

// ObserveChat records which rule answered a question.
func (c *Collector) ObserveChat(rule string) {
	c.chatTotal.WithLabelValues(rule).Inc()
}

// ObserveSweep records files removed by a cleanup pass.
func (c *Collector) ObserveSweep(removed int) {
	c.sweptFiles.Add(float64(removed))
}
