// Package metrics exposes Prometheus instruments for the HTTP API and the
// frame loop.
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

const namespace = "scrollsite"

// Registry owns every instrument. Each Registry has its own prometheus
// registry so tests can create as many as they like.
type Registry struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	frameDuration  prometheus.Histogram
	activeTriggers prometheus.Gauge
	skipped        prometheus.Counter
	panics         prometheus.Counter
	refreshes      prometheus.Counter

	posts   *prometheus.CounterVec
	uploads *prometheus.CounterVec
}

// New creates a registry with Go runtime and process collectors attached.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent pushing one frame through the tracker.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		activeTriggers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_triggers",
			Help:      "Registered scroll triggers.",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_skips_total",
			Help:      "Frames where a trigger target was detached.",
		}),
		panics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_panics_total",
			Help:      "Recovered panics in trigger callbacks.",
		}),
		refreshes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Full geometry refreshes.",
		}),
		posts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blog_operations_total",
			Help:      "Blog store operations by kind and outcome.",
		}, []string{"op", "result"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Accepted uploads by media type.",
		}, []string{"type"}),
	}
}

// Registerer exposes the underlying registry for extra collectors.
func (r *Registry) Registerer() prometheus.Registerer { return r.reg }

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveFrame records one tracker frame.
func (r *Registry) ObserveFrame(d time.Duration, active int) {
	r.frameDuration.Observe(d.Seconds())
	r.activeTriggers.Set(float64(active))
}

func (r *Registry) ObserveSkip()    { r.skipped.Inc() }
func (r *Registry) ObservePanic()   { r.panics.Inc() }
func (r *Registry) ObserveRefresh() { r.refreshes.Inc() }

// ObserveBlog counts a store operation.
func (r *Registry) ObserveBlog(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.posts.WithLabelValues(op, result).Inc()
}

// ObserveUpload counts an accepted upload.
func (r *Registry) ObserveUpload(mediaType string) {
	r.uploads.WithLabelValues(mediaType).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware measures requests under a fixed route label; the label is the
// mux pattern, never the raw path, to keep cardinality bounded.
func (r *Registry) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, req)
		r.httpRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		r.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
