package observability

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iapss/iapss-backend/internal/platform/logger"
)

const namespace = "iapss"

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	inferenceRequests *prometheus.CounterVec
	inferenceLatency  *prometheus.HistogramVec
	analysisResults   *prometheus.CounterVec

	recorderJobs  *prometheus.CounterVec
	recorderDepth prometheus.Gauge

	landingFeeds *prometheus.CounterVec
	rateLimited  *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return true
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Init builds the process-wide metrics once. Current returns nil until then.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// NewMetrics registers every collector on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "api_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "api_inflight_requests", Help: "HTTP requests being served.",
		}),
		inferenceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "inference_requests_total", Help: "Inference provider calls by outcome.",
		}, []string{"provider", "kind", "outcome"}),
		inferenceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "inference_duration_seconds", Help: "Inference provider latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider", "kind"}),
		analysisResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "analysis_results_total", Help: "Analysis results by kind and degradation reason.",
		}, []string{"kind", "fallback", "reason"}),
		recorderJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "recorder_jobs_total", Help: "History recording jobs by outcome.",
		}, []string{"outcome"}),
		recorderDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "recorder_queue_depth", Help: "Recording jobs waiting for a worker.",
		}),
		landingFeeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "landing_feed_resolutions_total", Help: "Landing feed lookups by serving tier.",
		}, []string{"feed", "source"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rate_limited_total", Help: "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.inferenceRequests, m.inferenceLatency, m.analysisResults,
		m.recorderJobs, m.recorderDepth,
		m.landingFeeds, m.rateLimited,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ApiInflightInc() { m.apiInflight.Inc() }

func (m *Metrics) ApiInflightDec() { m.apiInflight.Dec() }

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveInference(provider, kind, outcome string, dur time.Duration) {
	m.inferenceRequests.WithLabelValues(provider, kind, outcome).Inc()
	m.inferenceLatency.WithLabelValues(provider, kind).Observe(dur.Seconds())
}

// ObserveAnalysis counts a returned result; reason is "" for non-fallback results.
func (m *Metrics) ObserveAnalysis(kind string, fallback bool, reason string) {
	fb := "false"
	if fallback {
		fb = "true"
	}
	if reason == "" {
		reason = "none"
	}
	m.analysisResults.WithLabelValues(kind, fb, reason).Inc()
}

func (m *Metrics) ObserveRecorderJob(outcome string) {
	m.recorderJobs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetRecorderQueueDepth(n int) {
	m.recorderDepth.Set(float64(n))
}

func (m *Metrics) ObserveLandingFeed(feed, source string) {
	m.landingFeeds.WithLabelValues(feed, source).Inc()
}

func (m *Metrics) ObserveRateLimited(scope string) {
	m.rateLimited.WithLabelValues(scope).Inc()
}
