package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors shared by the API and worker
// services. Registering twice on the default registry panics, so each
// process builds exactly one instance.
type Metrics struct {
	JobsSubmitted    *prometheus.CounterVec
	JobsProcessed    *prometheus.CounterVec
	ProcessingTime   *prometheus.HistogramVec
	SymbolsExtracted *prometheus.CounterVec
	AdmissionDenied  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
}

// New creates and registers the collectors on reg. Pass
// prometheus.DefaultRegisterer for production use.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediascan",
			Name:      "jobs_submitted_total",
			Help:      "Jobs accepted by the API, by job type.",
		}, []string{"job_type"}),
		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediascan",
			Name:      "jobs_processed_total",
			Help:      "Jobs finished by the worker, by job type and final status.",
		}, []string{"job_type", "status"}),
		ProcessingTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mediascan",
			Name:      "job_processing_seconds",
			Help:      "Wall time spent processing one job.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"job_type"}),
		SymbolsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediascan",
			Name:      "symbols_extracted_total",
			Help:      "Decoded symbols enriched into result rows, by kind.",
		}, []string{"kind"}),
		AdmissionDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediascan",
			Name:      "admission_denied_total",
			Help:      "Requests rejected by rate limiting, by reason.",
		}, []string{"reason"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediascan",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mediascan",
			Name:      "worker_inflight_jobs",
			Help:      "Jobs currently being processed by this worker.",
		}),
	}
}
