// Package metrics exposes Prometheus instrumentation for the predictor service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects request, prediction and upstream metrics.
type Recorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass prometheus.NewRegistry()
// so that repeated construction does not collide on the default registry.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictor_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "predictor_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictor_predictions_total",
				Help: "Total number of prediction requests by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "predictor_history_fetch_duration_seconds",
				Help:    "Duration of upstream history requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route, status string, seconds float64) {
	r.requestsTotal.WithLabelValues(method, route, status).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObservePrediction records the outcome of a /predict call.
func (r *Recorder) ObservePrediction(outcome string) {
	r.predictions.WithLabelValues(outcome).Inc()
}

// ObserveFetch records an upstream history request.
func (r *Recorder) ObserveFetch(outcome string, seconds float64) {
	r.fetchDuration.WithLabelValues(outcome).Observe(seconds)
}
