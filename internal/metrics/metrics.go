package metrics

import (
	"net/http"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — метрики сервиса на собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	PredictionsTotal    *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	EmptyRecommendation *prometheus.CounterVec
	RateLimited         prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		PredictionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictions_total",
				Help: "Total number of prediction pipeline runs.",
			},
			[]string{"outcome"}, // success, failure
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prediction_stage_duration_seconds",
				Help:    "Time from the previous pipeline stage to this one.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"stage"},
		),
		EmptyRecommendation: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendations_empty_total",
				Help: "Predictions where a category got no matching products.",
			},
			[]string{"category"},
		),
		RateLimited: f.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the rate limiter.",
			},
		),
	}
}

func (m *Metrics) ObserveStage(stage usecase.Stage, d time.Duration) {
	m.StageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (m *Metrics) ObserveOutcome(outcome string) {
	m.PredictionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEmptyRecommendation(category domain.Category) {
	m.EmptyRecommendation.WithLabelValues(string(category)).Inc()
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
