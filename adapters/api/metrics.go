package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service-level Prometheus collectors
type Metrics struct {
	registry           *prometheus.Registry
	AssessmentsTotal   *prometheus.CounterVec
	AssessmentDuration prometheus.Histogram
	TrainingRunsTotal  prometheus.Counter
	ModelAccuracy      prometheus.Gauge
}

// NewMetrics registers the service collectors on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AssessmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trialequity_assessments_total",
			Help: "Completed bias assessments by verdict",
		}, []string{"verdict"}),
		AssessmentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trialequity_assessment_duration_seconds",
			Help:    "End-to-end assessment latency",
			Buckets: prometheus.DefBuckets,
		}),
		TrainingRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "trialequity_training_runs_total",
			Help: "Completed model training runs",
		}),
		ModelAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trialequity_model_accuracy",
			Help: "Held-out accuracy of the active model bundle",
		}),
	}
}

// Handler exposes the registry in Prometheus exposition format
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
