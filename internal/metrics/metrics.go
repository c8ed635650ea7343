package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	RunsTotal         prometheus.Counter
	RunFailures       prometheus.Counter
	ValidationErrors  prometheus.Counter
	AlertsEmitted     *prometheus.CounterVec
	ProcessingSeconds prometheus.Histogram
	StoresProcessed   prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "aggregation_runs_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "aggregation_run_failures_total"})
	validation := prometheus.NewCounter(prometheus.CounterOpts{Name: "aggregation_validation_errors_total"})
	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "aggregation_alerts_emitted_total"}, []string{"severity"})
	processing := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aggregation_processing_seconds",
		Buckets: prometheus.DefBuckets,
	})
	stores := prometheus.NewGauge(prometheus.GaugeOpts{Name: "aggregation_stores_processed"})

	r.MustRegister(runs, failures, validation, alerts, processing, stores)
	return &Registry{
		reg:               r,
		RunsTotal:         runs,
		RunFailures:       failures,
		ValidationErrors:  validation,
		AlertsEmitted:     alerts,
		ProcessingSeconds: processing,
		StoresProcessed:   stores,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveSnapshot records the outcome of one completed aggregation run.
func (r *Registry) ObserveSnapshot(processingSeconds float64, storesProcessed, validationErrors int, alertSeverities []string) {
	r.ProcessingSeconds.Observe(processingSeconds)
	r.StoresProcessed.Set(float64(storesProcessed))
	r.ValidationErrors.Add(float64(validationErrors))
	for _, sev := range alertSeverities {
		r.AlertsEmitted.WithLabelValues(sev).Inc()
	}
}
