// Package metrics collects per-run counters for the repricing job. A batch job has no
// scrape endpoint, so the registry is written to a node_exporter textfile at the end.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jewelry_repricer"

const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
	OutcomeDryRun    = "dry_run"
)

type BatchMetrics struct {
	registry        *prometheus.Registry
	products        *prometheus.CounterVec
	variants        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runDuration     prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

func NewBatchMetrics() *BatchMetrics {
	m := &BatchMetrics{
		registry: prometheus.NewRegistry(),
		products: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "products_total",
				Help:      "Products visited by the repricing run.",
			},
			[]string{"result"},
		),
		variants: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "variants_total",
				Help:      "Variants priced, by outcome.",
			},
			[]string{"outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "shopify_request_duration_seconds",
				Help:      "Shopify Admin API request durations.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"operation", "status"},
		),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last repricing run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without a fatal error.",
		}),
	}
	m.registry.MustRegister(m.products, m.variants, m.requestDuration, m.runDuration, m.lastSuccess)
	return m
}

func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *BatchMetrics) ProductVisited(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.products.WithLabelValues(result).Inc()
}

func (m *BatchMetrics) VariantOutcome(outcome string) {
	if m == nil {
		return
	}
	m.variants.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one Shopify call.
func (m *BatchMetrics) ObserveRequest(operation string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(operation, classifyStatus(statusCode)).Observe(duration.Seconds())
}

func (m *BatchMetrics) RunFinished(duration time.Duration, succeeded bool, now time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Set(duration.Seconds())
	if succeeded {
		m.lastSuccess.Set(float64(now.Unix()))
	}
}

// WriteTextfile writes the registry in the text exposition format.
func (m *BatchMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	case statusCode == 0:
		return "transport_error"
	}
	return "unknown"
}
