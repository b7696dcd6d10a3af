// Package metrics counts spec loads, code generations and live requests on a
// private prometheus registry. A nil *Collector records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "openapi2sdk"

// Collector owns the metric vectors and the registry they live on.
type Collector struct {
	registry *prometheus.Registry

	specLoadsTotal      *prometheus.CounterVec
	specLoadDuration    *prometheus.HistogramVec
	generationsTotal    *prometheus.CounterVec
	operationsGenerated *prometheus.CounterVec
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector registers every metric on a fresh registry.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.specLoadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spec_loads_total",
			Help:      "Total number of specification loads",
		},
		[]string{"source", "result"},
	)

	c.specLoadDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spec_load_duration_seconds",
			Help:      "Specification load duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	c.generationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of generated clients",
		},
		[]string{"language", "result"},
	)

	c.operationsGenerated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_generated_total",
			Help:      "Total number of operations rendered as client methods",
		},
		[]string{"language"},
	)

	c.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of executed API requests",
		},
		[]string{"method", "status"},
	)

	c.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Executed API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method"},
	)

	return c
}

// Registry exposes the registry for gathering and tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordSpecLoad records one call of the loader. source is "url" or
// "inline".
func (c *Collector) RecordSpecLoad(source string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	c.specLoadsTotal.WithLabelValues(source, result(err)).Inc()
	c.specLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordGeneration records one emitted client.
func (c *Collector) RecordGeneration(language string, operations int, err error) {
	if c == nil {
		return
	}
	c.generationsTotal.WithLabelValues(language, result(err)).Inc()
	if err == nil {
		c.operationsGenerated.WithLabelValues(language).Add(float64(operations))
	}
}

// RecordRequest records one executed API request. A status of 0 means the
// request never got a response.
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, statusClass(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// WriteToTextfile writes every metric in the node exporter textfile format.
func (c *Collector) WriteToTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return err
	}
	c.logger.Debug("metrics written", zap.String("path", path))
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "none"
	}
}
