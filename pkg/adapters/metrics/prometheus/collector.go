package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	resolutions     *prometheus.CounterVec
	activeListeners prometheus.Gauge
	stateOperations *prometheus.CounterVec
	stateDuration   *prometheus.HistogramVec
}

// NewCollector creates a new Prometheus metrics collector on the default registry
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered on reg
func NewCollectorWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botutils_module_resolutions_total",
				Help: "Total number of module resolution requests by source",
			},
			[]string{"source"},
		),
		activeListeners: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "botutils_resolution_listeners",
				Help: "Number of registered fallback resolution listeners",
			},
		),
		stateOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botutils_state_operations_total",
				Help: "Total number of state storage operations",
			},
			[]string{"operation", "status"},
		),
		stateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "botutils_state_operation_duration_seconds",
				Help:    "State storage operation duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),
	}
}

// ObserveResolution counts a module resolution by source
func (c *Collector) ObserveResolution(source string) {
	c.resolutions.WithLabelValues(source).Inc()
}

// SetActiveListeners sets the number of registered resolution listeners
func (c *Collector) SetActiveListeners(count int) {
	c.activeListeners.Set(float64(count))
}

// RecordStateOperation records a state storage operation
func (c *Collector) RecordStateOperation(operation, status string, duration time.Duration) {
	c.stateOperations.WithLabelValues(operation, status).Inc()
	c.stateDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
