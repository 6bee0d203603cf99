package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DataSliceCollector exposes Prometheus metrics for the per-entity data
// slices a DataStore drives: how long a single slice recompute takes, how
// many retained samples get evicted by limiting, and how often a query
// lands on an interpolated sample versus an exact one.
type DataSliceCollector struct {
	gatherer prometheus.Gatherer

	SliceUpdateDuration      prometheus.Histogram
	ActiveSlices             prometheus.Gauge
	EvictionsTotal           prometheus.Counter
	InterpolationHitRatio    prometheus.Gauge
}

// NewDataSliceCollector registers data-slice metrics against the provided registerer.
func NewDataSliceCollector(reg prometheus.Registerer) (*DataSliceCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	updateHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dataslice_update_duration_seconds",
		Help:    "Duration of a single data slice's Update(t) recomputation.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
	updateHistogram, err := registerHistogram(reg, updateHistogram, "dataslice_update_duration_seconds")
	if err != nil {
		return nil, err
	}

	activeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dataslice_active_slices",
		Help: "Number of data slices currently retained across all entities.",
	})
	activeGauge, err = registerGauge(reg, activeGauge, "dataslice_active_slices")
	if err != nil {
		return nil, err
	}

	evictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dataslice_evictions_total",
		Help: "Cumulative number of samples evicted by LimitByTime/LimitByPoints.",
	})
	evictions, err = registerCounter(reg, evictions, "dataslice_evictions_total")
	if err != nil {
		return nil, err
	}

	hitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dataslice_interpolation_hit_ratio",
		Help: "Fraction of recent Update(t) calls that synthesized an interpolated sample rather than returning an exact one.",
	})
	hitRatio, err = registerGauge(reg, hitRatio, "dataslice_interpolation_hit_ratio")
	if err != nil {
		return nil, err
	}

	return &DataSliceCollector{
		gatherer:              gatherer,
		SliceUpdateDuration:   updateHistogram,
		ActiveSlices:          activeGauge,
		EvictionsTotal:        evictions,
		InterpolationHitRatio: hitRatio,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *DataSliceCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveSliceUpdate records a slice recomputation duration measurement.
func (c *DataSliceCollector) ObserveSliceUpdate(d time.Duration) {
	if c == nil || c.SliceUpdateDuration == nil {
		return
	}
	c.SliceUpdateDuration.Observe(d.Seconds())
}

// SetActiveSlices updates the retained-slice-count gauge.
func (c *DataSliceCollector) SetActiveSlices(count int) {
	if c == nil || c.ActiveSlices == nil {
		return
	}
	c.ActiveSlices.Set(float64(count))
}

// AddEvictions increments the eviction counter by n.
func (c *DataSliceCollector) AddEvictions(n int) {
	if c == nil || c.EvictionsTotal == nil || n <= 0 {
		return
	}
	c.EvictionsTotal.Add(float64(n))
}

// SetInterpolationHitRatio sets the interpolated-vs-exact sample ratio,
// clamped to [0,1].
func (c *DataSliceCollector) SetInterpolationHitRatio(ratio float64) {
	if c == nil || c.InterpolationHitRatio == nil {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.InterpolationHitRatio.Set(ratio)
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
