package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TimeMachineCollector bundles the Prometheus metrics exported by the
// time-machine subsystem: clock-mode/playback events, and the shape of the
// data store the clock drives.
type TimeMachineCollector struct {
	gatherer prometheus.Gatherer

	ModeChanges      *prometheus.CounterVec
	DirectionChanges *prometheus.CounterVec
	TimeLoopsTotal   prometheus.Counter

	ActiveEntities prometheus.Gauge
	CurrentScale   prometheus.Gauge

	FrameUpdateDuration prometheus.Histogram
}

// NewTimeMachineCollector registers the time-machine Prometheus metrics
// against the provided registerer, defaulting to the global Prometheus
// registry when nil.
func NewTimeMachineCollector(reg prometheus.Registerer) (*TimeMachineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	modeChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timemachine_mode_changes_total",
		Help: "Total clock mode transitions, labeled by the mode entered.",
	}, []string{"mode"})
	modeChanges, err := registerCounterVec(reg, modeChanges, "timemachine_mode_changes_total")
	if err != nil {
		return nil, err
	}

	directionChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timemachine_direction_changes_total",
		Help: "Total clock direction transitions, labeled by the direction entered.",
	}, []string{"direction"})
	directionChanges, err = registerCounterVec(reg, directionChanges, "timemachine_direction_changes_total")
	if err != nil {
		return nil, err
	}

	loops, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timemachine_time_loops_total",
		Help: "Total number of clock loop-wraps from end bound to start bound.",
	}), "timemachine_time_loops_total")
	if err != nil {
		return nil, err
	}

	activeEntities, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timemachine_active_entities",
		Help: "Current number of entities tracked by the data store.",
	}), "timemachine_active_entities")
	if err != nil {
		return nil, err
	}

	currentScale, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timemachine_current_scale",
		Help: "Current clock time scale.",
	}), "timemachine_current_scale")
	if err != nil {
		return nil, err
	}

	frameDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timemachine_frame_update_duration_seconds",
		Help:    "Wall-clock duration of a single DataStore.Update(t) frame pass.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	}), "timemachine_frame_update_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &TimeMachineCollector{
		gatherer:            gatherer,
		ModeChanges:         modeChanges,
		DirectionChanges:    directionChanges,
		TimeLoopsTotal:      loops,
		ActiveEntities:      activeEntities,
		CurrentScale:        currentScale,
		FrameUpdateDuration: frameDuration,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TimeMachineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordModeChange counts a mode entered (its String() form, e.g. "STEP").
// A dedicated adapter in cmd/simulator implements timeline.ModeObserver and
// forwards into this method, since the label type here is a plain string
// rather than timeline.Mode (observability must not import timeline).
func (c *TimeMachineCollector) RecordModeChange(mode string) {
	if c == nil || c.ModeChanges == nil {
		return
	}
	c.ModeChanges.WithLabelValues(mode).Inc()
}

// RecordDirectionChange counts a direction entered.
func (c *TimeMachineCollector) RecordDirectionChange(direction string) {
	if c == nil || c.DirectionChanges == nil {
		return
	}
	c.DirectionChanges.WithLabelValues(direction).Inc()
}

// RecordTimeLoop counts a loop-wrap event.
func (c *TimeMachineCollector) RecordTimeLoop() {
	if c == nil || c.TimeLoopsTotal == nil {
		return
	}
	c.TimeLoopsTotal.Inc()
}

// SetActiveEntities records the data store's current entity count.
func (c *TimeMachineCollector) SetActiveEntities(n int) {
	if c == nil || c.ActiveEntities == nil {
		return
	}
	c.ActiveEntities.Set(float64(n))
}

// SetCurrentScale records the clock's current time scale.
func (c *TimeMachineCollector) SetCurrentScale(scale float64) {
	if c == nil || c.CurrentScale == nil {
		return
	}
	c.CurrentScale.Set(scale)
}

// ObserveFrameUpdate records how long a DataStore.Update(t) pass took.
func (c *TimeMachineCollector) ObserveFrameUpdate(seconds float64) {
	if c == nil || c.FrameUpdateDuration == nil {
		return
	}
	c.FrameUpdateDuration.Observe(seconds)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

// registerCounter and registerHistogram are defined in scheduler_metrics.go
// and shared by every collector in this package.
