package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDataSliceCollectorRecordsUpdatesAndEvictions(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewDataSliceCollector(reg)
	if err != nil {
		t.Fatalf("NewDataSliceCollector: %v", err)
	}

	collector.ObserveSliceUpdate(500 * time.Microsecond)
	collector.SetActiveSlices(12)
	collector.AddEvictions(4)
	collector.SetInterpolationHitRatio(1.5) // clamps to 1

	if got := testutil.ToFloat64(collector.ActiveSlices); got != 12 {
		t.Fatalf("dataslice_active_slices = %v, want 12", got)
	}
	if got := testutil.ToFloat64(collector.EvictionsTotal); got != 4 {
		t.Fatalf("dataslice_evictions_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(collector.InterpolationHitRatio); got != 1 {
		t.Fatalf("dataslice_interpolation_hit_ratio = %v, want clamped 1", got)
	}
}

func TestDataSliceCollectorNegativeEvictionsIgnored(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, _ := NewDataSliceCollector(reg)
	collector.AddEvictions(-3)
	if got := testutil.ToFloat64(collector.EvictionsTotal); got != 0 {
		t.Fatalf("expected negative eviction count to be ignored, got %v", got)
	}
}
