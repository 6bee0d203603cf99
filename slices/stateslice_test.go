package slices

import (
	"math"
	"testing"

	"github.com/signalsfoundry/tacsim/entity"
)

func TestStateSliceLinearInterpolation(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 0, Position: entity.Position{X: 0}})
	s.Insert(entity.PlatformUpdate{Time: 10, Position: entity.Position{X: 100}})

	var lin LinearInterpolator
	s.Update(5, lin.Platform)

	cur, ok := s.Current()
	if !ok {
		t.Fatal("expected a current value")
	}
	if math.Abs(cur.Position.X-50) > 1e-9 {
		t.Fatalf("expected X=50, got %v", cur.Position.X)
	}
	if !s.IsInterpolated() {
		t.Fatal("expected IsInterpolated true at midpoint")
	}
}

func TestStateSliceExactSampleIsNotInterpolated(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 0, Position: entity.Position{X: 0}})
	s.Insert(entity.PlatformUpdate{Time: 10, Position: entity.Position{X: 100}})

	var lin LinearInterpolator
	s.Update(10, lin.Platform)

	cur, ok := s.Current()
	if !ok || cur.Position.X != 100 {
		t.Fatalf("expected exact sample at t=10, got %+v ok=%v", cur, ok)
	}
	if s.IsInterpolated() {
		t.Fatal("exact-time sample must not be flagged interpolated")
	}
}

func TestStateSliceHoldsLastBeyondFinalSample(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 0})
	s.Insert(entity.PlatformUpdate{Time: 10, Position: entity.Position{X: 100}})

	var lin LinearInterpolator
	s.Update(50, lin.Platform)

	cur, ok := s.Current()
	if !ok || cur.Position.X != 100 {
		t.Fatalf("expected hold at last sample, got %+v", cur)
	}
}

func TestStateSliceBeforeFirstSampleHasNoCurrent(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 10, Position: entity.Position{X: 100}})

	var lin LinearInterpolator
	s.Update(5, lin.Platform)

	if _, ok := s.Current(); ok {
		t.Fatal("expected no current value when t precedes every retained sample")
	}
	if s.IsInterpolated() {
		t.Fatal("expected IsInterpolated false when there is no current value")
	}
}

func TestStateSliceDeltaTime(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 5})
	s.Insert(entity.PlatformUpdate{Time: 10})

	if got := s.DeltaTime(3); got != -1 {
		t.Fatalf("DeltaTime(3) with no sample before it = %v, want -1", got)
	}
	if got := s.DeltaTime(12); got != 2 {
		t.Fatalf("DeltaTime(12) = %v, want 2 (gap since the t=10 sample)", got)
	}
}

func TestStateSliceNegativeTimeHasNoCurrent(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 0})
	var lin LinearInterpolator
	s.Update(-1, lin.Platform)
	if _, ok := s.Current(); ok {
		t.Fatal("expected no current value for t<0")
	}
}

func TestStateSliceShortestArcInterpolation(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 0, Orientation: entity.Orientation{Yaw: 3.0}})
	s.Insert(entity.PlatformUpdate{Time: 10, Orientation: entity.Orientation{Yaw: -3.0}})

	var lin LinearInterpolator
	s.Update(5, lin.Platform)
	cur, _ := s.Current()
	// The short way from 3.0 to -3.0 crosses +/-pi, so the midpoint should sit
	// near the wrap boundary, not near 0 (the long way's midpoint).
	if math.Abs(cur.Orientation.Yaw) < 2.5 {
		t.Fatalf("expected shortest-arc midpoint near +/-pi, got %v", cur.Orientation.Yaw)
	}
}

func TestStateSliceLimitByPoints(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	for i := 0; i < 10; i++ {
		s.Insert(entity.PlatformUpdate{Time: float64(i)})
	}
	s.SetLimits(3, 0)
	s.LimitByPrefs()
	if s.NumItems() != 3 {
		t.Fatalf("expected 3 retained items, got %d", s.NumItems())
	}
	if s.FirstTime() != 7 {
		t.Fatalf("expected oldest retained sample at t=7, got %v", s.FirstTime())
	}
}

func TestStateSliceLimitByTime(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	for i := 0; i < 10; i++ {
		s.Insert(entity.PlatformUpdate{Time: float64(i)})
	}
	s.SetLimits(0, 3)
	s.LimitByPrefs()
	if s.FirstTime() != 6 {
		t.Fatalf("expected window start at t=6 (9-3), got %v", s.FirstTime())
	}
}

func TestNearestNeighborInterpolator(t *testing.T) {
	s := NewStateSlice[entity.PlatformUpdate]()
	s.Insert(entity.PlatformUpdate{Time: 0, Position: entity.Position{X: 0}})
	s.Insert(entity.PlatformUpdate{Time: 10, Position: entity.Position{X: 100}})

	var nn NearestNeighborInterpolator
	s.Update(3, nn.Platform)
	cur, _ := s.Current()
	if cur.Position.X != 0 {
		t.Fatalf("expected nearest-neighbor to snap to t=0 sample, got %+v", cur)
	}

	s.Update(7, nn.Platform)
	cur, _ = s.Current()
	if cur.Position.X != 100 {
		t.Fatalf("expected nearest-neighbor to snap to t=10 sample, got %+v", cur)
	}
}
