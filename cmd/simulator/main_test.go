package main

import (
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/tacsim/internal/observability"
)

// TestIntegration_SingleSatAndGround wires a satellite and a ground station
// through newSimulation and drives a handful of ticks as an end-to-end
// smoke test.
func TestIntegration_SingleSatAndGround(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewTimeMachineCollector(reg)
	if err != nil {
		t.Fatalf("NewTimeMachineCollector: %v", err)
	}
	sliceMetrics, err := observability.NewDataSliceCollector(reg)
	if err != nil {
		t.Fatalf("NewDataSliceCollector: %v", err)
	}

	cfg := Config{
		Mode:         "realtime",
		RefYear:      1970,
		Duration:     5 * time.Second,
		TickInterval: time.Second,
	}
	sim, err := newSimulation(cfg, metrics, sliceMetrics, otel.Tracer("test"))
	if err != nil {
		t.Fatalf("newSimulation: %v", err)
	}

	start := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := sim.Tick(start.Add(time.Duration(i) * time.Second)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	satEntity := sim.store.Entity(sim.sat.ObjectID)
	if satEntity == nil {
		t.Fatalf("expected satellite entity to be created by InsertPlatformSample")
	}
	first, ok := satEntity.Platform.Current()
	if !ok {
		t.Fatalf("expected satellite platform slice to have a current sample")
	}

	if err := sim.Tick(start.Add(5 * time.Second)); err != nil {
		t.Fatalf("final tick: %v", err)
	}
	last, ok := satEntity.Platform.Current()
	if !ok {
		t.Fatalf("expected satellite platform slice to still have a current sample")
	}
	if first.Position == last.Position {
		t.Fatalf("expected satellite position to change over time, got %+v at both ends", first.Position)
	}

	groundEntity := sim.store.Entity(sim.ground.ObjectID)
	if groundEntity == nil {
		t.Fatalf("expected ground entity to be created")
	}
	groundSample, ok := groundEntity.Platform.Current()
	if !ok {
		t.Fatalf("expected ground platform slice to have a current sample")
	}
	if groundSample.Position.X != 6371000 || groundSample.Position.Y != 0 || groundSample.Position.Z != 0 {
		t.Fatalf("expected static ground coordinates to be preserved, got %+v", groundSample.Position)
	}

	if got := sim.store.EntityCount(); got != 2 {
		t.Fatalf("EntityCount = %d, want 2", got)
	}

	beam, ok := groundEntity.Beam.Current()
	if !ok {
		t.Fatalf("expected ground station to have a beam sample pointed at the satellite")
	}
	if beam.RangeMeters <= 0 {
		t.Fatalf("beam.RangeMeters = %v, want a positive slant range", beam.RangeMeters)
	}
	if beam.ElevationRad < -math.Pi/2 || beam.ElevationRad > math.Pi/2 {
		t.Fatalf("beam.ElevationRad = %v, out of [-pi/2, pi/2]", beam.ElevationRad)
	}
}

func TestParseModeRejectsUnknown(t *testing.T) {
	if _, err := parseMode("bogus"); err == nil {
		t.Fatalf("expected an error for an unknown clock mode")
	}
	for _, m := range []string{"step", "realtime", "freewheel", "simulation"} {
		if _, err := parseMode(m); err != nil {
			t.Fatalf("parseMode(%q): %v", m, err)
		}
	}
}

func TestEnvHelpersFallBackWhenUnset(t *testing.T) {
	t.Setenv("TACSIM_TEST_DURATION", "")
	if got := envDuration("TACSIM_TEST_DURATION", 2*time.Second); got != 2*time.Second {
		t.Fatalf("envDuration fallback = %v, want 2s", got)
	}
	t.Setenv("TACSIM_TEST_DURATION", "3s")
	if got := envDuration("TACSIM_TEST_DURATION", 2*time.Second); got != 3*time.Second {
		t.Fatalf("envDuration override = %v, want 3s", got)
	}
}
