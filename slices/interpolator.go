package slices

import (
	"math"

	"github.com/signalsfoundry/tacsim/entity"
)

// Interpolator computes an intermediate sample at a time strictly between
// two bracketing samples. Per the source contract, a caller must never
// invoke these with t equal to prev's or next's time — that case is handled
// by returning the exact bracketing sample, not by interpolating.
type Interpolator interface {
	Platform(t float64, prev, next entity.PlatformUpdate) entity.PlatformUpdate
	Beam(t float64, prev, next entity.BeamUpdate) entity.BeamUpdate
	Gate(t float64, prev, next entity.GateUpdate) entity.GateUpdate
	Laser(t float64, prev, next entity.LaserUpdate) entity.LaserUpdate
	Projector(t float64, prev, next entity.ProjectorUpdate) entity.ProjectorUpdate
}

func fraction(t float64, prev, next Timed) float64 {
	span := next.TimeSec() - prev.TimeSec()
	if span <= 0 {
		return 0
	}
	return (t - prev.TimeSec()) / span
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}

// shortestArc interpolates an angle in radians along the shorter of the two
// arcs between a and b, wrapping the result into (-pi, pi].
func shortestArc(a, b, frac float64) float64 {
	delta := math.Mod(b-a+math.Pi, 2*math.Pi) - math.Pi
	if delta < -math.Pi {
		delta += 2 * math.Pi
	}
	result := math.Mod(a+delta*frac+math.Pi, 2*math.Pi)
	if result <= 0 {
		result += 2 * math.Pi
	}
	return result - math.Pi
}

// LinearInterpolator interpolates scalar fields linearly and angular fields
// along the shortest arc; ECEF positions are interpolated component-wise,
// matching the source's straight-line (chord) position interpolation rather
// than a great-circle path.
type LinearInterpolator struct{}

func (LinearInterpolator) Platform(t float64, prev, next entity.PlatformUpdate) entity.PlatformUpdate {
	f := fraction(t, prev, next)
	return entity.PlatformUpdate{
		Time: t,
		Position: entity.Position{
			X: lerp(prev.Position.X, next.Position.X, f),
			Y: lerp(prev.Position.Y, next.Position.Y, f),
			Z: lerp(prev.Position.Z, next.Position.Z, f),
		},
		Orientation: entity.Orientation{
			Yaw:   shortestArc(prev.Orientation.Yaw, next.Orientation.Yaw, f),
			Pitch: shortestArc(prev.Orientation.Pitch, next.Orientation.Pitch, f),
			Roll:  shortestArc(prev.Orientation.Roll, next.Orientation.Roll, f),
		},
	}
}

func (LinearInterpolator) Beam(t float64, prev, next entity.BeamUpdate) entity.BeamUpdate {
	f := fraction(t, prev, next)
	return entity.BeamUpdate{
		Time:         t,
		AzimuthRad:   shortestArc(prev.AzimuthRad, next.AzimuthRad, f),
		ElevationRad: shortestArc(prev.ElevationRad, next.ElevationRad, f),
		RangeMeters:  lerp(prev.RangeMeters, next.RangeMeters, f),
	}
}

func (LinearInterpolator) Gate(t float64, prev, next entity.GateUpdate) entity.GateUpdate {
	f := fraction(t, prev, next)
	return entity.GateUpdate{
		Time:         t,
		AzimuthRad:   shortestArc(prev.AzimuthRad, next.AzimuthRad, f),
		ElevationRad: shortestArc(prev.ElevationRad, next.ElevationRad, f),
		WidthRad:     lerp(prev.WidthRad, next.WidthRad, f),
		HeightRad:    lerp(prev.HeightRad, next.HeightRad, f),
		MinRange:     lerp(prev.MinRange, next.MinRange, f),
		MaxRange:     lerp(prev.MaxRange, next.MaxRange, f),
		CenterRange:  lerp(prev.CenterRange, next.CenterRange, f),
	}
}

func (LinearInterpolator) Laser(t float64, prev, next entity.LaserUpdate) entity.LaserUpdate {
	f := fraction(t, prev, next)
	return entity.LaserUpdate{
		Time:         t,
		AzimuthRad:   shortestArc(prev.AzimuthRad, next.AzimuthRad, f),
		ElevationRad: shortestArc(prev.ElevationRad, next.ElevationRad, f),
	}
}

func (LinearInterpolator) Projector(t float64, prev, next entity.ProjectorUpdate) entity.ProjectorUpdate {
	f := fraction(t, prev, next)
	return entity.ProjectorUpdate{
		Time:         t,
		AzimuthRad:   shortestArc(prev.AzimuthRad, next.AzimuthRad, f),
		ElevationRad: shortestArc(prev.ElevationRad, next.ElevationRad, f),
	}
}

// NearestNeighborInterpolator returns whichever of prev/next is closer in
// time to t, with ties broken toward prev.
type NearestNeighborInterpolator struct{}

func nearest(t float64, prevTime, nextTime float64) bool {
	return t-prevTime <= nextTime-t
}

func (NearestNeighborInterpolator) Platform(t float64, prev, next entity.PlatformUpdate) entity.PlatformUpdate {
	result := next
	if nearest(t, prev.Time, next.Time) {
		result = prev
	}
	result.Time = t
	return result
}

func (NearestNeighborInterpolator) Beam(t float64, prev, next entity.BeamUpdate) entity.BeamUpdate {
	result := next
	if nearest(t, prev.Time, next.Time) {
		result = prev
	}
	result.Time = t
	return result
}

func (NearestNeighborInterpolator) Gate(t float64, prev, next entity.GateUpdate) entity.GateUpdate {
	result := next
	if nearest(t, prev.Time, next.Time) {
		result = prev
	}
	result.Time = t
	return result
}

func (NearestNeighborInterpolator) Laser(t float64, prev, next entity.LaserUpdate) entity.LaserUpdate {
	result := next
	if nearest(t, prev.Time, next.Time) {
		result = prev
	}
	result.Time = t
	return result
}

func (NearestNeighborInterpolator) Projector(t float64, prev, next entity.ProjectorUpdate) entity.ProjectorUpdate {
	result := next
	if nearest(t, prev.Time, next.Time) {
		result = prev
	}
	result.Time = t
	return result
}
