package core

import (
	"math"

	"github.com/signalsfoundry/tacsim/entity"
)

// EarthRadiusKm is the mean Earth radius used for all simple
// geometry calculations in the connectivity layer (kilometres).
const EarthRadiusKm = 6371.0

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// hasLineOfSight checks whether the straight segment between p1 and p2
// intersects the Earth sphere. If it does, the Earth blocks the line-of-sight
// and the function returns false.
//
// All positions are ECEF in kilometres.
func hasLineOfSight(p1, p2 Vec3) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		// Degenerate case: same point. If it's outside Earth, treat as LoS;
		// if inside, treat as blocked.
		return p1.Dot(p1) > EarthRadiusKm*EarthRadiusKm
	}

	// Find the closest point on the segment to the Earth's centre (origin).
	// t* minimises |p1 + t v|^2 over t ∈ ℝ.
	t := -p1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Vec3{
		X: p1.X + v.X*t,
		Y: p1.Y + v.Y*t,
		Z: p1.Z + v.Z*t,
	}

	// If the closest point lies inside or on the Earth sphere, the
	// segment intersects the Earth -> no LoS.
	return closest.Dot(closest) > EarthRadiusKm*EarthRadiusKm
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer, in degrees. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float64 {
	// Vector from observer to target.
	v := target.Sub(observer)
	vNorm := v.Norm()
	if vNorm == 0 {
		return 90
	}

	// Local zenith at observer is its normalised position vector.
	r := observer.Norm()
	if r == 0 {
		return 90
	}
	zenith := Vec3{
		X: observer.X / r,
		Y: observer.Y / r,
		Z: observer.Z / r,
	}

	// Angle between v and zenith.
	cosGamma := v.Dot(zenith) / vNorm
	if cosGamma > 1 {
		cosGamma = 1
	} else if cosGamma < -1 {
		cosGamma = -1
	}
	gammaDeg := math.Acos(cosGamma) * 180.0 / math.Pi

	// Elevation is measured from local horizon (90° − zenith angle).
	return 90.0 - gammaDeg
}

// AzimuthDegrees returns the azimuth of target as seen from observer,
// measured clockwise from local north in degrees [0, 360).
func AzimuthDegrees(observer, target Vec3) float64 {
	r := observer.Norm()
	if r == 0 {
		return 0
	}
	up := Vec3{X: observer.X / r, Y: observer.Y / r, Z: observer.Z / r}

	// East is perpendicular to both the polar axis and the local zenith;
	// north completes the local ENU frame.
	east := cross(Vec3{Z: 1}, up)
	eastNorm := east.Norm()
	if eastNorm == 0 {
		// Observer sits on the polar axis, where azimuth is undefined.
		return 0
	}
	east = Vec3{X: east.X / eastNorm, Y: east.Y / eastNorm, Z: east.Z / eastNorm}
	north := cross(up, east)

	v := target.Sub(observer)
	az := math.Atan2(v.Dot(east), v.Dot(north)) * 180.0 / math.Pi
	if az < 0 {
		az += 360
	}
	return az
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// BeamSample computes the az/el/range a beam would need to point from
// observer at target, stamped at t, for insertion into an entity's beam
// slice. Positions are ECEF kilometres; the returned sample's range is in
// metres to match entity.BeamUpdate's units.
func BeamSample(t float64, observer, target Vec3) entity.BeamUpdate {
	return entity.BeamUpdate{
		Time:         t,
		AzimuthRad:   AzimuthDegrees(observer, target) * math.Pi / 180.0,
		ElevationRad: ElevationDegrees(observer, target) * math.Pi / 180.0,
		RangeMeters:  observer.DistanceTo(target) * 1000.0,
	}
}

// HasLineOfSight reports whether the straight segment between two ECEF
// points (kilometres) clears the Earth, exported for callers deciding
// whether a computed BeamSample actually has a clear path.
func HasLineOfSight(p1, p2 Vec3) bool { return hasLineOfSight(p1, p2) }
