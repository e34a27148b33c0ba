package task

import (
	"math"

	"github.com/paulmach/orb"

	"soartask/pkg/geo"
	"soartask/pkg/oz"
)

const (
	// isoStep is the angular walk (radians) used to find where the ellipse leaves the zone.
	isoStep = math.Pi / 360
	// isoBisections refines each end of the segment onto the zone boundary.
	isoBisections = 48
	// isoMinSpan is the smallest usable parametric span (radians).
	isoMinSpan = 1e-6
)

// IsolineSegment is the part inside an area zone of the ellipse through the
// current target whose foci are the previous and next task positions. Every
// point on it gives the same distance previous, point, next.
type IsolineSegment struct {
	zone *oz.Zone
	proj geo.Projection

	center orb.Point
	axis   float64 // radians, major axis direction in the plane
	a, b   float64 // semi axes (m)

	phiMin, phiMax float64
	valid          bool
}

// NewIsolineSegment builds the isoline for the target of an area point.
func NewIsolineSegment(zone *oz.Zone, previous, target, next geo.Point) *IsolineSegment {
	iso := &IsolineSegment{zone: zone, proj: geo.NewProjection(zone.Reference)}
	if !zone.IsValid() || !zone.IsInSector(target) {
		return iso
	}

	f1 := iso.proj.Project(previous)
	f2 := iso.proj.Project(next)
	t := iso.proj.Project(target)

	iso.center = orb.Point{(f1[0] + f2[0]) / 2, (f1[1] + f2[1]) / 2}
	iso.axis = math.Atan2(f2[1]-f1[1], f2[0]-f1[0])
	c := math.Hypot(f2[0]-f1[0], f2[1]-f1[1]) / 2
	iso.a = (math.Hypot(t[0]-f1[0], t[1]-f1[1]) + math.Hypot(t[0]-f2[0], t[1]-f2[1])) / 2
	iso.b = math.Sqrt(math.Max(iso.a*iso.a-c*c, 0))
	if iso.b < 1 {
		// target on the course line between the foci
		return iso
	}

	phi0 := iso.phiOf(t)
	iso.phiMin = iso.walk(phi0, -1)
	iso.phiMax = iso.walk(phi0, +1)
	iso.valid = iso.phiMax-iso.phiMin > isoMinSpan
	return iso
}

// IsValid reports whether the segment has a usable extent.
func (iso *IsolineSegment) IsValid() bool {
	return iso.valid
}

// Parametric returns the point at t in [0,1] along the segment.
func (iso *IsolineSegment) Parametric(t float64) geo.Point {
	return iso.at(iso.phiMin + t*(iso.phiMax-iso.phiMin))
}

// Length returns the approximate arc length (m) of the segment.
func (iso *IsolineSegment) Length() float64 {
	if !iso.valid {
		return 0
	}
	const n = 32
	total := 0.0
	prev := iso.planar(iso.phiMin)
	for i := 1; i <= n; i++ {
		p := iso.planar(iso.phiMin + float64(i)/n*(iso.phiMax-iso.phiMin))
		total += math.Hypot(p[0]-prev[0], p[1]-prev[1])
		prev = p
	}
	return total
}

func (iso *IsolineSegment) planar(phi float64) orb.Point {
	x := iso.a * math.Cos(phi)
	y := iso.b * math.Sin(phi)
	sin, cos := math.Sincos(iso.axis)
	return orb.Point{
		iso.center[0] + x*cos - y*sin,
		iso.center[1] + x*sin + y*cos,
	}
}

func (iso *IsolineSegment) at(phi float64) geo.Point {
	return iso.proj.Unproject(iso.planar(phi))
}

// phiOf returns the eccentric anomaly of a planar point on the ellipse.
func (iso *IsolineSegment) phiOf(p orb.Point) float64 {
	dx := p[0] - iso.center[0]
	dy := p[1] - iso.center[1]
	sin, cos := math.Sincos(iso.axis)
	x := dx*cos + dy*sin
	y := -dx*sin + dy*cos
	return math.Atan2(y/iso.b, x/iso.a)
}

// walk steps from phi0 in dir until the ellipse leaves the zone, then
// bisects onto the boundary. It returns the last angle still inside.
func (iso *IsolineSegment) walk(phi0, dir float64) float64 {
	inside := phi0
	for step := isoStep; step <= math.Pi; step += isoStep {
		phi := phi0 + dir*step
		if !iso.zone.IsInSector(iso.at(phi)) {
			return iso.bisect(inside, phi)
		}
		inside = phi
	}
	// whole ellipse inside: stop half way round from each side
	return phi0 + dir*math.Pi
}

func (iso *IsolineSegment) bisect(in, out float64) float64 {
	for i := 0; i < isoBisections; i++ {
		mid := (in + out) / 2
		if iso.zone.IsInSector(iso.at(mid)) {
			in = mid
		} else {
			out = mid
		}
	}
	return in
}
