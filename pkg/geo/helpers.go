package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Projection is a local flat projection around a reference point.
// X is east and Y is north, both in meters. Errors stay below a
// fraction of a percent over the tens of kilometers a task zone spans.
type Projection struct {
	origin    Point
	cosOrigin float64
}

// NewProjection creates a projection centred on origin.
func NewProjection(origin Point) Projection {
	return Projection{
		origin:    origin,
		cosOrigin: math.Cos(origin.Lat * math.Pi / 180.0),
	}
}

// Origin returns the reference point of the projection.
func (p Projection) Origin() Point {
	return p.origin
}

// Project converts a geographic point to planar meters.
func (p Projection) Project(pt Point) orb.Point {
	const metersPerRad = EarthRadius
	x := (pt.Lon - p.origin.Lon) * (math.Pi / 180.0) * metersPerRad * p.cosOrigin
	y := (pt.Lat - p.origin.Lat) * (math.Pi / 180.0) * metersPerRad
	return orb.Point{x, y}
}

// Unproject converts planar meters back to a geographic point.
func (p Projection) Unproject(xy orb.Point) Point {
	const metersPerRad = EarthRadius
	lat := p.origin.Lat + xy[1]/metersPerRad*(180.0/math.Pi)
	lon := p.origin.Lon
	if p.cosOrigin > 1e-9 {
		lon += xy[0] / (metersPerRad * p.cosOrigin) * (180.0 / math.Pi)
	}
	return Point{Lat: lat, Lon: lon}
}

// Ring projects a sequence of points into a closed planar ring.
func (p Projection) Ring(pts []Point) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, pt := range pts {
		ring = append(ring, p.Project(pt))
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// PolygonContains checks if a ring contains a planar point.
func PolygonContains(ring orb.Ring, point orb.Point) bool {
	return planar.RingContains(ring, point)
}

// SegmentsIntersect reports whether segment p1-p2 crosses segment q1-q2.
// Touching endpoints count as a crossing.
func SegmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}
