package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadius is the Earth radius (m) shared with orb's spherical formulas.
const EarthRadius = orb.EarthRadius

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// orbPoint converts to orb's lon/lat order.
func (p Point) orbPoint() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Distance calculates the Haversine distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	return orbgeo.DistanceHaversine(p1.orbPoint(), p2.orbPoint())
}

// DestinationPoint calculates the destination point from a start point, given distance (in meters) and bearing (in degrees).
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	dest := orbgeo.PointAtBearingAndDistance(start.orbPoint(), bearing, distMeters)
	return Point{Lat: dest.Lat(), Lon: dest.Lon()}
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees [0, 360).
func Bearing(p1, p2 Point) float64 {
	return NormalizeBearing(orbgeo.Bearing(p1.orbPoint(), p2.orbPoint()))
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}

// NormalizeBearing maps a bearing onto [0, 360).
func NormalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// Vector is a distance and a bearing from one point to another.
type Vector struct {
	Distance float64 // Meters
	Bearing  float64 // Degrees true
}

// NewVector returns the great-circle vector from p1 to p2.
func NewVector(p1, p2 Point) Vector {
	return Vector{
		Distance: Distance(p1, p2),
		Bearing:  Bearing(p1, p2),
	}
}

// Interpolate returns the point at fraction t along the straight line from p1 to p2.
// Adequate for the short distances inside an observation zone.
func Interpolate(p1, p2 Point, t float64) Point {
	return Point{
		Lat: p1.Lat + (p2.Lat-p1.Lat)*t,
		Lon: p1.Lon + (p2.Lon-p1.Lon)*t,
	}
}
