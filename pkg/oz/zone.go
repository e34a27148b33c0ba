// Package oz implements task-point observation zones: the geometric regions
// that define valid entry and exit for a task leg.
package oz

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"soartask/pkg/geo"
	"soartask/pkg/rand"
	"soartask/pkg/solver"
)

// Shape tags the zone geometry variant.
type Shape int

const (
	// Cylinder is a circle of Radius around the reference.
	Cylinder Shape = iota
	// Line is a gate of length 2*Radius perpendicular to the course.
	Line
	// Sector is a pie slice of Radius and opening 2*HalfAngle.
	Sector
	// Keyhole is a sector with an additional inner cylinder.
	Keyhole
	// SymmetricQuadrant is a 90 degree sector symmetric about the leg bisector.
	SymmetricQuadrant

	numShapes
)

var shapeNames = [numShapes]string{
	Cylinder:          "cylinder",
	Line:              "line",
	Sector:            "sector",
	Keyhole:           "keyhole",
	SymmetricQuadrant: "quadrant",
}

func (s Shape) String() string {
	if s < 0 || s >= numShapes {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape maps a config name to a Shape.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown observation zone shape %q", name)
}

const (
	// arcStep is the angular resolution (degrees) of boundary arcs.
	arcStep = 2.0
	// minArcSegments keeps narrow sectors smooth.
	minArcSegments = 40
	// randomAttempts bounds rejection sampling in RandomPointInSector.
	randomAttempts = 200

	defaultKeyholeInner  = 500.0
	defaultKeyholeRadius = 10000.0
)

// Zone is one observation zone. Only SetLegs mutates it.
type Zone struct {
	Shape       Shape
	Reference   geo.Point
	Radius      float64 // m; half the gate length for lines
	InnerRadius float64 // m; keyhole only
	HalfAngle   float64 // degrees; sector half opening

	// bisector is the direction (degrees) the zone opens toward, away from the course.
	bisector float64
}

// NewCylinder creates a cylinder zone.
func NewCylinder(ref geo.Point, radius float64) *Zone {
	return &Zone{Shape: Cylinder, Reference: ref, Radius: radius}
}

// NewLine creates a gate of the given total length.
func NewLine(ref geo.Point, length float64) *Zone {
	return &Zone{Shape: Line, Reference: ref, Radius: length / 2, HalfAngle: 90}
}

// NewSector creates a sector with the given radius and total opening angle.
func NewSector(ref geo.Point, radius, opening float64) *Zone {
	return &Zone{Shape: Sector, Reference: ref, Radius: radius, HalfAngle: opening / 2}
}

// NewKeyhole creates the standard keyhole: 500m cylinder plus a 90 degree 10km sector.
func NewKeyhole(ref geo.Point) *Zone {
	return &Zone{
		Shape:       Keyhole,
		Reference:   ref,
		Radius:      defaultKeyholeRadius,
		InnerRadius: defaultKeyholeInner,
		HalfAngle:   45,
	}
}

// NewSymmetricQuadrant creates a 90 degree sector of the given radius.
func NewSymmetricQuadrant(ref geo.Point, radius float64) *Zone {
	return &Zone{Shape: SymmetricQuadrant, Reference: ref, Radius: radius, HalfAngle: 45}
}

// Bisector returns the direction the zone opens toward.
func (z *Zone) Bisector() float64 {
	return z.bisector
}

// IsValid reports whether the zone has a non-empty interior.
func (z *Zone) IsValid() bool {
	if z.Shape < 0 || z.Shape >= numShapes || z.Radius <= 0 {
		return false
	}
	switch z.Shape {
	case Sector, Line, Keyhole, SymmetricQuadrant:
		return z.HalfAngle > 0
	}
	return true
}

func (z *Zone) ops() shapeOps {
	return dispatch[z.Shape]
}

func (z *Zone) projection() geo.Projection {
	return geo.NewProjection(z.Reference)
}

// polar returns the planar distance (m) and compass bearing (degrees) of p from the reference.
func (z *Zone) polar(p geo.Point) (dist, bearing float64) {
	xy := z.projection().Project(p)
	dist = math.Hypot(xy[0], xy[1])
	bearing = geo.NormalizeBearing(math.Atan2(xy[0], xy[1]) * 180 / math.Pi)
	return dist, bearing
}

// at returns the point at dist meters on the given compass bearing from the reference.
func (z *Zone) at(proj geo.Projection, dist, bearing float64) geo.Point {
	rad := bearing * math.Pi / 180
	return proj.Unproject(orb.Point{dist * math.Sin(rad), dist * math.Cos(rad)})
}

// withinAngle reports whether bearing lies inside the opening around the bisector.
func (z *Zone) withinAngle(bearing float64) bool {
	return math.Abs(geo.NormalizeAngle(bearing-z.bisector)) <= z.HalfAngle+1e-9
}

// IsInSector reports whether location lies within the zone's closed region.
func (z *Zone) IsInSector(location geo.Point) bool {
	if !z.IsValid() {
		return false
	}
	return z.ops().inSector(z, location)
}

// CanStartThroughTop reports whether a start may be made by leaving the zone
// through its top rather than crossing its edge.
func (z *Zone) CanStartThroughTop() bool {
	return z.ops().startThroughTop
}

// ScoreAdjustment returns the distance (m) scoring deducts for this zone.
func (z *Zone) ScoreAdjustment() float64 {
	return z.ops().scoreAdjustment(z)
}

// Boundary returns a closed polygon approximating the zone edge. Arcs are
// circumscribed so every point IsInSector accepts lies on or inside it.
func (z *Zone) Boundary() []geo.Point {
	if !z.IsValid() {
		return []geo.Point{z.Reference}
	}
	return z.ops().boundary(z)
}

// BoundaryRing returns Boundary projected into the zone's plane.
func (z *Zone) BoundaryRing() (orb.Ring, geo.Projection) {
	proj := z.projection()
	return proj.Ring(z.Boundary()), proj
}

// TransitionConstraint reports whether moving from previous to current
// satisfies the zone's entry rules.
func (z *Zone) TransitionConstraint(current, previous geo.Point) bool {
	return z.ops().transition(z, current, previous)
}

// RandomPointInSector samples a point inside the zone. mag in [0,1] scales
// the sampled radius; rng may be nil for a fixed seed.
func (z *Zone) RandomPointInSector(mag float64, rng *rand.Rand) geo.Point {
	if rng == nil {
		rng = rand.New(1)
	}
	mag = solver.Clamp(mag, 0, 1)
	if !z.IsValid() || mag == 0 {
		return z.Reference
	}

	proj := z.projection()
	maxDist := z.Radius * mag
	for i := 0; i < randomAttempts; i++ {
		// area-uniform in the disc, rejected against the shape
		d := maxDist * math.Sqrt(rng.Float64())
		p := z.at(proj, d, rng.Range(0, 360))
		if z.IsInSector(p) {
			return p
		}
	}
	return z.Reference
}

// SetLegs orients the zone from its neighbours. Either may be nil for a start
// or finish; with neither the orientation is left alone.
func (z *Zone) SetLegs(previous, next *geo.Point) {
	switch {
	case previous != nil && next != nil:
		in := geo.Bearing(z.Reference, *previous)
		out := geo.Bearing(z.Reference, *next)
		mid := in + geo.NormalizeAngle(out-in)/2
		z.bisector = geo.NormalizeBearing(mid + 180)
	case next != nil:
		z.bisector = geo.NormalizeBearing(geo.Bearing(z.Reference, *next) + 180)
	case previous != nil:
		z.bisector = geo.NormalizeBearing(geo.Bearing(z.Reference, *previous) + 180)
	}
}

// LocationMax returns the zone point furthest from the course.
func (z *Zone) LocationMax() geo.Point {
	return z.at(z.projection(), z.Radius, z.bisector)
}

// LocationMin returns the zone point closest to the course.
func (z *Zone) LocationMin() geo.Point {
	if z.Shape == Cylinder {
		return z.at(z.projection(), z.Radius, z.bisector+180)
	}
	return z.Reference
}

// gate returns the two ends of a line zone.
func (z *Zone) gate() (geo.Point, geo.Point) {
	proj := z.projection()
	return z.at(proj, z.Radius, z.bisector-90), z.at(proj, z.Radius, z.bisector+90)
}
