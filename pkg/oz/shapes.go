package oz

import (
	"math"

	"soartask/pkg/geo"
)

// shapeOps is the per-shape dispatch entry.
type shapeOps struct {
	inSector        func(z *Zone, p geo.Point) bool
	boundary        func(z *Zone) []geo.Point
	scoreAdjustment func(z *Zone) float64
	transition      func(z *Zone, current, previous geo.Point) bool
	startThroughTop bool
}

var dispatch = [numShapes]shapeOps{
	Cylinder: {
		inSector:        cylinderInSector,
		boundary:        cylinderBoundary,
		scoreAdjustment: func(z *Zone) float64 { return z.Radius },
		transition:      anyTransition,
		startThroughTop: true,
	},
	Line: {
		inSector:        sectorInSector,
		boundary:        sectorBoundary,
		scoreAdjustment: noAdjustment,
		transition:      lineTransition,
		startThroughTop: false,
	},
	Sector: {
		inSector:        sectorInSector,
		boundary:        sectorBoundary,
		scoreAdjustment: noAdjustment,
		transition:      anyTransition,
		startThroughTop: true,
	},
	Keyhole: {
		inSector:        keyholeInSector,
		boundary:        keyholeBoundary,
		scoreAdjustment: func(z *Zone) float64 { return z.InnerRadius },
		transition:      anyTransition,
		startThroughTop: true,
	},
	SymmetricQuadrant: {
		inSector:        sectorInSector,
		boundary:        sectorBoundary,
		scoreAdjustment: noAdjustment,
		transition:      anyTransition,
		startThroughTop: true,
	},
}

func noAdjustment(*Zone) float64 { return 0 }

func anyTransition(*Zone, geo.Point, geo.Point) bool { return true }

// edgeTolerance (m) absorbs projection round-off for points placed on the edge.
const edgeTolerance = 1e-3

func cylinderInSector(z *Zone, p geo.Point) bool {
	d, _ := z.polar(p)
	return d <= z.Radius+edgeTolerance
}

func sectorInSector(z *Zone, p geo.Point) bool {
	d, brg := z.polar(p)
	if d > z.Radius+edgeTolerance {
		return false
	}
	// the apex belongs to the sector whatever its bearing
	return d < edgeTolerance || z.withinAngle(brg)
}

func keyholeInSector(z *Zone, p geo.Point) bool {
	d, _ := z.polar(p)
	if d <= z.InnerRadius+edgeTolerance {
		return true
	}
	return sectorInSector(z, p)
}

// circumscribed scales a radius so that polygon chords of step degrees stay outside the arc.
func circumscribed(radius, step float64) float64 {
	return radius / math.Cos(step/2*math.Pi/180)
}

// arc appends points from start to end bearing (degrees, end > start) at radius.
func (z *Zone) arc(pts []geo.Point, radius, start, end float64) []geo.Point {
	proj := z.projection()
	n := int(math.Ceil((end - start) / arcStep))
	if n < minArcSegments {
		n = minArcSegments
	}
	step := (end - start) / float64(n)
	r := circumscribed(radius, step)
	for i := 0; i <= n; i++ {
		pts = append(pts, z.at(proj, r, start+float64(i)*step))
	}
	return pts
}

func cylinderBoundary(z *Zone) []geo.Point {
	pts := z.arc(nil, z.Radius, 0, 360)
	// the last point repeats the first
	return pts[:len(pts)-1]
}

func sectorBoundary(z *Zone) []geo.Point {
	pts := []geo.Point{z.Reference}
	return z.arc(pts, z.Radius, z.bisector-z.HalfAngle, z.bisector+z.HalfAngle)
}

func keyholeBoundary(z *Zone) []geo.Point {
	start := z.bisector - z.HalfAngle
	end := z.bisector + z.HalfAngle
	pts := z.arc(nil, z.Radius, start, end)
	return z.arc(pts, z.InnerRadius, end, start+360)
}

// lineTransition requires the step to cross the gate itself.
func lineTransition(z *Zone, current, previous geo.Point) bool {
	proj := z.projection()
	a, b := z.gate()
	return geo.SegmentsIntersect(
		proj.Project(previous), proj.Project(current),
		proj.Project(a), proj.Project(b))
}
