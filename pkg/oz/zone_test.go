package oz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soartask/pkg/geo"
	"soartask/pkg/rand"
)

var (
	ref  = geo.Point{Lat: 47.0, Lon: 8.0}
	west = geo.DestinationPoint(ref, 30000, 270)
	east = geo.DestinationPoint(ref, 30000, 90)
	nrth = geo.DestinationPoint(ref, 30000, 0)
)

func allShapes() []*Zone {
	zones := []*Zone{
		NewCylinder(ref, 3000),
		NewLine(ref, 2000),
		NewSector(ref, 5000, 60),
		NewKeyhole(ref),
		NewSymmetricQuadrant(ref, 10000),
	}
	for _, z := range zones {
		z.SetLegs(&west, &nrth)
	}
	return zones
}

func TestDispatch_Complete(t *testing.T) {
	for s := Shape(0); s < numShapes; s++ {
		ops := dispatch[s]
		assert.NotNil(t, ops.inSector, s.String())
		assert.NotNil(t, ops.boundary, s.String())
		assert.NotNil(t, ops.scoreAdjustment, s.String())
		assert.NotNil(t, ops.transition, s.String())
	}
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape("keyhole")
	require.NoError(t, err)
	assert.Equal(t, Keyhole, s)

	_, err = ParseShape("donut")
	assert.Error(t, err)
	assert.Equal(t, "shape(42)", Shape(42).String())
}

func TestCylinder_IsInSector(t *testing.T) {
	z := NewCylinder(ref, 1000)
	assert.True(t, z.IsInSector(ref))
	assert.True(t, z.IsInSector(geo.DestinationPoint(ref, 990, 123)))
	assert.False(t, z.IsInSector(geo.DestinationPoint(ref, 1010, 123)))
}

func TestSector_Orientation(t *testing.T) {
	// inbound from the west, outbound to the east: the sector opens north or south
	// and must open away from the course, i.e. the bisector of 270 and 90 is either.
	z := NewSector(ref, 5000, 90)
	z.SetLegs(&west, &east)
	b := z.Bisector()
	assert.True(t, b < 1 || b > 359 || (b > 179 && b < 181), "bisector %v", b)

	// course west to north: the inside of the turn is north-west, so the zone opens south-east
	z.SetLegs(&west, &nrth)
	assert.InDelta(t, 135, z.Bisector(), 0.5)
	assert.True(t, z.IsInSector(geo.DestinationPoint(ref, 4000, 135)))
	assert.True(t, z.IsInSector(geo.DestinationPoint(ref, 4000, 175)))
	assert.False(t, z.IsInSector(geo.DestinationPoint(ref, 4000, 190)))
	assert.False(t, z.IsInSector(geo.DestinationPoint(ref, 4000, 315)))
	assert.True(t, z.IsInSector(ref))
}

func TestStartAndFinish_Orientation(t *testing.T) {
	start := NewLine(ref, 2000)
	start.SetLegs(nil, &east)
	assert.InDelta(t, 270, start.Bisector(), 0.5)

	finish := NewLine(ref, 2000)
	finish.SetLegs(&west, nil)
	assert.InDelta(t, 90, finish.Bisector(), 0.5)

	// no neighbours leaves the orientation untouched
	finish.SetLegs(nil, nil)
	assert.InDelta(t, 90, finish.Bisector(), 0.5)
}

func TestKeyhole_InnerCylinder(t *testing.T) {
	z := NewKeyhole(ref)
	z.SetLegs(&west, &nrth)
	behind := geo.DestinationPoint(ref, 400, 315)
	assert.True(t, z.IsInSector(behind))
	assert.False(t, z.IsInSector(geo.DestinationPoint(ref, 600, 315)))
	assert.True(t, z.IsInSector(geo.DestinationPoint(ref, 9000, 135)))
	assert.Equal(t, 500.0, z.ScoreAdjustment())
}

func TestCanStartThroughTop(t *testing.T) {
	for _, z := range allShapes() {
		assert.Equal(t, z.Shape != Line, z.CanStartThroughTop(), z.Shape.String())
	}
}

func TestScoreAdjustment(t *testing.T) {
	assert.Equal(t, 3000.0, NewCylinder(ref, 3000).ScoreAdjustment())
	assert.Equal(t, 0.0, NewSector(ref, 3000, 90).ScoreAdjustment())
	assert.Equal(t, 0.0, NewLine(ref, 3000).ScoreAdjustment())
	assert.Equal(t, 0.0, NewSymmetricQuadrant(ref, 3000).ScoreAdjustment())
}

func TestBoundary_ContainsSector(t *testing.T) {
	rng := rand.New(7)
	for _, z := range allShapes() {
		pts := z.Boundary()
		assert.GreaterOrEqual(t, len(pts), 40, z.Shape.String())

		ring, proj := z.BoundaryRing()
		for i := 0; i < 500; i++ {
			p := z.RandomPointInSector(1, rng)
			require.True(t, z.IsInSector(p), "%s sample outside sector", z.Shape)
			assert.True(t, geo.PolygonContains(ring, proj.Project(p)),
				"%s sample %v outside boundary", z.Shape, p)
		}
	}
}

func TestRandomPointInSector_Magnitude(t *testing.T) {
	z := NewCylinder(ref, 5000)
	assert.Equal(t, ref, z.RandomPointInSector(0, nil))
	assert.Equal(t, ref, z.RandomPointInSector(-3, nil))

	rng := rand.New(3)
	for i := 0; i < 100; i++ {
		p := z.RandomPointInSector(0.2, rng)
		assert.LessOrEqual(t, geo.Distance(ref, p), 1000*1.001)
	}

	degenerate := NewCylinder(ref, 0)
	assert.Equal(t, ref, degenerate.RandomPointInSector(1, rng))
	assert.False(t, degenerate.IsInSector(ref))
}

func TestLine_TransitionConstraint(t *testing.T) {
	z := NewLine(ref, 2000)
	z.SetLegs(nil, &east)

	before := geo.DestinationPoint(ref, 200, 270)
	after := geo.DestinationPoint(ref, 200, 90)
	assert.True(t, z.TransitionConstraint(after, before))

	// passing beyond the end of the gate
	aroundBefore := geo.DestinationPoint(geo.DestinationPoint(ref, 1500, 0), 200, 270)
	aroundAfter := geo.DestinationPoint(geo.DestinationPoint(ref, 1500, 0), 200, 90)
	assert.False(t, z.TransitionConstraint(aroundAfter, aroundBefore))

	// other shapes accept anything
	c := NewCylinder(ref, 1000)
	assert.True(t, c.TransitionConstraint(aroundAfter, aroundBefore))
}

func TestLocationRange(t *testing.T) {
	c := NewCylinder(ref, 2000)
	c.SetLegs(&west, &east)
	assert.InDelta(t, 2000, geo.Distance(ref, c.LocationMax()), 1)
	assert.InDelta(t, 2000, geo.Distance(ref, c.LocationMin()), 1)
	assert.True(t, c.IsInSector(c.LocationMax()))

	s := NewSector(ref, 2000, 90)
	s.SetLegs(&west, &nrth)
	assert.Equal(t, ref, s.LocationMin())
}

type loc geo.Point

func (l loc) Location() geo.Point { return geo.Point(l) }

func TestClient(t *testing.T) {
	c := NewClient(NewSymmetricQuadrant(ref, 10000))
	c.SetLegs(loc(west), loc(nrth))
	assert.InDelta(t, 135, c.Zone().Bisector(), 0.5)
	assert.True(t, c.IsInSector(geo.DestinationPoint(ref, 5000, 135)))
	assert.True(t, c.CanStartThroughTop())
	assert.Zero(t, c.ScoreAdjustment())
	assert.NotEmpty(t, c.Boundary())
	assert.True(t, c.TransitionConstraint(ref, west))
	assert.True(t, c.IsInSector(c.RandomPointInSector(1, rand.New(1))))

	// nil neighbours are safe
	c.SetLegs(nil, nil)
	assert.InDelta(t, 135, c.Zone().Bisector(), 0.5)
}
