package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 0},
			want: 0,
		},
		{
			name: "London to Paris",
			p1:   Point{Lat: 51.5074, Lon: -0.1278},
			p2:   Point{Lat: 48.8566, Lon: 2.3522},
			want: 344000, // Approx 344km
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 111319, // Approx 111km
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p1, tt.p2)
			// Allow 1% margin of error due to float precision/earth radius var
			margin := tt.want * 0.01
			if math.Abs(got-tt.want) > margin && tt.want != 0 {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"North", Point{Lat: 1, Lon: 0}, 0},
		{"East", Point{Lat: 0, Lon: 1}, 90},
		{"South", Point{Lat: -1, Lon: 0}, 180},
		{"West", Point{Lat: 0, Lon: -1}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(origin, tt.to), 1e-6)
		})
	}
}

func TestDestinationPoint_RoundTrip(t *testing.T) {
	start := Point{Lat: 47.5, Lon: 11.2}
	for _, brg := range []float64{0, 45, 133, 270, 359} {
		dest := DestinationPoint(start, 25000, brg)
		assert.InDelta(t, 25000, Distance(start, dest), 1)
		assert.InDelta(t, 0, NormalizeAngle(Bearing(start, dest)-brg), 0.01)
	}
}

func TestNormalizeBearing(t *testing.T) {
	assert.InDelta(t, 350, NormalizeBearing(-10), 1e-9)
	assert.InDelta(t, 10, NormalizeBearing(370), 1e-9)
	assert.InDelta(t, 0, NormalizeBearing(360), 1e-9)
}

func TestProjection_RoundTrip(t *testing.T) {
	origin := Point{Lat: 52.1, Lon: 5.3}
	proj := NewProjection(origin)

	pt := DestinationPoint(origin, 20000, 60)
	xy := proj.Project(pt)

	// Planar distance must match the great-circle distance closely at this scale.
	assert.InDelta(t, Distance(origin, pt), math.Hypot(xy[0], xy[1]), 20)

	back := proj.Unproject(xy)
	assert.InDelta(t, pt.Lat, back.Lat, 1e-9)
	assert.InDelta(t, pt.Lon, back.Lon, 1e-9)
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, q1, q2 orb.Point
		want           bool
	}{
		{"Cross", orb.Point{-1, 0}, orb.Point{1, 0}, orb.Point{0, -1}, orb.Point{0, 1}, true},
		{"Parallel", orb.Point{-1, 0}, orb.Point{1, 0}, orb.Point{-1, 1}, orb.Point{1, 1}, false},
		{"Short", orb.Point{-1, 0}, orb.Point{-0.5, 0}, orb.Point{0, -1}, orb.Point{0, 1}, false},
		{"Touching", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, -1}, orb.Point{0, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsIntersect(tt.p1, tt.p2, tt.q1, tt.q2))
		})
	}
}

func TestPolygonContains(t *testing.T) {
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	assert.True(t, PolygonContains(ring, orb.Point{5, 5}))
	assert.False(t, PolygonContains(ring, orb.Point{15, 5}))
}
