package glide

import (
	"math"
	"testing"

	"soartask/pkg/geo"
	"soartask/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioPolar(t *testing.T, mc float64) *GlidePolar {
	t.Helper()
	// best L/D at 25 m/s sinking 0.7 m/s
	polar, err := NewGlidePolar(PolarCoefficients{A: 0.00056, B: 0, C: 0.35}, mc)
	require.NoError(t, err)
	return polar
}

func TestInstantSpeed_NoMacCready(t *testing.T) {
	polar := scenarioPolar(t, 0)
	leg := GlideResult{Vector: geo.Vector{Distance: 10000, Bearing: 60}, HeadWind: 4}

	for _, vario := range []float64{-3, 0, 0.5, 5} {
		state := model.AircraftState{Track: 30, GroundSpeed: 30, Vario: vario}
		want := math.Cos(30*math.Pi/180) * 30
		assert.Equal(t, want, InstantSpeed(state, leg, polar), "vario %v", vario)
	}
}

func TestInstantSpeed_ClimbingAboveMC(t *testing.T) {
	polar := scenarioPolar(t, 1.0)
	leg := GlideResult{Vector: geo.Vector{Distance: 10000, Bearing: 90}}

	tests := []struct {
		name        string
		groundSpeed float64
	}{
		{"Ground Speed 25", 25},
		{"Ground Speed 30", 30},
		{"Ground Speed 12", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := model.AircraftState{Track: 90, GroundSpeed: tt.groundSpeed, Vario: 2.0}
			// omega = 2, rho = 0.7
			rhoG := 2.0 / 2.7
			rhoA := 1 - rhoG
			want := rhoA*tt.groundSpeed + rhoG*25
			assert.InDelta(t, want, InstantSpeed(state, leg, polar), 1e-3)
		})
	}

	state := model.AircraftState{Track: 90, GroundSpeed: 25, Vario: 2.0}
	assert.InDelta(t, 0.259*25+0.741*25, InstantSpeed(state, leg, polar), 1e-3)
}

func TestInstantSpeed_Sinking(t *testing.T) {
	polar := scenarioPolar(t, 2.0)
	leg := GlideResult{Vector: geo.Vector{Distance: 10000, Bearing: 0}, HeadWind: 3}
	state := model.AircraftState{Track: 0, GroundSpeed: 20, Vario: -2.0}

	// omega = -1, rho_c = 0.5
	want := 0.5*20 + 0.5*(-3)
	assert.InDelta(t, want, InstantSpeed(state, leg, polar), 1e-9)
}

func TestInstantSpeed_Continuity(t *testing.T) {
	polar := scenarioPolar(t, 1.5)
	leg := GlideResult{Vector: geo.Vector{Distance: 10000, Bearing: 45}, HeadWind: 2}
	speed := func(vario float64) float64 {
		return InstantSpeed(model.AircraftState{Track: 40, GroundSpeed: 28, Vario: vario}, leg, polar)
	}

	const eps = 1e-9
	for _, omega := range []float64{0, 1} {
		vario := omega * polar.MC()
		below := speed(vario - eps)
		above := speed(vario + eps)
		assert.InDelta(t, below, above, 1e-6, "omega %v", omega)
		assert.False(t, math.IsNaN(speed(vario)))
		assert.False(t, math.IsInf(speed(vario), 0))
	}
}
