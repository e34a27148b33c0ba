package glide

import (
	"soartask/pkg/geo"
	"soartask/pkg/model"
)

// GlideState is the input to a single leg solve.
type GlideState struct {
	Vector geo.Vector
	// AltitudeDifference is the aircraft height (m) above the required arrival height.
	AltitudeDifference float64
	HeadWind           float64
}

// SolveLeg computes the MacCready time to cover one leg: glide at speed to fly,
// and climb at MC for whatever height the glide cannot cover.
func SolveLeg(polar *GlidePolar, state GlideState) GlideResult {
	res := GlideResult{
		Vector:             state.Vector,
		HeadWind:           state.HeadWind,
		AltitudeDifference: state.AltitudeDifference,
		Validity:           ResultOK,
	}
	if state.Vector.Distance <= 0 {
		return res
	}

	v := polar.SpeedToFly(state.HeadWind)
	vg := v - state.HeadWind
	if vg <= 0 {
		res.Validity = ResultWindExcessive
		return res
	}
	res.VOpt = v

	glideTime := state.Vector.Distance / vg
	res.HeightGlide = polar.SinkRate(v) * glideTime

	if state.AltitudeDifference >= res.HeightGlide {
		res.AltitudeDifference = state.AltitudeDifference - res.HeightGlide
		res.TimeElapsed = seconds(glideTime)
		return res
	}

	if polar.MC() <= 0 {
		res.Validity = ResultMacCreadyInsufficient
		return res
	}

	res.HeightClimb = res.HeightGlide - state.AltitudeDifference
	res.AltitudeDifference = 0
	res.TimeElapsed = seconds(glideTime + res.HeightClimb/polar.MC())
	return res
}

// Leg is one remaining leg of a task.
type Leg struct {
	Vector geo.Vector
	// MinArrivalAltitude is the lowest altitude (m MSL) allowed at the end of the leg.
	MinArrivalAltitude float64
}

// Solver solves multi-leg glides for a polar and wind.
type Solver struct {
	Polar        *GlidePolar
	Wind         model.Wind
	SafetyHeight float64 // m added to every arrival altitude
}

// SolveTask chains SolveLeg over the legs, carrying the arrival altitude of
// each leg into the next one. The first invalid leg ends the solve.
func (s Solver) SolveTask(state model.AircraftState, legs []Leg) GlideResult {
	total := GlideResult{Validity: ResultNoSolution}
	if s.Polar == nil || len(legs) == 0 {
		return total
	}
	total.Validity = ResultOK

	altitude := state.Altitude
	for _, leg := range legs {
		floor := leg.MinArrivalAltitude + s.SafetyHeight
		r := SolveLeg(s.Polar, GlideState{
			Vector:             leg.Vector,
			AltitudeDifference: altitude - floor,
			HeadWind:           s.Wind.HeadWind(leg.Vector.Bearing),
		})
		total.add(r)
		if !r.IsOk() {
			return total
		}
		altitude = floor + r.AltitudeDifference
	}
	return total
}
