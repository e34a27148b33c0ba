package glide

import (
	"math"

	"soartask/pkg/model"
)

// omegaGuard keeps the climb blend denominator away from zero.
const omegaGuard = 1e-6

// InstantSpeed estimates the instantaneous achieved speed toward the target
// of leg. It blends the ground speed projected on the leg with the speed
// made good while climbing (nothing but drift) and while gliding at best L/D,
// weighted by how the current vario compares to the MacCready setting.
func InstantSpeed(aircraft model.AircraftState, leg GlideResult, polar *GlidePolar) float64 {
	// projection of ground speed to target
	va := math.Cos((leg.Vector.Bearing-aircraft.Track)*math.Pi/180.0) * aircraft.GroundSpeed

	mc := polar.MC()
	// no climb expected, so the projected ground speed is all there is
	if mc <= 0 {
		return va
	}

	vBest := polar.VBestLD()
	sBest := polar.SBestLD()

	var rhoC, rhoG float64
	omega := aircraft.Vario / mc
	if omega > 0 {
		rho := math.Max(sBest/mc, 0)
		rhoG = omega / (omega + rho)
	} else {
		denom := omega - 1
		if denom > -omegaGuard {
			denom = -omegaGuard
		}
		rhoC = omega / denom
	}
	rhoA := 1 - rhoC - rhoG

	return rhoA*va + rhoC*(-leg.HeadWind) + rhoG*(vBest-leg.HeadWind)
}
