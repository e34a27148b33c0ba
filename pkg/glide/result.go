package glide

import (
	"time"

	"soartask/pkg/geo"
)

// Validity classifies the outcome of a glide solution.
type Validity int

const (
	// ResultOK is a usable solution.
	ResultOK Validity = iota
	// ResultWindExcessive means the head wind exceeds the cruise speed.
	ResultWindExcessive
	// ResultMacCreadyInsufficient means the glide is out of reach and no climb is expected.
	ResultMacCreadyInsufficient
	// ResultNoSolution means the solver was not run or had no input.
	ResultNoSolution
)

func (v Validity) String() string {
	switch v {
	case ResultOK:
		return "ok"
	case ResultWindExcessive:
		return "wind_excessive"
	case ResultMacCreadyInsufficient:
		return "mc_insufficient"
	case ResultNoSolution:
		return "no_solution"
	}
	return "unknown"
}

// GlideResult is the outcome of solving a leg or a whole task.
// It is recomputed on every evaluation and never stored long term.
type GlideResult struct {
	Vector   geo.Vector
	HeadWind float64 // m/s along the first leg, negative for tail wind
	// AltitudeDifference is the height (m) above the required arrival height on arrival.
	AltitudeDifference float64
	HeightClimb        float64 // m climbed at MC along the way
	HeightGlide        float64 // m lost gliding
	VOpt               float64 // cruise speed used, m/s
	TimeElapsed        time.Duration
	Validity           Validity
}

// IsOk reports whether the result is achievable.
func (r GlideResult) IsOk() bool {
	return r.Validity == ResultOK
}

// IsFinalGlide reports whether no climb is needed.
func (r GlideResult) IsFinalGlide() bool {
	return r.IsOk() && r.HeightClimb <= 0
}

// add appends a following leg to the result.
func (r *GlideResult) add(leg GlideResult) {
	if r.Vector.Distance == 0 {
		r.Vector.Bearing = leg.Vector.Bearing
		r.HeadWind = leg.HeadWind
		r.VOpt = leg.VOpt
	}
	r.Vector.Distance += leg.Vector.Distance
	r.HeightClimb += leg.HeightClimb
	r.HeightGlide += leg.HeightGlide
	r.TimeElapsed += leg.TimeElapsed
	r.AltitudeDifference = leg.AltitudeDifference
	r.Validity = leg.Validity
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
