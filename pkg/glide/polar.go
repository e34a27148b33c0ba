// Package glide models aircraft glide performance and solves MacCready glides.
package glide

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"soartask/pkg/solver"
)

// ErrInvalidPolar is returned for polars that do not describe a flyable aircraft.
var ErrInvalidPolar = errors.New("invalid polar")

const (
	defaultVMax    = 75.0 // m/s, ~270 km/h
	speedTolerance = 0.01
)

// PolarPoint is one measured point of a polar: airspeed and sink rate.
type PolarPoint struct {
	V float64 // m/s
	W float64 // m/s, negative when sinking
}

// PolarShape is the three-point description of a polar used by flight computers.
type PolarShape [3]PolarPoint

// ParsePolarShape parses "v1,w1,v2,w2,v3,w3" with speeds in km/h and sinks in m/s.
// Sinks may be written with either sign; they are stored negative.
func ParsePolarShape(s string) (PolarShape, error) {
	var shape PolarShape

	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return shape, fmt.Errorf("%w: expected 6 values, got %d", ErrInvalidPolar, len(parts))
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return shape, fmt.Errorf("%w: value %d: %v", ErrInvalidPolar, i+1, err)
		}
		values[i] = v
	}

	for i := range shape {
		shape[i] = PolarPoint{
			V: values[2*i] / 3.6,
			W: -math.Abs(values[2*i+1]),
		}
	}
	return shape, nil
}

// String formats the shape back to the "v1,w1,..." form.
func (s PolarShape) String() string {
	parts := make([]string, 0, 6)
	for _, p := range s {
		parts = append(parts,
			strconv.FormatFloat(p.V*3.6, 'f', 1, 64),
			strconv.FormatFloat(p.W, 'f', 2, 64))
	}
	return strings.Join(parts, ",")
}

// Coefficients fits the parabola through the three points.
func (s PolarShape) Coefficients() (PolarCoefficients, error) {
	v1, v2, v3 := s[0].V, s[1].V, s[2].V
	w1, w2, w3 := s[0].W, s[1].W, s[2].W

	d := (v1 - v2) * (v1 - v3) * (v2 - v3)
	if d == 0 {
		return PolarCoefficients{}, fmt.Errorf("%w: polar speeds must be distinct", ErrInvalidPolar)
	}

	// Fit of the (negative) sink curve w(v); flipped to positive sink below.
	ca := (v3*(w2-w1) + v2*(w1-w3) + v1*(w3-w2)) / d
	cb := (v3*v3*(w1-w2) + v2*v2*(w3-w1) + v1*v1*(w2-w3)) / d
	cc := (v2*v3*(v2-v3)*w1 + v3*v1*(v3-v1)*w2 + v1*v2*(v1-v2)*w3) / d

	c := PolarCoefficients{A: -ca, B: -cb, C: -cc}
	if err := c.Validate(); err != nil {
		return PolarCoefficients{}, err
	}
	return c, nil
}

// PolarCoefficients describe the sink rate as a positive quantity:
// sink(v) = A v² + B v + C.
type PolarCoefficients struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

// Validate checks that the curve has a best glide speed.
func (c PolarCoefficients) Validate() error {
	if c.A <= 0 || c.C <= 0 {
		return fmt.Errorf("%w: coefficients a=%g c=%g must be positive", ErrInvalidPolar, c.A, c.C)
	}
	return nil
}

// GlidePolar is the aircraft performance model with the current MacCready setting.
type GlidePolar struct {
	coef PolarCoefficients
	mc   float64
	vMax float64

	vBestLD float64
	sBestLD float64
	vMin    float64
}

// NewGlidePolar creates a polar from coefficients and a MacCready setting (m/s).
func NewGlidePolar(coef PolarCoefficients, mc float64) (*GlidePolar, error) {
	if err := coef.Validate(); err != nil {
		return nil, err
	}
	p := &GlidePolar{
		coef: coef,
		vMax: defaultVMax,
	}
	p.vBestLD = math.Sqrt(coef.C / coef.A)
	p.sBestLD = p.SinkRate(p.vBestLD)
	p.vMin = math.Max(-coef.B/(2*coef.A), 1)
	if p.vMax < p.vBestLD {
		p.vMax = 2 * p.vBestLD
	}
	p.SetMC(mc)
	return p, nil
}

// MC returns the MacCready setting (m/s).
func (p *GlidePolar) MC() float64 {
	return p.mc
}

// SetMC updates the MacCready setting. Negative values are treated as zero.
func (p *GlidePolar) SetMC(mc float64) {
	p.mc = math.Max(mc, 0)
}

// SetVMax sets the maximum cruise speed considered by SpeedToFly.
func (p *GlidePolar) SetVMax(v float64) {
	if v > p.vMin {
		p.vMax = v
	}
}

// Coefficients returns the polar curve.
func (p *GlidePolar) Coefficients() PolarCoefficients {
	return p.coef
}

// VBestLD returns the speed of best lift/drag (m/s).
func (p *GlidePolar) VBestLD() float64 {
	return p.vBestLD
}

// SBestLD returns the sink rate at best lift/drag (m/s, positive).
func (p *GlidePolar) SBestLD() float64 {
	return p.sBestLD
}

// BestLD returns the best glide ratio.
func (p *GlidePolar) BestLD() float64 {
	return p.vBestLD / p.sBestLD
}

// VMinSink returns the speed of minimum sink (m/s).
func (p *GlidePolar) VMinSink() float64 {
	return p.vMin
}

// SinkRate returns the sink rate (m/s, positive) at airspeed v.
func (p *GlidePolar) SinkRate(v float64) float64 {
	return p.coef.A*v*v + p.coef.B*v + p.coef.C
}

// SpeedToFly returns the MacCready cruise speed (m/s) for the current setting
// and the given head wind. With MC at zero this is the speed of best glide
// over the ground.
func (p *GlidePolar) SpeedToFly(headWind float64) float64 {
	lo := math.Max(p.vMin, headWind+1)
	if lo >= p.vMax {
		return p.vMax
	}

	if p.mc <= 0 {
		// maximise ground glide ratio (v - hw) / sink(v)
		z := solver.NewZeroFinder(lo, p.vMax, speedTolerance)
		return z.FindMin(func(v float64) float64 {
			return -(v - headWind) / p.SinkRate(v)
		}, p.vBestLD)
	}

	if headWind == 0 {
		return solver.Clamp(math.Sqrt((p.coef.C+p.mc)/p.coef.A), lo, p.vMax)
	}

	// minimise time per unit distance including the climb to regain the height
	z := solver.NewZeroFinder(lo, p.vMax, speedTolerance)
	return z.FindMin(func(v float64) float64 {
		return (1 + p.SinkRate(v)/p.mc) / (v - headWind)
	}, math.Sqrt((p.coef.C+p.mc)/p.coef.A))
}
