// Package solver provides bounded one-dimensional minimisation and root finding.
package solver

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	defaultMaxIterations = 100
	// sqrt of machine epsilon, the usual relative precision floor for Brent's methods
	sqrtEpsilon = 1.4901161193847656e-08
)

// Clamp limits x to [low, high].
func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// Func is a scalar function evaluated by the finders.
type Func func(x float64) float64

// ZeroFinder searches a bounded interval for a minimum or a root.
type ZeroFinder struct {
	XMin      float64
	XMax      float64
	Tolerance float64
	// MaxIterations bounds the number of function evaluations; zero means the default.
	MaxIterations int
}

// NewZeroFinder creates a finder over [xmin, xmax].
func NewZeroFinder(xmin, xmax, tolerance float64) ZeroFinder {
	return ZeroFinder{
		XMin:      xmin,
		XMax:      xmax,
		Tolerance: tolerance,
	}
}

func (z ZeroFinder) iterations() int {
	if z.MaxIterations > 0 {
		return z.MaxIterations
	}
	return defaultMaxIterations
}

// FindMin returns the x in [XMin, XMax] that minimises f, using Brent's
// parabolic interpolation with golden-section fallback. The search starts
// from guess; if guess itself is at least as good as the result, guess is returned.
func (z ZeroFinder) FindMin(f Func, guess float64) float64 {
	const c = 0.3819660112501051 // (3 - sqrt(5)) / 2

	a, b := z.XMin, z.XMax
	if b <= a {
		return a
	}
	tol := math.Max(z.Tolerance, 0)

	x := Clamp(guess, a, b)
	if x == a || x == b {
		x = a + c*(b-a)
	}
	w, v := x, x
	fx := f(x)
	fw, fv := fx, fx
	d, e := 0.0, 0.0

	for i := 0; i < z.iterations(); i++ {
		xm := 0.5 * (a + b)
		tol1 := sqrtEpsilon*math.Abs(x) + tol/3
		tol2 := 2 * tol1

		if math.Abs(x-xm) <= tol2-0.5*(b-a) {
			break
		}

		golden := true
		if math.Abs(e) > tol1 {
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			} else {
				q = -q
			}
			r = e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, xm-x)
				}
				golden = false
			}
		}
		if golden {
			if x < xm {
				e = b - x
			} else {
				e = a - x
			}
			d = c * e
		}

		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + math.Copysign(tol1, d)
		}
		fu := f(u)

		if fu <= fx {
			if u < x {
				b = x
			} else {
				a = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
			continue
		}

		if u < x {
			a = u
		} else {
			b = u
		}
		switch {
		case fu <= fw || w == x:
			v, fv = w, fw
			w, fw = u, fu
		case fu <= fv || v == x || v == w:
			v, fv = u, fu
		}
	}

	g := Clamp(guess, z.XMin, z.XMax)
	if g != x && f(g) <= fx {
		return g
	}
	return x
}

// FindZero returns an x in [XMin, XMax] with f(x) == 0, using Brent's method.
// The guess splits the initial bracket when it already brackets the root.
// If f does not change sign over the interval, the end closest to zero is returned.
func (z ZeroFinder) FindZero(f Func, guess float64) float64 {
	a, b := z.XMin, z.XMax
	if b <= a {
		return a
	}
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a
	}
	if fb == 0 {
		return b
	}
	if sameSign(fa, fb) {
		if math.Abs(fa) < math.Abs(fb) {
			return a
		}
		return b
	}

	if g := Clamp(guess, a, b); g > a && g < b {
		fg := f(g)
		if fg == 0 {
			return g
		}
		if sameSign(fa, fg) {
			a, fa = g, fg
		} else {
			b, fb = g, fg
		}
	}

	tol := math.Max(z.Tolerance, 0)
	c, fc := b, fb
	var d, e float64

	for i := 0; i < z.iterations(); i++ {
		if sameSign(fb, fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*sqrtEpsilon*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				qq := fa / fc
				r := fb / fc
				p = s * (2*xm*qq*(qq-r) - (b-a)*(r-1))
				q = (qq - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}
	return b
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
