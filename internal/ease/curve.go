package ease

import (
	"errors"
	"math"
	"sync/atomic"
)

// ErrCurveReleased is returned by Release when the curve buffer was
// already released.
var ErrCurveReleased = errors.New("ease: curve already released")

// curveSamples is the resolution of a Curve's lookup buffer.
const curveSamples = 256

// Curve is a user-supplied easing curve, matching CSS cubic-bezier().
//
// A Curve owns a sampled lookup buffer. The buffer belongs to exactly one
// timeline and must be released exactly once, either when the timeline is
// killed or when its slot is reclaimed. After Release the curve still
// evaluates, by solving the bezier directly.
type Curve struct {
	x1, y1, x2, y2 float64
	samples        []float64
	released       atomic.Bool
}

// NewCubicBezier builds a curve through (0,0) and (1,1) with control
// points (x1,y1) and (x2,y2). x1 and x2 are clamped into [0, 1].
func NewCubicBezier(x1, y1, x2, y2 float64) *Curve {
	c := &Curve{x1: clampUnit(x1), y1: y1, x2: clampUnit(x2), y2: y2}
	c.samples = make([]float64, curveSamples+1)
	for i := range c.samples {
		c.samples[i] = c.solve(float64(i) / curveSamples)
	}
	return c
}

// Points returns the control points the curve was built from.
func (c *Curve) Points() [4]float64 {
	return [4]float64{c.x1, c.y1, c.x2, c.y2}
}

// Evaluate maps t to eased progress. Inputs outside [0, 1] are clamped.
func (c *Curve) Evaluate(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if c.released.Load() || c.samples == nil {
		return c.solve(t)
	}
	pos := t * curveSamples
	i := int(pos)
	frac := pos - float64(i)
	return c.samples[i] + (c.samples[i+1]-c.samples[i])*frac
}

// Release frees the lookup buffer. The first call returns nil; every
// later call returns ErrCurveReleased and does nothing.
func (c *Curve) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return ErrCurveReleased
	}
	c.samples = nil
	return nil
}

// Released reports whether Release has run.
func (c *Curve) Released() bool {
	return c.released.Load()
}

// solve finds the curve parameter for x = t and returns its y.
// Newton-Raphson converges quickly for most inputs; bisection guarantees
// a stable answer when the derivative flattens.
func (c *Curve) solve(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	u := t
	for range 8 {
		x := sampleCurve(c.x1, c.x2, u) - t
		if math.Abs(x) < 1e-7 {
			return sampleCurve(c.y1, c.y2, clampUnit(u))
		}
		dx := sampleCurveDerivative(c.x1, c.x2, u)
		if math.Abs(dx) < 1e-7 {
			break
		}
		u -= x / dx
	}

	lo, hi := 0.0, 1.0
	u = clampUnit(u)
	for range 24 {
		x := sampleCurve(c.x1, c.x2, u) - t
		if math.Abs(x) < 1e-7 {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return sampleCurve(c.y1, c.y2, u)
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
