package tween

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

// ErrInvalidParams is wrapped by every construction-time validation error.
var ErrInvalidParams = errors.New("invalid timeline parameters")

// Vibration defaults for Punch and Shake.
const (
	DefaultFrequency = 10
	DefaultDamping   = 1.0
)

// config accumulates options before validation.
type config struct {
	params    engine.Params
	frequency int
	damping   float64
	seed      uint64
	curve     []float64
}

// Option adjusts one timeline at construction.
type Option func(*config)

// WithDelay offsets the effective start. Negative delays become 0.
func WithDelay(d float64) Option {
	return func(c *config) { c.params.Delay = d }
}

// WithLoops sets the total repetitions; negative loops forever.
func WithLoops(n int, lt ir.LoopType) Option {
	return func(c *config) {
		c.params.Loops = n
		c.params.LoopType = lt
	}
}

// WithEase selects a catalog easing function.
func WithEase(k ease.Kind) Option {
	return func(c *config) { c.params.Ease = k }
}

// WithCurve eases with a cubic Bézier through (x1, y1) and (x2, y2).
func WithCurve(x1, y1, x2, y2 float64) Option {
	return func(c *config) {
		c.params.Ease = ease.Custom
		c.curve = []float64{x1, y1, x2, y2}
	}
}

// WithPlaybackSpeed scales elapsed time for this timeline only.
func WithPlaybackSpeed(s float64) Option {
	return func(c *config) { c.params.PlaybackSpeed = s }
}

// WithAutoPlay overrides Settings.AutoPlay.
func WithAutoPlay(v bool) Option {
	return func(c *config) { c.params.AutoPlay = v }
}

// WithAutoKill overrides Settings.AutoKill.
func WithAutoKill(v bool) Option {
	return func(c *config) { c.params.AutoKill = v }
}

// WithIgnoreTimeScale makes the timeline run at the unscaled delta.
func WithIgnoreTimeScale(v bool) Option {
	return func(c *config) { c.params.IgnoreTimeScale = v }
}

// WithRelative treats the end value as an offset from the start value.
func WithRelative(v bool) Option {
	return func(c *config) { c.params.Relative = v }
}

// WithInvert sets the invert mode.
func WithInvert(m ir.InvertMode) Option {
	return func(c *config) { c.params.InvertMode = m }
}

// WithFrequency sets the vibration count of Punch and Shake.
func WithFrequency(n int) Option {
	return func(c *config) { c.frequency = n }
}

// WithDamping sets how fast Punch and Shake settle; 0 never decays.
func WithDamping(d float64) Option {
	return func(c *config) { c.damping = d }
}

// WithSeed seeds Shake's offset generator.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// newConfig applies settings, factory defaults and opts, then validates.
func newConfig(s Settings, duration float64, opts []Option) (*config, error) {
	c := &config{
		params: engine.Params{
			Duration:        duration,
			Loops:           1,
			LoopType:        s.LoopType,
			PlaybackSpeed:   1,
			Ease:            s.Ease,
			AutoPlay:        s.AutoPlay,
			AutoKill:        s.AutoKill,
			IgnoreTimeScale: s.IgnoreTimeScale,
		},
		frequency: DefaultFrequency,
		damping:   DefaultDamping,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.curve != nil {
		c.params.Curve = ease.NewCubicBezier(c.curve[0], c.curve[1], c.curve[2], c.curve[3])
	}
	return c, nil
}

func (c *config) validate() error {
	p := &c.params
	switch {
	case math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0):
		return fmt.Errorf("%w: duration must be finite, got %v", ErrInvalidParams, p.Duration)
	case p.Duration < 0:
		return fmt.Errorf("%w: duration must be >= 0, got %v", ErrInvalidParams, p.Duration)
	case math.IsNaN(p.Delay):
		return fmt.Errorf("%w: delay is NaN", ErrInvalidParams)
	case math.IsNaN(p.PlaybackSpeed) || p.PlaybackSpeed < 0:
		return fmt.Errorf("%w: playback speed must be >= 0, got %v", ErrInvalidParams, p.PlaybackSpeed)
	case c.frequency < 0:
		return fmt.Errorf("%w: frequency must be >= 0, got %d", ErrInvalidParams, c.frequency)
	case math.IsNaN(c.damping) || c.damping < 0:
		return fmt.Errorf("%w: damping must be >= 0, got %v", ErrInvalidParams, c.damping)
	}
	for _, v := range c.curve {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: curve control point is NaN", ErrInvalidParams)
		}
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return nil
}
