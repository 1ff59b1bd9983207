package tween

import (
	"fmt"

	"github.com/roach88/tempo/internal/engine"
)

// Spawner is the part of the engine a Factory needs.
type Spawner interface {
	Spawn(name string, p engine.Params, b engine.Binding) (engine.Handle, error)
}

// Factory creates timelines on a Spawner, starting every timeline from the
// injected Settings.
type Factory struct {
	spawner  Spawner
	settings Settings
}

// NewFactory creates a factory.
func NewFactory(s Spawner, settings Settings) *Factory {
	return &Factory{spawner: s, settings: settings}
}

// Settings returns the defaults the factory was created with.
func (f *Factory) Settings() Settings {
	return f.settings
}

func (f *Factory) spawn(name string, duration float64, opts []Option, build func(*config) (engine.Binding, error)) (engine.Handle, error) {
	c, err := newConfig(f.settings, duration, opts)
	if err != nil {
		return 0, fmt.Errorf("timeline %q: %w", name, err)
	}
	// Until a record owns the curve, a failed spawn must release it here.
	release := func() {
		if c.params.Curve != nil {
			_ = c.params.Curve.Release()
		}
	}
	var b engine.Binding
	if build != nil {
		if b, err = build(c); err != nil {
			release()
			return 0, fmt.Errorf("timeline %q: %w", name, err)
		}
	}
	h, err := f.spawner.Spawn(name, c.params, b)
	if err != nil {
		release()
		return 0, err
	}
	return h, nil
}

// To animates a scalar from its live value to end. The start value is read
// with get when the timeline starts up.
func (f *Factory) To(name string, get func() float64, set func(float64), end, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(*config) (engine.Binding, error) {
		return &floatBinding{get: get, set: set, end: end}, nil
	})
}

// FromTo animates a scalar between fixed endpoints.
func (f *Factory) FromTo(name string, set func(float64), start, end, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(*config) (engine.Binding, error) {
		return &floatBinding{set: set, start: start, end: end}, nil
	})
}

// VectorTo is To over vectors. set receives a reused buffer.
func (f *Factory) VectorTo(name string, get func() []float64, set func([]float64), end []float64, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(*config) (engine.Binding, error) {
		return newVectorBinding(get, set, nil, end)
	})
}

// VectorFromTo is FromTo over vectors. start and end must have equal
// lengths.
func (f *Factory) VectorFromTo(name string, set func([]float64), start, end []float64, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(*config) (engine.Binding, error) {
		return newVectorBinding(nil, set, start, end)
	})
}

// Punch kicks the target by strength and lets it oscillate back.
// WithFrequency and WithDamping tune the oscillation.
func (f *Factory) Punch(name string, get func() []float64, set func([]float64), strength []float64, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(c *config) (engine.Binding, error) {
		return &punchBinding{
			get:       get,
			set:       set,
			start:     make([]float64, len(strength)),
			strength:  append([]float64(nil), strength...),
			frequency: float64(c.frequency),
			damping:   c.damping,
			out:       make([]float64, len(strength)),
		}, nil
	})
}

// Shake jitters the target by up to strength per component. The same
// seed (WithSeed) always produces the same offsets.
func (f *Factory) Shake(name string, get func() []float64, set func([]float64), strength []float64, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(c *config) (engine.Binding, error) {
		return newShakeBinding(get, set, strength, c.frequency, c.damping, c.seed), nil
	})
}

// Path moves the target along points. get is only used by relative paths.
func (f *Factory) Path(name string, get func() []float64, set func([]float64), points [][]float64, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(*config) (engine.Binding, error) {
		return newPathBinding(get, set, points)
	})
}

// Text reveals to over from rune by rune.
func (f *Factory) Text(name string, set func(string), from, to string, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, func(*config) (engine.Binding, error) {
		return newTextBinding(set, from, to), nil
	})
}

// Unit creates a timeline with no value, for its lifecycle and callbacks
// only.
func (f *Factory) Unit(name string, duration float64, opts ...Option) (engine.Handle, error) {
	return f.spawn(name, duration, opts, nil)
}
