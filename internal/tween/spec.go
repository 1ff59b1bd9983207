package tween

import (
	"fmt"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

// Cell is an in-memory property that compiled timelines animate. The CLI
// and the scenario harness read it back to report values.
type Cell struct {
	Values []float64
	Text   string
}

func (c *Cell) scalar() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return c.Values[0]
}

func (c *Cell) setScalar(v float64) {
	c.Values = append(c.Values[:0], v)
}

func (c *Cell) vector() []float64 {
	return c.Values
}

func (c *Cell) setVector(v []float64) {
	c.Values = append(c.Values[:0], v...)
}

func (c *Cell) setText(s string) {
	c.Text = s
}

// SpecOptions translates the optional fields of a compiled spec into
// Options. Unset fields keep the factory's settings.
func SpecOptions(spec ir.TimelineSpec) ([]Option, error) {
	opts := []Option{WithDelay(spec.Delay)}

	if spec.Loops != nil {
		n := *spec.Loops
		opts = append(opts, func(c *config) { c.params.Loops = n })
	}
	if spec.LoopType != "" {
		lt, ok := ir.ParseLoopType(spec.LoopType)
		if !ok {
			return nil, fmt.Errorf("%w: unknown loop type %q", ErrInvalidParams, spec.LoopType)
		}
		opts = append(opts, func(c *config) { c.params.LoopType = lt })
	}

	if spec.Ease != "" {
		k, ok := ease.Parse(spec.Ease)
		if !ok {
			return nil, fmt.Errorf("%w: unknown ease %q", ErrInvalidParams, spec.Ease)
		}
		opts = append(opts, WithEase(k))
	}
	if len(spec.Curve) > 0 {
		if len(spec.Curve) != 4 {
			return nil, fmt.Errorf("%w: curve needs 4 control values, got %d", ErrInvalidParams, len(spec.Curve))
		}
		opts = append(opts, WithCurve(spec.Curve[0], spec.Curve[1], spec.Curve[2], spec.Curve[3]))
	}
	if spec.PlaybackSpeed != nil {
		opts = append(opts, WithPlaybackSpeed(*spec.PlaybackSpeed))
	}
	if spec.AutoPlay != nil {
		opts = append(opts, WithAutoPlay(*spec.AutoPlay))
	}
	if spec.AutoKill != nil {
		opts = append(opts, WithAutoKill(*spec.AutoKill))
	}
	if spec.IgnoreTimeScale {
		opts = append(opts, WithIgnoreTimeScale(true))
	}
	if spec.Relative {
		opts = append(opts, WithRelative(true))
	}
	if spec.InvertMode != "" {
		m, ok := ir.ParseInvertMode(spec.InvertMode)
		if !ok {
			return nil, fmt.Errorf("%w: unknown invert mode %q", ErrInvalidParams, spec.InvertMode)
		}
		opts = append(opts, WithInvert(m))
	}

	v := spec.Value
	if v.Frequency != 0 {
		opts = append(opts, WithFrequency(v.Frequency))
	}
	if v.Damping != nil {
		opts = append(opts, WithDamping(*v.Damping))
	}
	if v.Seed != 0 {
		opts = append(opts, WithSeed(v.Seed))
	}
	return opts, nil
}

// Spawn creates the timeline a compiled spec describes, animating cell.
func (f *Factory) Spawn(spec ir.TimelineSpec, cell *Cell) (engine.Handle, error) {
	opts, err := SpecOptions(spec)
	if err != nil {
		return 0, fmt.Errorf("timeline %q: %w", spec.Name, err)
	}
	v := spec.Value
	name, d := spec.Name, spec.Duration

	switch v.Kind {
	case ir.ValueFloat:
		if len(v.To) != 1 {
			return 0, fmt.Errorf("timeline %q: %w: float needs exactly one to value", name, ErrInvalidParams)
		}
		if len(v.From) == 1 {
			return f.FromTo(name, cell.setScalar, v.From[0], v.To[0], d, opts...)
		}
		return f.To(name, cell.scalar, cell.setScalar, v.To[0], d, opts...)
	case ir.ValueVector:
		if len(v.From) > 0 {
			return f.VectorFromTo(name, cell.setVector, v.From, v.To, d, opts...)
		}
		return f.VectorTo(name, cell.vector, cell.setVector, v.To, d, opts...)
	case ir.ValuePunch:
		return f.Punch(name, cell.vector, cell.setVector, v.Strength, d, opts...)
	case ir.ValueShake:
		return f.Shake(name, cell.vector, cell.setVector, v.Strength, d, opts...)
	case ir.ValuePath:
		return f.Path(name, cell.vector, cell.setVector, v.Points, d, opts...)
	case ir.ValueString:
		return f.Text(name, cell.setText, v.FromText, v.ToText, d, opts...)
	case ir.ValueUnit, "":
		return f.Unit(name, d, opts...)
	default:
		return 0, fmt.Errorf("timeline %q: %w: unknown value kind %q", name, ErrInvalidParams, v.Kind)
	}
}
