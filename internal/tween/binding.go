package tween

import "fmt"

// floatBinding interpolates one scalar.
type floatBinding struct {
	get        func() float64
	set        func(float64)
	start, end float64
}

func (b *floatBinding) Capture() {
	if b.get != nil {
		b.start = b.get()
	}
}

func (b *floatBinding) Apply(progress float64, inverted, relative bool) {
	from, to := b.start, b.end
	if relative {
		to = from + b.end
	}
	if inverted {
		from, to = to, from
	}
	b.set(lerp(from, to, progress))
}

// vectorBinding interpolates component-wise. set receives a buffer that is
// reused across frames and must not be retained.
type vectorBinding struct {
	get        func() []float64
	set        func([]float64)
	start, end []float64
	out        []float64
}

func newVectorBinding(get func() []float64, set func([]float64), start, end []float64) (*vectorBinding, error) {
	if start != nil && len(start) != len(end) {
		return nil, fmt.Errorf("%w: start has %d components, end has %d", ErrInvalidParams, len(start), len(end))
	}
	b := &vectorBinding{
		get:   get,
		set:   set,
		start: make([]float64, len(end)),
		end:   append([]float64(nil), end...),
		out:   make([]float64, len(end)),
	}
	copy(b.start, start)
	return b, nil
}

func (b *vectorBinding) Capture() {
	if b.get == nil {
		return
	}
	// A target with fewer components leaves the rest at zero.
	clear(b.start)
	copy(b.start, b.get())
}

func (b *vectorBinding) Apply(progress float64, inverted, relative bool) {
	for i := range b.out {
		from, to := b.start[i], b.end[i]
		if relative {
			to = from + b.end[i]
		}
		if inverted {
			from, to = to, from
		}
		b.out[i] = lerp(from, to, progress)
	}
	b.set(b.out)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
