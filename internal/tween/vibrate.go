package tween

import (
	"math"
	"math/rand/v2"
)

// envelope is the decay applied to vibrations: 1 at the start, 0 at the end.
func envelope(progress, damping float64) float64 {
	if damping == 0 {
		return 1
	}
	return math.Pow(1-clamp01(progress), damping)
}

// punchBinding oscillates around the start value with a damped sine and
// settles back on it.
type punchBinding struct {
	get       func() []float64
	set       func([]float64)
	start     []float64
	strength  []float64
	frequency float64
	damping   float64
	out       []float64
}

func (b *punchBinding) Capture() {
	if b.get == nil {
		return
	}
	clear(b.start)
	copy(b.start, b.get())
}

func (b *punchBinding) Apply(progress float64, inverted, _ bool) {
	if inverted {
		progress = 1 - progress
	}
	p := clamp01(progress)
	wave := math.Sin(p*b.frequency*math.Pi) * envelope(p, b.damping)
	for i := range b.out {
		b.out[i] = b.start[i] + b.strength[i]*wave
	}
	b.set(b.out)
}

// shakeBinding jitters around the start value with seeded pseudo-random
// offsets, one per vibration, linearly blended between keyframes.
type shakeBinding struct {
	get      func() []float64
	set      func([]float64)
	start    []float64
	strength []float64
	damping  float64
	// offsets[k] holds vibration k's unit offsets, one per component.
	offsets [][]float64
	out     []float64
}

func newShakeBinding(get func() []float64, set func([]float64), strength []float64, frequency int, damping float64, seed uint64) *shakeBinding {
	n := len(strength)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	// Keyframes 1..frequency are random; the zero keyframes around them
	// make the shake start and end on the start value.
	keys := 1
	if frequency > 0 {
		keys = frequency + 2
	}
	offsets := make([][]float64, keys)
	for k := range offsets {
		offsets[k] = make([]float64, n)
		if k == 0 || k == keys-1 {
			continue
		}
		for i := range offsets[k] {
			offsets[k][i] = rng.Float64()*2 - 1
		}
	}
	return &shakeBinding{
		get:      get,
		set:      set,
		start:    make([]float64, n),
		strength: append([]float64(nil), strength...),
		damping:  damping,
		offsets:  offsets,
		out:      make([]float64, n),
	}
}

func (b *shakeBinding) Capture() {
	if b.get == nil {
		return
	}
	clear(b.start)
	copy(b.start, b.get())
}

func (b *shakeBinding) Apply(progress float64, inverted, _ bool) {
	if inverted {
		progress = 1 - progress
	}
	p := clamp01(progress)
	steps := len(b.offsets) - 1
	if steps <= 0 {
		copy(b.out, b.start)
		b.set(b.out)
		return
	}
	pos := p * float64(steps)
	k := min(int(pos), steps-1)
	frac := pos - float64(k)
	decay := envelope(p, b.damping)
	for i := range b.out {
		off := lerp(b.offsets[k][i], b.offsets[k+1][i], frac)
		b.out[i] = b.start[i] + b.strength[i]*off*decay
	}
	b.set(b.out)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
