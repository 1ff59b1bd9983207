package tween

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestFloatBinding(t *testing.T) {
	live := 10.0
	var got float64
	b := &floatBinding{get: func() float64 { return live }, set: func(v float64) { got = v }, end: 20}

	b.Capture()
	b.Apply(0.5, false, false)
	assert.InDelta(t, 15, got, tol)

	b.Apply(0.5, false, true)
	assert.InDelta(t, 20, got, tol, "relative end is an offset from the start")

	b.Apply(0.25, true, false)
	assert.InDelta(t, 17.5, got, tol, "inverted runs from end to start")

	b.Apply(1.5, false, false)
	assert.InDelta(t, 25, got, tol, "overshooting progress extrapolates")
}

func TestVectorBinding(t *testing.T) {
	var got []float64
	set := func(v []float64) { got = append(got[:0], v...) }

	b, err := newVectorBinding(nil, set, []float64{0, 10}, []float64{10, 0})
	require.NoError(t, err)
	b.Capture()
	b.Apply(0.25, false, false)
	assert.InDeltaSlice(t, []float64{2.5, 7.5}, got, tol)

	_, err = newVectorBinding(nil, set, []float64{0}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestVectorBinding_CaptureShortTarget(t *testing.T) {
	var got []float64
	b, err := newVectorBinding(func() []float64 { return []float64{4} }, func(v []float64) { got = append(got[:0], v...) }, nil, []float64{8, 8})
	require.NoError(t, err)

	b.Capture()
	b.Apply(0.5, false, false)
	assert.InDeltaSlice(t, []float64{6, 4}, got, tol)
}

func TestPunchBinding_ReturnsToStart(t *testing.T) {
	var got []float64
	b := &punchBinding{
		get:       func() []float64 { return []float64{1, 1} },
		set:       func(v []float64) { got = append(got[:0], v...) },
		start:     make([]float64, 2),
		strength:  []float64{2, 0},
		frequency: DefaultFrequency,
		damping:   DefaultDamping,
		out:       make([]float64, 2),
	}
	b.Capture()

	b.Apply(0, false, false)
	assert.InDeltaSlice(t, []float64{1, 1}, got, tol)

	b.Apply(0.05, false, false)
	assert.Greater(t, got[0], 1.0, "first swing follows the strength direction")
	assert.InDelta(t, 1.0, got[1], tol, "zero strength axis never moves")

	b.Apply(1, false, false)
	assert.InDeltaSlice(t, []float64{1, 1}, got, tol)
}

func TestShakeBinding_SeedIsReproducible(t *testing.T) {
	sample := func(seed uint64) []float64 {
		var got []float64
		b := newShakeBinding(nil, func(v []float64) { got = append(got[:0], v...) }, []float64{1, 1}, 10, 1, seed)
		var out []float64
		for _, p := range []float64{0.13, 0.42, 0.77} {
			b.Apply(p, false, false)
			out = append(out, got...)
		}
		return out
	}

	assert.Equal(t, sample(7), sample(7))
	assert.NotEqual(t, sample(7), sample(8))
}

func TestShakeBinding_StaysWithinStrength(t *testing.T) {
	var got []float64
	b := newShakeBinding(nil, func(v []float64) { got = append(got[:0], v...) }, []float64{0.5}, 20, 0, 99)

	for p := 0.0; p <= 1; p += 0.01 {
		b.Apply(p, false, false)
		assert.LessOrEqual(t, got[0], 0.5)
		assert.GreaterOrEqual(t, got[0], -0.5)
	}
	b.Apply(1, false, false)
	assert.InDelta(t, 0.0, got[0], tol, "shake ends on the start value")
}

func TestShakeBinding_ZeroFrequency(t *testing.T) {
	var got []float64
	b := newShakeBinding(func() []float64 { return []float64{3} }, func(v []float64) { got = append(got[:0], v...) }, []float64{1}, 0, 1, 1)
	b.Capture()
	b.Apply(0.5, false, false)
	assert.Equal(t, []float64{3}, got)
}

func TestShakeBinding_SingleVibrationMoves(t *testing.T) {
	var got []float64
	b := newShakeBinding(nil, func(v []float64) { got = append(got[:0], v...) }, []float64{1}, 1, 0, 5)

	b.Apply(0.5, false, false)
	assert.NotEqual(t, 0.0, got[0], "the one vibration peaks mid-way")
	assert.LessOrEqual(t, math.Abs(got[0]), 1.0)

	b.Apply(1, false, false)
	assert.InDelta(t, 0.0, got[0], tol)
}

func TestPathBinding_ArcLength(t *testing.T) {
	var got []float64
	// Two segments: 3 long then 1 long.
	b, err := newPathBinding(nil, func(v []float64) { got = append(got[:0], v...) }, [][]float64{{0, 0}, {3, 0}, {3, 1}})
	require.NoError(t, err)

	b.Apply(0.5, false, false)
	assert.InDeltaSlice(t, []float64{2, 0}, got, tol)

	b.Apply(0.75, false, false)
	assert.InDeltaSlice(t, []float64{3, 0}, got, tol)

	b.Apply(0.875, false, false)
	assert.InDeltaSlice(t, []float64{3, 0.5}, got, tol)

	b.Apply(0.25, true, false)
	assert.InDeltaSlice(t, []float64{3, 0}, got, tol, "inverted walks the path backwards")

	b.Apply(2, false, false)
	assert.InDeltaSlice(t, []float64{3, 1}, got, tol, "progress is clamped to the path")
}

func TestPathBinding_Relative(t *testing.T) {
	var got []float64
	b, err := newPathBinding(func() []float64 { return []float64{10, 10} }, func(v []float64) { got = append(got[:0], v...) }, [][]float64{{0, 0}, {2, 0}})
	require.NoError(t, err)

	b.Capture()
	b.Apply(0.5, false, true)
	assert.InDeltaSlice(t, []float64{11, 10}, got, tol)
}

func TestPathBinding_Invalid(t *testing.T) {
	_, err := newPathBinding(nil, func([]float64) {}, [][]float64{{0, 0}})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = newPathBinding(nil, func([]float64) {}, [][]float64{{0, 0}, {1}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestPathBinding_Degenerate(t *testing.T) {
	var got []float64
	b, err := newPathBinding(nil, func(v []float64) { got = append(got[:0], v...) }, [][]float64{{1, 1}, {1, 1}})
	require.NoError(t, err)
	b.Apply(0.3, false, false)
	assert.Equal(t, []float64{1, 1}, got)
}

func TestTextBinding(t *testing.T) {
	var got string
	b := newTextBinding(func(s string) { got = s }, "hello", "world")

	b.Apply(0, false, false)
	assert.Equal(t, "hello", got)
	b.Apply(0.4, false, false)
	assert.Equal(t, "wollo", got)
	b.Apply(1, false, false)
	assert.Equal(t, "world", got)
	b.Apply(1, true, false)
	assert.Equal(t, "hello", got)
}

func TestTextBinding_Relative(t *testing.T) {
	var got string
	b := newTextBinding(func(s string) { got = s }, "ab", "cd")
	b.Apply(1, false, true)
	assert.Equal(t, "abcd", got)
}

func TestTextBinding_NormalizesToNFC(t *testing.T) {
	var got string
	// The decomposed accent becomes a single rune.
	b := newTextBinding(func(s string) { got = s }, "", "e\u0301t")
	require.Len(t, b.to, 2)

	b.Apply(0.5, false, false)
	assert.Equal(t, "\u00e9", got)
}
