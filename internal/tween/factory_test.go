package tween

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/testutil"
)

func newTestFactory(t *testing.T) (*engine.Engine, *Factory) {
	t.Helper()
	e := engine.New()
	s := DefaultSettings()
	s.Ease = ease.Linear
	return e, NewFactory(e, s)
}

func runFrames(t *testing.T, e *engine.Engine, n int, delta float64) []ir.FrameEvent {
	t.Helper()
	return testutil.RunFrames(t, e, testutil.NewFrameClock(delta).Deltas(n)...)
}

func TestFactory_ToCapturesLiveValue(t *testing.T) {
	e, f := newTestFactory(t)
	x := 5.0
	h, err := f.To("x", func() float64 { return x }, func(v float64) { x = v }, 15, 1)
	require.NoError(t, err)

	runFrames(t, e, 1, 0.5)
	assert.InDelta(t, 10, x, tol)

	runFrames(t, e, 1, 0.5)
	assert.InDelta(t, 15, x, tol)

	_, err = e.Status(h)
	assert.True(t, engine.IsStaleHandle(err), "auto-killed on completion by default")
}

func TestFactory_FromToYoyo(t *testing.T) {
	e, f := newTestFactory(t)
	var x float64
	_, err := f.FromTo("x", func(v float64) { x = v }, 0, 10, 1, WithLoops(2, ir.LoopYoyo))
	require.NoError(t, err)

	runFrames(t, e, 1, 1.25)
	assert.InDelta(t, 7.5, x, tol, "second loop runs back")
}

func TestFactory_RejectsInvalidParams(t *testing.T) {
	_, f := newTestFactory(t)

	_, err := f.Unit("bad", -1)
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Contains(t, err.Error(), `"bad"`)

	_, err = f.VectorFromTo("v", func([]float64) {}, []float64{1}, []float64{1, 2}, 1)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = f.Path("p", nil, func([]float64) {}, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestFactory_UnitDrivesCallbacks(t *testing.T) {
	e, f := newTestFactory(t)
	h, err := f.Unit("u", 0.5, WithAutoKill(false))
	require.NoError(t, err)

	completed := 0
	require.NoError(t, e.On(h, ir.OnComplete, func() { completed++ }))

	events := runFrames(t, e, 3, 0.25)
	assert.Equal(t, 1, completed)
	assert.Equal(t, []string{"u.start_up", "u.play", "u.start", "u.update", "u.complete"}, testutil.EventNames(events))
}

// rejectingSpawner refuses every timeline, keeping the params it was given.
type rejectingSpawner struct {
	params engine.Params
}

func (r *rejectingSpawner) Spawn(_ string, p engine.Params, _ engine.Binding) (engine.Handle, error) {
	r.params = p
	return 0, errors.New("spawn refused")
}

func TestFactory_FailedSpawnReleasesCurve(t *testing.T) {
	sp := &rejectingSpawner{}
	f := NewFactory(sp, DefaultSettings())

	_, err := f.Unit("c", 1, WithCurve(0.25, 0.1, 0.25, 1))
	require.Error(t, err)

	require.NotNil(t, sp.params.Curve)
	assert.True(t, sp.params.Curve.Released())
}

func TestFactory_CustomCurveIsReleasedOnKill(t *testing.T) {
	e, f := newTestFactory(t)
	h, err := f.Unit("c", 1, WithCurve(0.25, 0.1, 0.25, 1))
	require.NoError(t, err)

	snap, err := e.Snapshot(h)
	require.NoError(t, err)
	curve := snap.Curve
	require.NotNil(t, curve)

	require.NoError(t, e.Kill(h))
	assert.True(t, curve.Released())
	runFrames(t, e, 1, 0)
	assert.ErrorIs(t, curve.Release(), ease.ErrCurveReleased, "reclamation does not release again")
}

func TestFactory_SpawnFromSpec(t *testing.T) {
	loops := 1
	damping := 0.5
	tests := []struct {
		name  string
		value ir.ValueSpec
		check func(t *testing.T, c *Cell)
	}{
		{
			name:  "float from to",
			value: ir.ValueSpec{Kind: ir.ValueFloat, From: []float64{2}, To: []float64{4}},
			check: func(t *testing.T, c *Cell) { assert.InDeltaSlice(t, []float64{3}, c.Values, tol) },
		},
		{
			name:  "float to captures cell",
			value: ir.ValueSpec{Kind: ir.ValueFloat, To: []float64{4}},
			check: func(t *testing.T, c *Cell) { assert.InDeltaSlice(t, []float64{2}, c.Values, tol) },
		},
		{
			name:  "vector",
			value: ir.ValueSpec{Kind: ir.ValueVector, From: []float64{0, 0}, To: []float64{2, 4}},
			check: func(t *testing.T, c *Cell) { assert.InDeltaSlice(t, []float64{1, 2}, c.Values, tol) },
		},
		{
			name:  "path",
			value: ir.ValueSpec{Kind: ir.ValuePath, Points: [][]float64{{0, 0}, {0, 8}}},
			check: func(t *testing.T, c *Cell) { assert.InDeltaSlice(t, []float64{0, 4}, c.Values, tol) },
		},
		{
			name:  "punch",
			value: ir.ValueSpec{Kind: ir.ValuePunch, Strength: []float64{1}, Frequency: 3, Damping: &damping},
			check: func(t *testing.T, c *Cell) { assert.Len(t, c.Values, 1) },
		},
		{
			name:  "shake",
			value: ir.ValueSpec{Kind: ir.ValueShake, Strength: []float64{1, 1}, Seed: 42},
			check: func(t *testing.T, c *Cell) { assert.Len(t, c.Values, 2) },
		},
		{
			name:  "string",
			value: ir.ValueSpec{Kind: ir.ValueString, FromText: "aaaa", ToText: "bbbb"},
			check: func(t *testing.T, c *Cell) { assert.Equal(t, "bbaa", c.Text) },
		},
		{
			name:  "unit",
			value: ir.ValueSpec{Kind: ir.ValueUnit},
			check: func(t *testing.T, c *Cell) { assert.Empty(t, c.Values) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, f := newTestFactory(t)
			cell := &Cell{}
			_, err := f.Spawn(ir.TimelineSpec{
				Name:     tt.name,
				Duration: 1,
				Loops:    &loops,
				Ease:     "linear",
				Value:    tt.value,
			}, cell)
			require.NoError(t, err)

			runFrames(t, e, 1, 0.5)
			tt.check(t, cell)
		})
	}
}

func TestSpecOptions_UnknownNames(t *testing.T) {
	tests := []ir.TimelineSpec{
		{Name: "a", Ease: "in_out_wobble"},
		{Name: "b", LoopType: "pingpong"},
		{Name: "c", InvertMode: "sideways"},
		{Name: "d", Curve: []float64{0, 1}},
	}
	for _, spec := range tests {
		_, err := SpecOptions(spec)
		assert.ErrorIs(t, err, ErrInvalidParams, spec.Name)
	}
}

func TestSpecOptions_UnsetFieldsKeepSettings(t *testing.T) {
	opts, err := SpecOptions(ir.TimelineSpec{Name: "x", LoopType: "yoyo"})
	require.NoError(t, err)

	c, err := newConfig(DefaultSettings(), 1, opts)
	require.NoError(t, err)
	assert.Equal(t, ir.LoopYoyo, c.params.LoopType)
	assert.Equal(t, 1, c.params.Loops)
	assert.Equal(t, ease.OutQuad, c.params.Ease)
	assert.True(t, c.params.AutoKill)
}

func TestFactory_SpawnUnknownKind(t *testing.T) {
	_, f := newTestFactory(t)
	_, err := f.Spawn(ir.TimelineSpec{Name: "x", Duration: 1, Value: ir.ValueSpec{Kind: "color"}}, &Cell{})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
