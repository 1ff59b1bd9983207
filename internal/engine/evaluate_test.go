package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/ir"
)

const tol = 1e-9

func linearParams() Params {
	return Params{
		Duration:      1,
		Loops:         1,
		LoopType:      ir.LoopRestart,
		PlaybackSpeed: 1,
		Ease:          ease.Linear,
		AutoPlay:      true,
	}
}

func newTestRecord(p Params) *Record {
	r := NewRecord(makeHandle(0, 1), p)
	return &r
}

func TestEvaluate_RestartLinearPlaysToCompletion(t *testing.T) {
	r := newTestRecord(linearParams())
	r.PlayRequested = true

	Evaluate(r, 0.0, nil)
	assert.Equal(t, ir.StatusPlaying, r.Status)
	assert.InDelta(t, 0.0, r.Progress, tol)
	assert.True(t, r.Callbacks.Has(ir.OnStart), "first evaluation raises OnStart")
	assert.True(t, r.Callbacks.Has(ir.OnPlay))
	assert.True(t, r.Accessors.Has(ir.AccessorGetter), "start-up captures the start value")

	Evaluate(r, 0.5, nil)
	assert.Equal(t, ir.StatusPlaying, r.Status)
	assert.InDelta(t, 0.5, r.Progress, tol)
	assert.False(t, r.Callbacks.Has(ir.OnStart), "OnStart must not re-fire")

	Evaluate(r, 1.0, nil)
	assert.Equal(t, ir.StatusCompleted, r.Status)
	assert.InDelta(t, 1.0, r.Progress, tol)
	assert.True(t, r.Callbacks.Has(ir.OnComplete))
	assert.True(t, r.Accessors.Has(ir.AccessorSetter))
}

func TestEvaluate_WaitingGate(t *testing.T) {
	tests := []struct {
		name     string
		autoPlay bool
		play     bool
		position float64
		want     ir.Status
	}{
		{"autoplay at zero stays waiting", true, false, 0, ir.StatusWaitingForStart},
		{"autoplay at positive starts", true, false, 0.1, ir.StatusPlaying},
		{"manual without request stays waiting", false, false, 0.5, ir.StatusWaitingForStart},
		{"manual with request starts", false, true, 0.0, ir.StatusPlaying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := linearParams()
			p.AutoPlay = tt.autoPlay
			r := newTestRecord(p)
			r.PlayRequested = tt.play

			Evaluate(r, tt.position, nil)
			assert.Equal(t, tt.want, r.Status)
			if tt.want == ir.StatusWaitingForStart {
				assert.Zero(t, r.Callbacks, "a waiting record raises nothing")
				assert.Zero(t, r.Accessors)
			} else {
				assert.False(t, r.PlayRequested, "the request is consumed")
			}
		})
	}
}

func TestEvaluate_YoyoScenario(t *testing.T) {
	p := linearParams()
	p.Loops = 2
	p.LoopType = ir.LoopYoyo
	r := newTestRecord(p)

	Evaluate(r, 1.5, nil)
	assert.Equal(t, ir.StatusPlaying, r.Status)
	assert.Equal(t, 1, r.CompletedLoops)
	assert.InDelta(t, 0.5, r.Progress, tol)
}

func TestEvaluate_YoyoMirrorsOddLoops(t *testing.T) {
	p := linearParams()
	p.Loops = 4
	p.LoopType = ir.LoopYoyo
	p.Ease = ease.InQuad

	for _, offset := range []float64{0.1, 0.25, 0.7} {
		even := newTestRecord(p)
		Evaluate(even, offset, nil)

		odd := newTestRecord(p)
		Evaluate(odd, 1+offset, nil)

		assert.InDelta(t, 1-even.Progress, odd.Progress, tol, "offset %v", offset)
	}
}

func TestEvaluate_IncrementalIsMonotonic(t *testing.T) {
	p := linearParams()
	p.Loops = 3
	p.LoopType = ir.LoopIncremental
	p.AutoKill = false
	r := newTestRecord(p)

	prev := -1.0
	for pos := 0.05; pos <= 3.5; pos += 0.05 {
		Evaluate(r, pos, nil)
		require.GreaterOrEqual(t, r.Progress, prev, "position %v", pos)
		prev = r.Progress
	}
	assert.Equal(t, ir.StatusCompleted, r.Status)
	assert.InDelta(t, 3.0, r.Progress, tol)
}

func TestEvaluate_IncrementalInfiniteIsUnbounded(t *testing.T) {
	p := linearParams()
	p.Loops = -1
	p.LoopType = ir.LoopIncremental
	r := newTestRecord(p)

	Evaluate(r, 10.5, nil)
	assert.Equal(t, ir.StatusPlaying, r.Status)
	assert.InDelta(t, 10.5, r.Progress, tol)
}

func TestEvaluate_ZeroDurationAutoKill(t *testing.T) {
	p := linearParams()
	p.Duration = 0
	p.AutoKill = true
	r := newTestRecord(p)
	kills := NewKillCollector()

	killed := Evaluate(r, 0.1, kills)
	require.True(t, killed)
	assert.Equal(t, ir.StatusKilled, r.Status)
	assert.InDelta(t, 1.0, r.Progress, tol)
	assert.True(t, r.Callbacks.Has(ir.OnComplete))
	assert.True(t, r.Callbacks.Has(ir.OnKill))
	assert.Equal(t, []string{"start_up", "play", "start", "complete", "kill"}, r.Callbacks.Names())
	assert.True(t, r.Accessors.Has(ir.AccessorSetter), "terminal value is still written")
	assert.True(t, r.Accessors.Has(ir.AccessorGetter), "start-up capture still runs")

	// A second evaluation of a killed record is a no-op.
	assert.False(t, Evaluate(r, 0.2, kills))

	drained := kills.Drain()
	assert.Equal(t, []Handle{r.Handle}, drained, "handle is queued exactly once")
}

func TestEvaluate_ZeroDurationHonorsDelay(t *testing.T) {
	p := linearParams()
	p.Duration = 0
	p.Delay = 1
	r := newTestRecord(p)

	Evaluate(r, 0.5, nil)
	assert.Equal(t, ir.StatusDelayed, r.Status)
	assert.InDelta(t, 0.0, r.Progress, tol)
	assert.Equal(t, -1, r.CompletedLoops)

	Evaluate(r, 1.5, nil)
	assert.Equal(t, ir.StatusCompleted, r.Status)
	assert.InDelta(t, 1.0, r.Progress, tol)
	assert.True(t, r.Callbacks.Has(ir.OnComplete))
}

func TestEvaluate_CompletedWithAutoKillDiesNextCall(t *testing.T) {
	r := newTestRecord(linearParams())
	Evaluate(r, 1.0, nil)
	require.Equal(t, ir.StatusCompleted, r.Status)

	r.AutoKill = true
	kills := NewKillCollector()
	assert.True(t, Evaluate(r, 1.0, kills))
	assert.Equal(t, ir.StatusKilled, r.Status)
	assert.Equal(t, ir.OnKill, r.Callbacks, "only OnKill is raised")
	assert.Zero(t, r.Accessors)
	assert.Equal(t, 1, kills.Len())
}

func TestEvaluate_FiniteLoopsCompleteOnce(t *testing.T) {
	p := linearParams()
	p.Loops = 3
	r := newTestRecord(p)

	completes := 0
	for pos := 0.1; pos < 6; pos += 0.1 {
		Evaluate(r, pos, nil)
		if r.Callbacks.Has(ir.OnComplete) {
			completes++
		}
	}
	assert.Equal(t, 1, completes)
	assert.Equal(t, ir.StatusCompleted, r.Status)
	assert.InDelta(t, 1.0, r.Progress, tol)
}

func TestEvaluate_InfiniteLoopsNeverComplete(t *testing.T) {
	p := linearParams()
	p.Loops = -1
	r := newTestRecord(p)

	Evaluate(r, 99.5, nil)
	Evaluate(r, 100.25, nil)
	assert.Equal(t, ir.StatusPlaying, r.Status)
	assert.Equal(t, 100, r.CompletedLoops)
	assert.InDelta(t, 0.25, r.Progress, tol)
	assert.True(t, r.Callbacks.Has(ir.OnStepComplete))
}

func TestEvaluate_HugeLoopCountSaturates(t *testing.T) {
	p := linearParams()
	p.Loops = -1
	p.Duration = 1e-12
	r := newTestRecord(p)

	Evaluate(r, 1e3, nil)
	first := r.CompletedLoops
	assert.Equal(t, math.MaxInt32, first)
	assert.Equal(t, ir.StatusPlaying, r.Status)

	Evaluate(r, 1e4, nil)
	assert.GreaterOrEqual(t, r.CompletedLoops, first, "completed loops never go backwards while playing")
	assert.Equal(t, ir.StatusPlaying, r.Status)
}

func TestEvaluate_StepCompleteOnLoopBoundary(t *testing.T) {
	p := linearParams()
	p.Loops = 3
	r := newTestRecord(p)

	Evaluate(r, 0.5, nil)
	assert.False(t, r.Callbacks.Has(ir.OnStepComplete))

	Evaluate(r, 1.2, nil)
	assert.True(t, r.Callbacks.Has(ir.OnStepComplete))

	Evaluate(r, 1.4, nil)
	assert.False(t, r.Callbacks.Has(ir.OnStepComplete), "same loop does not re-raise")
}

func TestEvaluate_Idempotent(t *testing.T) {
	r := newTestRecord(linearParams())

	Evaluate(r, 0.5, nil)
	first := r.Callbacks
	Evaluate(r, 0.5, nil)
	assert.True(t, first.Has(ir.OnStart))
	assert.Equal(t, ir.OnUpdate, r.Callbacks, "only the repetition-safe update repeats")

	Evaluate(r, 2.0, nil)
	assert.True(t, r.Callbacks.Has(ir.OnComplete))
	Evaluate(r, 2.0, nil)
	assert.Zero(t, r.Callbacks, "a settled completed record raises nothing")
	assert.Equal(t, ir.StatusCompleted, r.Status)
}

func TestEvaluate_RewindLaw(t *testing.T) {
	r := newTestRecord(linearParams())

	Evaluate(r, 0.5, nil)
	require.True(t, r.Started)

	Evaluate(r, -0.1, nil)
	assert.Equal(t, ir.StatusRewindCompleted, r.Status)
	assert.True(t, r.Callbacks.Has(ir.OnRewind))
	assert.False(t, r.Callbacks.Has(ir.OnUpdate), "no update below zero")
	assert.True(t, r.Accessors.Has(ir.AccessorSetter))
	assert.InDelta(t, 0.0, r.Progress, tol)
	assert.InDelta(t, 0.0, r.Position, tol, "position is clamped at zero")

	Evaluate(r, -0.2, nil)
	assert.Equal(t, ir.StatusWaitingForStart, r.Status)
	assert.False(t, r.Started)
	assert.False(t, r.Callbacks.Has(ir.OnRewind))
}

func TestEvaluate_DelayThenStart(t *testing.T) {
	p := linearParams()
	p.Delay = 1
	r := newTestRecord(p)

	Evaluate(r, 0.5, nil)
	assert.Equal(t, ir.StatusDelayed, r.Status)
	assert.True(t, r.Callbacks.Has(ir.OnPlay))
	assert.False(t, r.Callbacks.Has(ir.OnStart))
	assert.True(t, r.Callbacks.Has(ir.OnUpdate))
	assert.False(t, r.Started)

	Evaluate(r, 1.5, nil)
	assert.Equal(t, ir.StatusPlaying, r.Status)
	assert.True(t, r.Callbacks.Has(ir.OnStart))
	assert.True(t, r.Started)
	assert.InDelta(t, 0.5, r.Progress, tol)
}

func TestEvaluate_InvertModes(t *testing.T) {
	tests := []struct {
		mode     ir.InvertMode
		position float64
		want     bool
	}{
		{ir.InvertNone, 1.5, false},
		{ir.InvertImmediate, 0.5, true},
		{ir.InvertAfterDelay, 0.5, false},
		{ir.InvertAfterDelay, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p := linearParams()
			p.Delay = 1
			p.InvertMode = tt.mode
			r := newTestRecord(p)

			Evaluate(r, tt.position, nil)
			assert.Equal(t, tt.want, r.Inverted)
		})
	}
}

func TestEvaluate_CustomCurve(t *testing.T) {
	p := linearParams()
	p.Ease = ease.Custom
	p.Curve = ease.NewCubicBezier(0, 0, 1, 1)
	r := newTestRecord(p)

	Evaluate(r, 0.5, nil)
	assert.InDelta(t, 0.5, r.Progress, 1e-3)

	kill(r, nil)
	assert.True(t, p.Curve.Released(), "kill releases the curve")
	assert.ErrorIs(t, p.Curve.Release(), ease.ErrCurveReleased)
}

func TestKill_Absorbing(t *testing.T) {
	r := newTestRecord(linearParams())
	kills := NewKillCollector()

	assert.True(t, kill(r, kills))
	assert.False(t, kill(r, kills), "second kill is a no-op")
	assert.Equal(t, 1, kills.Len())

	Evaluate(r, 0.5, kills)
	assert.Equal(t, ir.StatusKilled, r.Status)
}

func TestClampLoops(t *testing.T) {
	assert.Equal(t, 0, clampLoops(-3, 2))
	assert.Equal(t, 1, clampLoops(1, 2))
	assert.Equal(t, 2, clampLoops(5, 2))
	assert.Equal(t, 500, clampLoops(500, -1))
}
