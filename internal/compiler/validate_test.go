package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/ir"
)

func validSpec(name string) ir.TimelineSpec {
	return ir.TimelineSpec{
		Name:     name,
		Duration: 1,
		Ease:     "out_quad",
		LoopType: "restart",
		Value:    ir.ValueSpec{Kind: ir.ValueFloat, To: []float64{1}},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidTimeline(t *testing.T) {
	spec := validSpec("fade")
	assert.Empty(t, Validate(&spec))
	assert.Empty(t, Validate(spec), "value and pointer forms are both accepted")
}

func TestValidateTimelineErrors(t *testing.T) {
	zero := 0.0
	nan := math.NaN()
	tests := []struct {
		name   string
		mutate func(*ir.TimelineSpec)
		code   string
		field  string
	}{
		{"negative duration", func(s *ir.TimelineSpec) { s.Duration = -1 }, ErrNegativeDuration, "duration"},
		{"NaN duration", func(s *ir.TimelineSpec) { s.Duration = math.NaN() }, ErrNegativeDuration, "duration"},
		{"unknown ease", func(s *ir.TimelineSpec) { s.Ease = "wobble" }, ErrUnknownEase, "ease"},
		{"unknown loop type", func(s *ir.TimelineSpec) { s.LoopType = "pingpong" }, ErrUnknownMode, "loop_type"},
		{"unknown invert mode", func(s *ir.TimelineSpec) { s.InvertMode = "flip" }, ErrUnknownMode, "invert_mode"},
		{"zero speed", func(s *ir.TimelineSpec) { s.PlaybackSpeed = &zero }, ErrBadPlaybackSpeed, "playback_speed"},
		{"NaN speed", func(s *ir.TimelineSpec) { s.PlaybackSpeed = &nan }, ErrBadPlaybackSpeed, "playback_speed"},
		{"short curve", func(s *ir.TimelineSpec) { s.Curve = []float64{0, 1} }, ErrCurveArity, "curve"},
		{"custom ease without curve", func(s *ir.TimelineSpec) { s.Ease = "custom" }, ErrCurveArity, "curve"},
		{"float without to", func(s *ir.TimelineSpec) { s.Value.To = nil }, ErrInvalidValue, "value"},
		{"vector length mismatch", func(s *ir.TimelineSpec) {
			s.Value = ir.ValueSpec{Kind: ir.ValueVector, From: []float64{1}, To: []float64{1, 2}}
		}, ErrInvalidValue, "value"},
		{"short path", func(s *ir.TimelineSpec) {
			s.Value = ir.ValueSpec{Kind: ir.ValuePath, Points: [][]float64{{0, 0}}}
		}, ErrInvalidValue, "value"},
		{"shake without strength", func(s *ir.TimelineSpec) {
			s.Value = ir.ValueSpec{Kind: ir.ValueShake}
		}, ErrInvalidValue, "value"},
		{"unknown kind", func(s *ir.TimelineSpec) {
			s.Value = ir.ValueSpec{Kind: "color"}
		}, ErrInvalidValue, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec("x")
			tt.mutate(&spec)

			errs := Validate(&spec)
			require.Len(t, errs, 1, "got %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	spec := validSpec("x")
	spec.Duration = -1
	spec.Ease = "wobble"
	spec.LoopType = "pingpong"

	errs := Validate(&spec)
	assert.Equal(t, []string{ErrNegativeDuration, ErrUnknownEase, ErrUnknownMode}, codes(errs))
}

func TestValidateDuplicateNames(t *testing.T) {
	specs := []ir.TimelineSpec{validSpec("a"), validSpec("b"), validSpec("a")}
	specs[1].Duration = -1

	errs := Validate(specs)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrNegativeDuration, errs[0].Code)
	assert.Equal(t, "timelines[1].duration", errs[0].Field)
	assert.Equal(t, ErrDuplicateName, errs[1].Code)
	assert.Equal(t, "timelines[2].name", errs[1].Field)
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate(42)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "ease", Message: "unknown ease", Code: ErrUnknownEase}
	assert.Equal(t, "[E102] ease: unknown ease", e.Error())

	e.Line = 7
	assert.Equal(t, "[E102] line 7: ease: unknown ease", e.Error())
}
