package engine

import (
	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/ir"
)

// Params are the static parameters of a timeline.
//
// The engine does not validate Params; the construction layer rejects or
// normalizes bad values (negative duration, NaN) before Spawn.
type Params struct {
	Duration      float64
	Delay         float64
	Loops         int // negative = infinite
	LoopType      ir.LoopType
	PlaybackSpeed float64
	Ease          ease.Kind
	// Curve is the custom easing buffer used when Ease is ease.Custom.
	// It is owned by the record and released exactly once.
	Curve *ease.Curve

	AutoPlay        bool
	AutoKill        bool
	IgnoreTimeScale bool
	Relative        bool
	InvertMode      ir.InvertMode
}

// Record is the live state of one timeline.
//
// State fields (Status through Inverted) are written only by Evaluate and
// Kill. Playhead is advanced by the batch driver. The apply pass reads
// Callbacks and Accessors and never writes state.
type Record struct {
	Handle Handle
	Params

	Status         ir.Status
	Position       float64 // last observed playhead, never negative
	Progress       float64
	CompletedLoops int
	Started        bool
	Inverted       bool

	// Playhead is the raw, unclamped position fed to Evaluate. It goes
	// negative when a timeline is driven backwards past its start.
	Playhead float64

	// PlayRequested lets a waiting record start on its next evaluation
	// regardless of AutoPlay or a non-positive playhead.
	PlayRequested bool

	Callbacks ir.CallbackFlags
	Accessors ir.AccessorFlags
}

// NewRecord creates a record in WaitingForStart.
func NewRecord(h Handle, p Params) Record {
	return Record{
		Handle: h,
		Params: p,
		Status: ir.StatusWaitingForStart,
	}
}

// Active reports whether the record still takes part in evaluation.
func (r *Record) Active() bool {
	return r.Status != ir.StatusInvalid && r.Status != ir.StatusKilled
}

func (r *Record) ease(t float64) float64 {
	return ease.Evaluate(r.Ease, r.Curve, t)
}
