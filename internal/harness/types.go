package harness

import (
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

// TimelineState is one timeline as observed after a frame.
type TimelineState struct {
	Status         string    `json:"status"`
	ProgressMicro  int64     `json:"progress_micro"`
	CompletedLoops int64     `json:"completed_loops"`
	Values         []float64 `json:"values,omitempty"`
	Text           string    `json:"text,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held and no callback failed.
	Pass bool `json:"pass"`

	// Trace contains every dispatched event in order, as read back from
	// the trace store.
	Trace []ir.FrameEvent `json:"trace"`

	// TraceHash is ir.TraceHash(Trace).
	TraceHash string `json:"trace_hash"`

	// Errors contains assertion failures and callback errors.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// States holds every named timeline's state after each frame,
	// indexed by frame number (States[0] is before the first frame).
	States []map[string]TimelineState `json:"-"`

	// params holds each timeline's resolved parameters for law checks.
	params map[string]engine.Params
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.FrameEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// StateAt returns a timeline's state after frame; frame 0 selects the last
// frame.
func (r *Result) StateAt(timeline string, frame int) (TimelineState, bool) {
	if len(r.States) == 0 {
		return TimelineState{}, false
	}
	if frame <= 0 {
		frame = len(r.States) - 1
	}
	if frame >= len(r.States) {
		return TimelineState{}, false
	}
	s, ok := r.States[frame][timeline]
	return s, ok
}
