package store

import (
	"context"
	"fmt"

	"github.com/roach88/tempo/internal/ir"
)

// ReplayLog is everything needed to re-run a recorded run: its specs and
// settings, the delta of every frame, and the events the run produced.
type ReplayLog struct {
	Run    ir.Run
	Frames []ir.Frame
	Events []ir.FrameEvent
}

// Deltas returns the frame deltas in sequence order.
func (l ReplayLog) Deltas() []float64 {
	deltas := make([]float64, len(l.Frames))
	for i, f := range l.Frames {
		deltas[i] = f.Delta
	}
	return deltas
}

// LoadReplay reads a run for replay.
//
// Frames must be numbered 1..n without gaps: a fresh engine numbers its
// frames that way, and a gap means the recording was interrupted.
func (s *Store) LoadReplay(ctx context.Context, runID string) (ReplayLog, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return ReplayLog{}, fmt.Errorf("load replay: %w", err)
	}

	frames, err := s.ReadFrames(ctx, runID)
	if err != nil {
		return ReplayLog{}, fmt.Errorf("load replay: %w", err)
	}
	for i, f := range frames {
		if f.Seq != int64(i+1) {
			return ReplayLog{}, fmt.Errorf("load replay %s: frame %d missing (found %d)", runID, i+1, f.Seq)
		}
	}

	events, err := s.ReadTrace(ctx, runID)
	if err != nil {
		return ReplayLog{}, fmt.Errorf("load replay: %w", err)
	}

	return ReplayLog{Run: run, Frames: frames, Events: events}, nil
}

// Divergence locates the first event where two traces differ.
// Want or Got is nil when one trace ends before the other.
type Divergence struct {
	Index int
	Want  *ir.FrameEvent
	Got   *ir.FrameEvent
}

func (d Divergence) String() string {
	switch {
	case d.Want == nil:
		return fmt.Sprintf("event %d: unexpected %s", d.Index, describeEvent(*d.Got))
	case d.Got == nil:
		return fmt.Sprintf("event %d: missing %s", d.Index, describeEvent(*d.Want))
	default:
		return fmt.Sprintf("event %d: want %s, got %s", d.Index, describeEvent(*d.Want), describeEvent(*d.Got))
	}
}

func describeEvent(ev ir.FrameEvent) string {
	return fmt.Sprintf("frame %d %s.%s (%s, progress %d, loops %d)",
		ev.Frame, ev.Timeline, ev.Event, ev.Status, ev.ProgressMicro, ev.CompletedLoops)
}

// FirstDivergence compares two traces event by event. It reports false
// when they are identical.
func FirstDivergence(want, got []ir.FrameEvent) (Divergence, bool) {
	n := min(len(want), len(got))
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return Divergence{Index: i, Want: &want[i], Got: &got[i]}, true
		}
	}
	switch {
	case len(want) > n:
		return Divergence{Index: n, Want: &want[n]}, true
	case len(got) > n:
		return Divergence{Index: n, Got: &got[n]}, true
	}
	return Divergence{}, false
}
