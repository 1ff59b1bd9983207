package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tempo/internal/ir"
)

// FrameReport summarizes one frame.
type FrameReport struct {
	Seq       int64
	Delta     float64
	Evaluated int
	// Events lists every raised event in dispatch order.
	Events []ir.FrameEvent
	// Reclaimed lists the handles whose slots were freed this frame.
	Reclaimed []Handle
	// Errors holds recovered binding and listener failures. They never
	// stop the frame.
	Errors []error
}

// RunFrame advances every active timeline by delta and applies the
// results.
//
// A frame has two halves separated by a join barrier:
//  1. Evaluate: each active record's playhead moves by
//     delta * playbackSpeed * timeScale (timeScale is skipped for records
//     that ignore it), then Evaluate runs. Records are partitioned across
//     workers and no record is visible to more than one worker.
//  2. Apply, strictly sequential: Getter captures, Setter writes, listener
//     dispatch in the fixed event order, then kill-collector drain and slot
//     reclamation.
//
// RunFrame returns an error only when the frame could not run: the context
// is already done, a frame is already in progress, or the tracer failed.
func (e *Engine) RunFrame(ctx context.Context, delta float64) (FrameReport, error) {
	if e.inFrame {
		return FrameReport{}, newFrameInProgressError("RunFrame")
	}
	if err := ctx.Err(); err != nil {
		return FrameReport{}, err
	}
	e.inFrame = true
	defer func() { e.inFrame = false }()

	report := FrameReport{Seq: e.clock.Next(), Delta: delta}

	active := e.table.indices(true)
	e.evaluatePhase(active, delta)
	report.Evaluated = len(active)

	e.applyPhase(&report)

	e.logger.Debug("frame complete",
		"frame", report.Seq,
		"evaluated", report.Evaluated,
		"events", len(report.Events),
		"reclaimed", len(report.Reclaimed),
		"errors", len(report.Errors),
	)

	if e.tracer != nil {
		frame := ir.Frame{Seq: report.Seq, Delta: delta}
		if err := e.tracer.RecordFrame(ctx, frame, report.Events); err != nil {
			return report, &RuntimeError{
				Code:    ErrCodeTraceFailed,
				Message: fmt.Sprintf("record frame %d: %v", report.Seq, err),
			}
		}
	}
	return report, nil
}

// evaluatePhase advances and evaluates the given slots, fanning out across
// e.workers goroutines. It returns after every record has been evaluated.
func (e *Engine) evaluatePhase(active []uint32, delta float64) {
	e.evaluating.Store(true)
	defer e.evaluating.Store(false)

	slots := e.table.slots
	step := func(idx uint32) {
		s := &slots[idx]
		r := &s.rec
		if r.Status != ir.StatusWaitingForStart || r.AutoPlay || r.PlayRequested {
			scale := e.timeScale
			if r.IgnoreTimeScale {
				scale = 1
			}
			r.Playhead += delta * r.PlaybackSpeed * scale
		}
		Evaluate(r, r.Playhead, e.kills)
		s.pending = r.Callbacks != 0
	}

	workers := e.workers
	if workers <= 1 || len(active) < 2 {
		for _, idx := range active {
			step(idx)
		}
		return
	}

	chunk := (len(active) + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(active); start += chunk {
		part := active[start:min(start+chunk, len(active))]
		g.Go(func() error {
			for _, idx := range part {
				step(idx)
			}
			return nil
		})
	}
	// Workers never fail; Wait is the join barrier.
	_ = g.Wait()
}
