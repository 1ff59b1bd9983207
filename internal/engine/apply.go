package engine

import (
	"github.com/roach88/tempo/internal/ir"
)

// applyPhase runs the sequential half of a frame.
//
// User code (bindings and listeners) may Spawn, Kill or mutate timelines.
// Spawn can grow the slot slice, so slots are re-resolved by index after
// every call instead of holding pointers across it.
func (e *Engine) applyPhase(report *FrameReport) {
	order := e.table.indices(false)

	for _, idx := range order {
		s := &e.table.slots[idx]
		if !s.rec.Accessors.Has(ir.AccessorGetter) || s.binding == nil {
			continue
		}
		b := s.binding
		e.safeCall(report, idx, "capture", b.Capture)
	}

	for _, idx := range order {
		s := &e.table.slots[idx]
		if !s.rec.Accessors.Has(ir.AccessorSetter) || s.binding == nil {
			continue
		}
		b, r := s.binding, s.rec
		e.safeCall(report, idx, "apply", func() {
			b.Apply(r.Progress, r.Inverted, r.Relative)
		})
	}

	for _, idx := range order {
		if e.table.slots[idx].pending {
			e.dispatch(report, idx)
		}
	}

	e.reclaim(report)
}

// dispatch emits a slot's pending events and runs their listeners in
// CallbackOrder. Flags are re-read before each step so a listener that
// kills its own timeline still sees OnKill dispatched in this pass.
func (e *Engine) dispatch(report *FrameReport, idx uint32) {
	if e.table.slots[idx].rec.Callbacks.Has(ir.OnStartUp) {
		report.Events = append(report.Events, e.event(report.Seq, idx, ir.OnStartUp))
	}
	for _, f := range ir.CallbackOrder {
		s := &e.table.slots[idx]
		if !s.rec.Callbacks.Has(f) {
			continue
		}
		report.Events = append(report.Events, e.event(report.Seq, idx, f))
		fns := s.listeners[f]
		phase := "on " + ir.EventName(f)
		for _, fn := range fns {
			e.safeCall(report, idx, phase, fn)
		}
	}
	e.table.slots[idx].pending = false
}

// reclaim drains the kill collector until it stays empty. OnKill
// listeners may kill further timelines; those are reclaimed in the same
// frame, up to the cascade quota.
func (e *Engine) reclaim(report *FrameReport) {
	quota := newCascadeQuota(e.maxCascade)
	for e.kills.Len() > 0 {
		if err := quota.Check(report.Seq, e.kills.Len()); err != nil {
			report.Errors = append(report.Errors, err)
			e.logger.Warn("kill cascade deferred", "frame", report.Seq, "error", err)
			return
		}
		handles := e.kills.Drain()
		for _, h := range handles {
			idx, err := e.table.lookup(h)
			if err != nil {
				e.logger.Warn("kill collector held a stale handle", "handle", h.String())
				continue
			}
			if e.table.slots[idx].pending {
				e.dispatch(report, idx)
			}
			e.table.release(idx)
			report.Reclaimed = append(report.Reclaimed, h)
		}
	}
}

func (e *Engine) event(seq int64, idx uint32, f ir.CallbackFlags) ir.FrameEvent {
	s := &e.table.slots[idx]
	return ir.FrameEvent{
		Frame:          seq,
		Timeline:       s.label(),
		Event:          ir.EventName(f),
		Status:         s.rec.Status.String(),
		ProgressMicro:  ir.ToMicro(s.rec.Progress),
		CompletedLoops: int64(s.rec.CompletedLoops),
	}
}

// safeCall runs user code for one slot. A panic is recovered, recorded in
// the report and logged; the frame carries on with the next call.
func (e *Engine) safeCall(report *FrameReport, idx uint32, phase string, fn func()) {
	s := &e.table.slots[idx]
	h, name := s.rec.Handle, s.label()
	defer func() {
		if r := recover(); r != nil {
			err := NewCallbackError(h, name, phase, r)
			report.Errors = append(report.Errors, err)
			e.logger.Warn("apply pass recovered panic",
				"frame", report.Seq,
				"timeline", name,
				"phase", phase,
				"error", err,
			)
		}
	}()
	fn()
}
