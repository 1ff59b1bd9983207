package engine

import (
	"math"

	"github.com/roach88/tempo/internal/ir"
)

// Evaluate advances one record to currentPosition and raises the events
// implied by the transition. It reports whether the record was killed
// during this call.
//
// Evaluate touches nothing but rec and the kill collector, so any number
// of records may be evaluated concurrently as long as each record is owned
// by exactly one goroutine.
//
// Every call starts by clearing Callbacks and Accessors: they describe the
// transition just computed and nothing older. Invalid and Killed records are
// absorbing and left untouched.
func Evaluate(rec *Record, currentPosition float64, kills *KillCollector) bool {
	if !rec.Active() {
		return false
	}
	rec.Callbacks = 0
	rec.Accessors = 0

	switch rec.Status {
	case ir.StatusWaitingForStart:
		if (!rec.AutoPlay || currentPosition <= 0) && !rec.PlayRequested {
			return false
		}
		rec.PlayRequested = false
		rec.Callbacks |= ir.OnPlay | ir.OnStartUp
		if rec.Delay > 0 {
			rec.Status = ir.StatusDelayed
		} else {
			rec.Status = ir.StatusPlaying
			rec.Callbacks |= ir.OnStart
			rec.Started = true
		}
	case ir.StatusCompleted:
		if rec.AutoKill {
			kill(rec, kills)
			return true
		}
	}

	switch rec.Status {
	case ir.StatusPlaying, ir.StatusDelayed, ir.StatusRewindCompleted, ir.StatusCompleted:
	default:
		return false
	}

	loops := rec.Loops
	duration := rec.Duration
	currentTime := currentPosition - rec.Delay
	prevLoops := rec.CompletedLoops

	var (
		linear    float64
		completed int
		clamped   int
		done      bool
	)
	if duration == 0 {
		done = currentTime > 0
		switch {
		case done:
			linear, completed = 1, loops
		case currentTime < 0:
			completed = -1
		}
		clamped = clampLoops(completed, loops)
	} else {
		// Bounded before conversion; a huge ratio would otherwise wrap.
		completed = int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Floor(currentTime/duration))))
		clamped = clampLoops(completed, loops)
		done = loops >= 0 && clamped > loops-1
		if done {
			linear = 1
		} else {
			loopTime := currentTime - duration*float64(clamped)
			linear = math.Max(0, math.Min(1, loopTime/duration))
		}
	}

	rec.Position = math.Max(currentPosition, 0)
	rec.CompletedLoops = completed

	switch rec.LoopType {
	case ir.LoopYoyo:
		rec.Progress = rec.ease(linear)
		if (clamped+int(linear))%2 == 1 {
			rec.Progress = 1 - rec.Progress
		}
	case ir.LoopIncremental:
		// Unbounded for infinite loops.
		rec.Progress = rec.ease(1)*float64(clamped) + rec.ease(math.Mod(linear, 1))
	default:
		rec.Progress = rec.ease(linear)
	}

	completedNow := false
	switch {
	case done:
		if rec.Status != ir.StatusCompleted {
			rec.Callbacks |= ir.OnComplete
			completedNow = true
		}
		rec.Status = ir.StatusCompleted

	case currentTime < 0:
		if rec.Started && completed <= 0 {
			if prevLoops > completed {
				rec.Callbacks |= ir.OnRewind
				rec.Status = ir.StatusRewindCompleted
			} else {
				rec.Started = false
				rec.Status = ir.StatusWaitingForStart
			}
		} else {
			rec.Status = ir.StatusDelayed
		}
		if currentPosition >= 0 {
			rec.Callbacks |= ir.OnUpdate
		}

	default:
		if rec.Status == ir.StatusDelayed {
			rec.Callbacks |= ir.OnStart
			rec.Started = true
		}
		rec.Status = ir.StatusPlaying
		rec.Callbacks |= ir.OnUpdate
		if prevLoops < completed && completed > 0 {
			rec.Callbacks |= ir.OnStepComplete
		}
	}

	if rec.Callbacks.Has(ir.OnStartUp) {
		rec.Accessors |= ir.AccessorGetter
	}
	if rec.Callbacks&(ir.OnUpdate|ir.OnComplete|ir.OnRewind) != 0 {
		rec.Accessors |= ir.AccessorSetter
	}

	switch rec.InvertMode {
	case ir.InvertImmediate:
		rec.Inverted = true
	case ir.InvertAfterDelay:
		rec.Inverted = currentTime >= 0
	default:
		rec.Inverted = false
	}

	// A record that completes with AutoKill set dies in the same call.
	// Its accessor bits survive so the terminal value still reaches the
	// target before the slot is reclaimed.
	if completedNow && rec.AutoKill {
		accessors := rec.Accessors
		kill(rec, kills)
		rec.Accessors = accessors
		return true
	}
	return false
}

// kill moves rec into the absorbing Killed state: accessors cleared, custom
// curve released, OnKill raised and the handle queued for reclamation.
// Killing a record that is not active is a no-op, so a handle is queued at
// most once.
func kill(rec *Record, kills *KillCollector) bool {
	if !rec.Active() {
		return false
	}
	rec.Status = ir.StatusKilled
	rec.Accessors = 0
	if rec.Curve != nil && !rec.Curve.Released() {
		_ = rec.Curve.Release()
	}
	rec.Callbacks |= ir.OnKill
	if kills != nil {
		kills.Push(rec.Handle)
	}
	return true
}

func clampLoops(completed, loops int) int {
	if completed < 0 {
		return 0
	}
	if loops >= 0 && completed > loops {
		return loops
	}
	return completed
}
