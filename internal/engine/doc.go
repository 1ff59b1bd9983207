// Package engine drives populations of tween timelines frame by frame.
//
// ARCHITECTURE:
//
// Records and the Evaluator:
// Every timeline is a Record: static Params plus mutable playback state.
// Evaluate is a pure transition function over one record. Given the new
// playhead it updates status, progress and completed loops, and raises
// callback and accessor flags describing what happened. It never calls
// user code.
//
// Two-Phase Frames:
//  1. Evaluate phase: active records are partitioned across workers
//     (errgroup) and evaluated in parallel. Workers share nothing but the
//     lock-free kill collector.
//  2. Apply phase: a single goroutine captures start values (Getter),
//     writes animated values (Setter), dispatches listeners in the fixed
//     event order and finally reclaims killed slots.
//
// Handles:
// A Handle is a slot index plus a generation. Reclaiming a slot bumps the
// generation, so a handle kept past its timeline's death is reported as
// stale instead of aliasing the slot's next occupant.
//
// Host Loop:
// Hosts either call RunFrame directly or Enqueue commands from any
// goroutine and let Run process them in FIFO order.
//
// CRITICAL PATTERNS:
//
// Frame Clock:
// Frames are stamped with a monotonic sequence from Clock.Next().
// NEVER use wall-clock timestamps for ordering traces.
//
// Deterministic Apply:
// Apply passes walk slots in index order and the kill collector drains in
// index order, so the event trace of a run does not depend on the number
// of workers.
package engine
