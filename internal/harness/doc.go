// Package harness runs YAML scenarios against the real engine and checks
// the resulting trace.
//
// # Scenario Format
//
//	name: fade_and_kill
//	description: "A fade completes, a blink is killed mid-flight"
//	specs: ../timelines          # CUE dir, relative to this file
//	timelines:                   # or inline, instead of specs
//	  - name: blink
//	    duration: 0.5
//	    loops: -1
//	workers: 4
//	time_scale: 1
//	frames: [0.25, 0.25, 0.25, 0.25]
//	actions:
//	  - frame: 3
//	    type: kill
//	    timeline: blink
//	assertions:
//	  - type: status
//	    timeline: fade
//	    status: killed
//	  - type: progress
//	    timeline: blink
//	    frame: 2
//	    progress: 0
//	  - type: event_order
//	    events: [fade.start, fade.complete, blink.kill]
//	  - type: laws
//	    timeline: fade
//
// # Assertion Types
//
//   - status: lifecycle state of a timeline after a frame
//   - progress: eased progress after a frame, within tolerance
//   - value: animated property value after a frame, within tolerance
//   - event_count: how many times an event was dispatched
//   - event_order: first occurrences of events appear in order
//   - laws: evaluator laws hold for a timeline's parameters
//
// A frame of 0 (the default) means the state after the last frame.
//
// # Determinism
//
// Every scenario records into a fresh in-memory trace store under a fixed
// run ID, and the trace is read back from the store. The same scenario
// yields a byte-identical canonical trace regardless of worker count, so
// traces can be compared against golden files.
package harness
