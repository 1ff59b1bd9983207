package testutil

import (
	"context"
	"testing"

	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

// RunFrames runs one engine frame per delta and returns every dispatched
// event in order. Any frame error or callback error fails the test.
func RunFrames(t testing.TB, e *engine.Engine, deltas ...float64) []ir.FrameEvent {
	t.Helper()

	var events []ir.FrameEvent
	for _, d := range deltas {
		report, err := e.RunFrame(context.Background(), d)
		if err != nil {
			t.Fatalf("frame %d: %v", report.Seq, err)
		}
		for _, cbErr := range report.Errors {
			t.Fatalf("frame %d: %v", report.Seq, cbErr)
		}
		events = append(events, report.Events...)
	}
	return events
}

// EventNames flattens a trace to "timeline.event" strings for compact
// assertions.
func EventNames(events []ir.FrameEvent) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Timeline + "." + ev.Event
	}
	return names
}
