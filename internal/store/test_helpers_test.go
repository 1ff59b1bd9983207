package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/tempo/internal/ir"
)

// createTestStore opens a fresh store in a temp dir, closed on cleanup.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a run with one float timeline.
func createTestRun(id string) ir.Run {
	loops := 2
	return ir.Run{
		ID:        id,
		Label:     "test",
		Workers:   1,
		TimeScale: 1,
		Specs: []ir.TimelineSpec{{
			Name:     "fade",
			Duration: 1,
			Loops:    &loops,
			Value:    ir.ValueSpec{Kind: ir.ValueFloat, From: []float64{0}, To: []float64{1}},
		}},
	}
}

// writeTestRun writes createTestRun(id) and fails the test on error.
func writeTestRun(t *testing.T, s *Store, id string) ir.Run {
	t.Helper()
	run, err := s.WriteRun(context.Background(), createTestRun(id))
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}

// createTestEvent builds an event with the status matching its name.
func createTestEvent(frame int64, timeline, event string, progress float64) ir.FrameEvent {
	status := "playing"
	switch event {
	case "complete":
		status = "completed"
	case "kill":
		status = "killed"
	}
	return ir.FrameEvent{
		Frame:         frame,
		Timeline:      timeline,
		Event:         event,
		Status:        status,
		ProgressMicro: ir.ToMicro(progress),
	}
}
