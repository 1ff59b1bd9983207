package store

import (
	"context"
	"strings"
	"testing"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

var _ engine.Tracer = (*Recorder)(nil)

func TestRecorder_RecordsEngineFrames(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec, err := s.NewRecorder(ctx, createTestRun("run-a"))
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	e := engine.New(engine.WithTracer(rec))
	_, err = e.Spawn("fade", engine.Params{
		Duration:      1,
		Loops:         1,
		PlaybackSpeed: 1,
		Ease:          ease.Linear,
		AutoPlay:      true,
		AutoKill:      true,
	}, nil)
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := e.RunFrame(ctx, 0.5); err != nil {
			t.Fatalf("RunFrame(%d) failed: %v", i+1, err)
		}
	}

	stored, err := s.ReadTrace(ctx, "run-a")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	if d, diverged := FirstDivergence(rec.Events(), stored); diverged {
		t.Errorf("stored trace differs from recorded: %s", d)
	}
	if len(stored) == 0 || stored[len(stored)-1].Event != "kill" {
		t.Errorf("trace should end with the autokill: %+v", stored)
	}

	frames, err := s.ReadFrames(ctx, "run-a")
	if err != nil {
		t.Fatalf("ReadFrames() failed: %v", err)
	}
	if len(frames) != 3 {
		t.Errorf("recorded %d frames, want 3", len(frames))
	}
}

func TestRecorder_Finish(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec, err := s.NewRecorder(ctx, createTestRun("run-a"))
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	events := []ir.FrameEvent{createTestEvent(1, "fade", "update", 0.5)}
	if err := rec.RecordFrame(ctx, ir.Frame{Seq: 1, Delta: 0.5}, events); err != nil {
		t.Fatalf("RecordFrame() failed: %v", err)
	}

	hash, err := rec.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish() failed: %v", err)
	}
	want, err := ir.TraceHash(events)
	if err != nil {
		t.Fatalf("TraceHash() failed: %v", err)
	}
	if hash != want {
		t.Errorf("Finish() = %s, want %s", hash, want)
	}
	if rec.Run().TraceHash != hash {
		t.Error("Run() does not carry the trace hash")
	}

	run, err := s.ReadRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if run.TraceHash != hash {
		t.Errorf("stored trace hash = %q, want %q", run.TraceHash, hash)
	}
}

func TestRecorder_DuplicateFrame(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec, err := s.NewRecorder(ctx, createTestRun("run-a"))
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	if err := rec.RecordFrame(ctx, ir.Frame{Seq: 1, Delta: 0.1}, nil); err != nil {
		t.Fatalf("RecordFrame() failed: %v", err)
	}

	err = rec.RecordFrame(ctx, ir.Frame{Seq: 1, Delta: 0.1}, nil)
	if err == nil || !strings.Contains(err.Error(), "already recorded") {
		t.Errorf("RecordFrame() duplicate error = %v", err)
	}
}

func TestRecorder_EventsIsCopy(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	rec, err := s.NewRecorder(ctx, createTestRun("run-a"))
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}
	if err := rec.RecordFrame(ctx, ir.Frame{Seq: 1, Delta: 0.1}, []ir.FrameEvent{
		createTestEvent(1, "fade", "update", 0.1),
	}); err != nil {
		t.Fatalf("RecordFrame() failed: %v", err)
	}

	got := rec.Events()
	got[0].Timeline = "mutated"
	if rec.Events()[0].Timeline != "fade" {
		t.Error("Events() exposes internal state")
	}
}
