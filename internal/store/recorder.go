package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/tempo/internal/ir"
)

// Recorder persists one run frame by frame. It satisfies engine.Tracer.
//
// The recorder also keeps the trace in memory, so Finish can hash it
// without reading it back.
type Recorder struct {
	store  *Store
	run    ir.Run
	events []ir.FrameEvent
}

// NewRecorder writes the run record and returns a recorder bound to it.
func (s *Store) NewRecorder(ctx context.Context, run ir.Run) (*Recorder, error) {
	written, err := s.WriteRun(ctx, run)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: s, run: written}, nil
}

// RecordFrame writes a frame under the recorder's run.
// A frame number may be recorded only once.
func (r *Recorder) RecordFrame(ctx context.Context, frame ir.Frame, events []ir.FrameEvent) error {
	frame.RunID = r.run.ID
	inserted, err := r.store.WriteFrame(ctx, frame, events)
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("frame %d of run %s already recorded", frame.Seq, r.run.ID)
	}
	r.events = append(r.events, events...)
	return nil
}

// Run returns the run record, including its trace hash once finished.
func (r *Recorder) Run() ir.Run {
	return r.run
}

// Events returns a copy of every event recorded so far.
func (r *Recorder) Events() []ir.FrameEvent {
	return slices.Clone(r.events)
}

// Finish hashes the recorded trace and stores the hash on the run.
func (r *Recorder) Finish(ctx context.Context) (string, error) {
	hash, err := ir.TraceHash(r.events)
	if err != nil {
		return "", fmt.Errorf("finish run %s: %w", r.run.ID, err)
	}
	if err := r.store.FinishRun(ctx, r.run.ID, hash); err != nil {
		return "", err
	}
	r.run.TraceHash = hash
	return hash, nil
}
