package store

import (
	"context"
	"fmt"

	"github.com/roach88/tempo/internal/ir"
)

// WriteRun inserts a run record and returns it with Seq assigned.
//
// created_seq is a logical counter: one past the highest existing value.
// A run ID may be written only once.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) (ir.Run, error) {
	specsJSON, err := marshalSpecs(run.Specs)
	if err != nil {
		return run, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(created_seq), 0) + 1 FROM runs`,
	).Scan(&seq); err != nil {
		return run, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, label, workers, time_scale, specs, trace_hash, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Label,
		run.Workers,
		run.TimeScale,
		specsJSON,
		run.TraceHash,
		seq,
	)
	if err != nil {
		return run, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("write run: commit: %w", err)
	}

	run.Seq = seq
	return run, nil
}

// WriteFrame records one frame and the events it dispatched in a single
// transaction. Events keep their slice order as ord.
//
// Uses ON CONFLICT(run_id, frame_seq) DO NOTHING for idempotency: writing
// a frame that already exists leaves the stored frame and its events
// untouched and returns inserted=false.
//
// Note: frame.RunID must reference an existing run (foreign key constraint).
func (s *Store) WriteFrame(ctx context.Context, frame ir.Frame, events []ir.FrameEvent) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write frame: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO frames
		(run_id, frame_seq, delta)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, frame_seq) DO NOTHING
	`,
		frame.RunID,
		frame.Seq,
		frame.Delta,
	)
	if err != nil {
		return false, fmt.Errorf("write frame %d: insert: %w", frame.Seq, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write frame %d: rows affected: %w", frame.Seq, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frame_events
		(run_id, frame_seq, ord, timeline, event, status, progress_micro, completed_loops)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("write frame %d: prepare events: %w", frame.Seq, err)
	}
	defer stmt.Close()

	for i, ev := range events {
		if ev.Frame != frame.Seq {
			return false, fmt.Errorf("write frame %d: event %d belongs to frame %d", frame.Seq, i, ev.Frame)
		}
		if _, err := stmt.ExecContext(ctx,
			frame.RunID,
			frame.Seq,
			i,
			ev.Timeline,
			ev.Event,
			ev.Status,
			ev.ProgressMicro,
			ev.CompletedLoops,
		); err != nil {
			return false, fmt.Errorf("write frame %d: event %d: %w", frame.Seq, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write frame %d: commit: %w", frame.Seq, err)
	}

	return true, nil
}

// FinishRun stores the trace hash of a completed run.
func (s *Store) FinishRun(ctx context.Context, runID, traceHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET trace_hash = ? WHERE id = ?
	`, traceHash, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: rows affected: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
