package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/queryir"
	"github.com/roach88/tempo/internal/querysql"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

var (
	runFields   = []string{"id", "label", "workers", "time_scale", "specs", "trace_hash", "created_seq"}
	frameFields = []string{"run_id", "frame_seq", "delta"}
	eventFields = []string{"frame_seq", "timeline", "event", "status", "progress_micro", "completed_loops"}
)

// EventQuery selects a run's events, optionally narrowed to one timeline
// and one event name. Empty strings match everything.
func EventQuery(runID, timeline, event string) queryir.Select {
	eq := func(field, value string) queryir.Equals {
		e := queryir.Equals{Field: field}
		if value != "" {
			e.Value = ir.IRString(value)
		}
		return e
	}
	return queryir.Select{
		From: "frame_events",
		Filter: queryir.Where(
			queryir.Equals{Field: "run_id", Value: ir.IRString(runID)},
			eq("timeline", timeline),
			eq("event", event),
		),
	}
}

// ReadRun retrieves a single run by ID.
// Returns an error wrapping ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	runs, err := s.queryRuns(ctx, queryir.Equals{Field: "id", Value: ir.IRString(id)})
	if err != nil {
		return ir.Run{}, err
	}
	if len(runs) == 0 {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	return runs[0], nil
}

// ListRuns returns every run in creation order.
// Returns an empty slice (not nil) when the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	return s.queryRuns(ctx, nil)
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (ir.Run, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return ir.Run{}, err
	}
	if len(runs) == 0 {
		return ir.Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	return runs[len(runs)-1], nil
}

func (s *Store) queryRuns(ctx context.Context, filter queryir.Predicate) ([]ir.Run, error) {
	rows, err := s.query(ctx, queryir.Select{From: "runs", Fields: runFields, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var run ir.Run
		var specsJSON string
		if err := rows.Scan(
			&run.ID,
			&run.Label,
			&run.Workers,
			&run.TimeScale,
			&specsJSON,
			&run.TraceHash,
			&run.Seq,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.Specs, err = unmarshalSpecs(specsJSON); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadFrames returns a run's frames in sequence order.
func (s *Store) ReadFrames(ctx context.Context, runID string) ([]ir.Frame, error) {
	rows, err := s.query(ctx, queryir.Select{
		From:   "frames",
		Fields: frameFields,
		Filter: queryir.Equals{Field: "run_id", Value: ir.IRString(runID)},
	})
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	frames := []ir.Frame{}
	for rows.Next() {
		var f ir.Frame
		if err := rows.Scan(&f.RunID, &f.Seq, &f.Delta); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return frames, nil
}

// ReadEvents runs a query against frame_events and returns the matching
// events in dispatch order. The query's Fields are replaced by the event
// columns; only its table and filter matter.
func (s *Store) ReadEvents(ctx context.Context, q queryir.Query) ([]ir.FrameEvent, error) {
	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		if query == nil {
			return nil, fmt.Errorf("read events: nil query")
		}
		sel = *query
	default:
		return nil, fmt.Errorf("read events: unsupported query type %T", q)
	}
	if sel.From != "frame_events" {
		return nil, fmt.Errorf("read events: query selects from %q, want frame_events", sel.From)
	}
	sel.Fields = eventFields

	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	events := []ir.FrameEvent{}
	for rows.Next() {
		var ev ir.FrameEvent
		if err := rows.Scan(
			&ev.Frame,
			&ev.Timeline,
			&ev.Event,
			&ev.Status,
			&ev.ProgressMicro,
			&ev.CompletedLoops,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadTrace returns every event of a run in dispatch order.
func (s *Store) ReadTrace(ctx context.Context, runID string) ([]ir.FrameEvent, error) {
	return s.ReadEvents(ctx, EventQuery(runID, "", ""))
}

// query compiles q through querysql, which appends the table's ORDER BY.
func (s *Store) query(ctx context.Context, q queryir.Query) (*sql.Rows, error) {
	sqlText, params, err := querysql.NewSQLCompiler().Compile(q)
	if err != nil {
		return nil, err
	}
	return s.db.QueryContext(ctx, sqlText, params...)
}
