package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/tween"
)

// TimelineSummary is a timeline's state after a run.
type TimelineSummary struct {
	Name   string    `json:"name"`
	Status string    `json:"status"`
	Loops  int       `json:"completed_loops"`
	Values []float64 `json:"values,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// playback is a set of compiled timelines spawned onto one engine, each
// animating its own cell.
type playback struct {
	engine  *engine.Engine
	names   []string
	handles []engine.Handle
	cells   []*tween.Cell
}

// spawnAll spawns every spec in order with the default factory settings.
func spawnAll(eng *engine.Engine, specs []ir.TimelineSpec) (*playback, error) {
	p := &playback{engine: eng}
	factory := tween.NewFactory(eng, tween.DefaultSettings())
	for _, spec := range specs {
		cell := &tween.Cell{}
		h, err := factory.Spawn(spec, cell)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", spec.Name, err)
		}
		p.names = append(p.names, spec.Name)
		p.handles = append(p.handles, h)
		p.cells = append(p.cells, cell)
	}
	return p, nil
}

// summaries reports each timeline's final state. A timeline whose slot was
// reclaimed is reported as killed with its cell's last value.
func (p *playback) summaries() []TimelineSummary {
	out := make([]TimelineSummary, len(p.handles))
	for i, h := range p.handles {
		s := TimelineSummary{
			Name:   p.names[i],
			Status: ir.StatusKilled.String(),
			Values: append([]float64(nil), p.cells[i].Values...),
			Text:   p.cells[i].Text,
		}
		if rec, err := p.engine.Snapshot(h); err == nil {
			s.Status = rec.Status.String()
			s.Loops = rec.CompletedLoops
		}
		out[i] = s
	}
	return out
}

// drive feeds one tick per delta to the engine's command queue and runs
// the engine until every tick has been processed. A positive interval
// paces the ticks in wall-clock time.
//
// It returns the number of ticks enqueued, which is less than len(deltas)
// only when ctx was cancelled.
func drive(ctx context.Context, eng *engine.Engine, deltas []float64, interval time.Duration) (int, error) {
	sent := make(chan int, 1)
	go func() {
		defer eng.Stop()
		var ticker *time.Ticker
		if interval > 0 {
			ticker = time.NewTicker(interval)
			defer ticker.Stop()
		}
		n := 0
		defer func() { sent <- n }()
		for _, d := range deltas {
			if ticker != nil {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			} else if ctx.Err() != nil {
				return
			}
			if !eng.Enqueue(engine.Tick(d)) {
				return
			}
			n++
		}
	}()

	err := eng.Run(ctx)
	return <-sent, err
}

// uniformDeltas returns n copies of delta.
func uniformDeltas(n int, delta float64) []float64 {
	deltas := make([]float64, n)
	for i := range deltas {
		deltas[i] = delta
	}
	return deltas
}
