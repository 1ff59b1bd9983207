package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/tempo/internal/compiler"
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/store"
	"github.com/roach88/tempo/internal/testutil"
	"github.com/roach88/tempo/internal/tween"
)

// Harness is the test execution engine.
// It drives one scenario through a real engine recording into a fresh
// in-memory store.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	recorder *store.Recorder
	logger   *slog.Logger

	handles map[string]engine.Handle
	cells   map[string]*tween.Cell
	names   []string
	params  map[string]engine.Params
}

// capturingSpawner forwards spawns to the engine and keeps the resolved
// parameters of each timeline.
type capturingSpawner struct {
	h *Harness
}

func (c capturingSpawner) Spawn(name string, p engine.Params, b engine.Binding) (engine.Handle, error) {
	handle, err := c.h.engine.Spawn(name, p, b)
	if err != nil {
		return 0, err
	}
	c.h.params[name] = p
	return handle, nil
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, under a
// fixed run ID, so reruns produce byte-identical traces.
//
// Execution flow:
// 1. Load and validate the timeline specs
// 2. Create a fresh in-memory store and a recorder for the run
// 3. Spawn every timeline onto its own cell
// 4. For each frame, apply its actions, run it and snapshot every timeline
// 5. Read the trace back from the store and evaluate assertions
//
// A returned error means the scenario could not be executed; assertion
// failures are reported through Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	specs, err := scenarioSpecs(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	timeScale := 1.0
	if scenario.TimeScale != nil {
		timeScale = *scenario.TimeScale
	}
	workers := max(scenario.Workers, 1)

	runID := testutil.NewFixedRunIDGenerator(scenario.RunID).Generate()
	recorder, err := st.NewRecorder(ctx, ir.Run{
		ID:        runID,
		Label:     scenario.Name,
		Workers:   workers,
		TimeScale: timeScale,
		Specs:     specs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	h := &Harness{
		store:    st,
		recorder: recorder,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		handles:  make(map[string]engine.Handle, len(specs)),
		cells:    make(map[string]*tween.Cell, len(specs)),
		params:   make(map[string]engine.Params, len(specs)),
	}
	h.engine = engine.New(
		engine.WithWorkers(workers),
		engine.WithTimeScale(timeScale),
		engine.WithLogger(h.logger),
		engine.WithTracer(recorder),
	)

	factory := tween.NewFactory(capturingSpawner{h: h}, tween.DefaultSettings())
	for _, spec := range specs {
		cell := &tween.Cell{}
		handle, err := factory.Spawn(spec, cell)
		if err != nil {
			return nil, fmt.Errorf("failed to spawn timeline: %w", err)
		}
		h.handles[spec.Name] = handle
		h.cells[spec.Name] = cell
		h.names = append(h.names, spec.Name)
	}

	result := NewResult()
	result.params = h.params
	result.States = append(result.States, h.snapshot(nil, nil))

	for i, delta := range scenario.Frames {
		frame := i + 1
		for _, action := range scenario.Actions {
			if action.Frame != frame {
				continue
			}
			if err := h.apply(action); err != nil {
				result.AddError(fmt.Sprintf("frame %d: %s %s: %v", frame, action.Type, action.Timeline, err))
			}
		}

		report, err := h.engine.RunFrame(ctx, delta)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", frame, err)
		}
		for _, cbErr := range report.Errors {
			result.AddError(fmt.Sprintf("frame %d: %v", frame, cbErr))
		}
		result.States = append(result.States, h.snapshot(result.States[len(result.States)-1], report.Events))

		h.logger.Info("frame completed",
			"frame", report.Seq,
			"delta", delta,
			"events", len(report.Events),
		)
	}

	hash, err := recorder.Finish(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to finish run: %w", err)
	}
	trace, err := st.ReadTrace(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = trace
	result.TraceHash = hash

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// scenarioSpecs loads the scenario's CUE directory or validates its inline
// timelines.
func scenarioSpecs(scenario *Scenario) ([]ir.TimelineSpec, error) {
	if scenario.Specs != "" {
		specs, errs := compiler.LoadTimelines(scenario.Specs)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to load specs: %w", errors.Join(errs...))
		}
		return specs, nil
	}

	specs := slices.Clone(scenario.Timelines)
	if verrs := compiler.Validate(specs); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, verr := range verrs {
			errs[i] = verr
		}
		return nil, fmt.Errorf("invalid timelines: %w", errors.Join(errs...))
	}
	return specs, nil
}

// apply performs one scenario action against the engine.
func (h *Harness) apply(action Action) error {
	if action.Type == ActionTimeScale {
		h.engine.SetTimeScale(action.Scale)
		return nil
	}

	handle, ok := h.handles[action.Timeline]
	if !ok {
		return fmt.Errorf("unknown timeline %q", action.Timeline)
	}
	switch action.Type {
	case ActionPlay:
		return h.engine.Play(handle)
	case ActionKill:
		return h.engine.Kill(handle)
	case ActionSeek:
		return h.engine.Seek(handle, action.Position)
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// snapshot captures every timeline's state. A reclaimed timeline reports as
// killed with the progress of its last event, from this frame or earlier.
func (h *Harness) snapshot(prev map[string]TimelineState, events []ir.FrameEvent) map[string]TimelineState {
	states := make(map[string]TimelineState, len(h.names))
	for _, name := range h.names {
		cell := h.cells[name]
		state := TimelineState{
			Values: slices.Clone(cell.Values),
			Text:   cell.Text,
		}

		rec, err := h.engine.Snapshot(h.handles[name])
		switch {
		case err == nil:
			state.Status = rec.Status.String()
			state.ProgressMicro = ir.ToMicro(rec.Progress)
			state.CompletedLoops = int64(rec.CompletedLoops)
		case engine.IsStaleHandle(err):
			last := prev[name]
			state.ProgressMicro = last.ProgressMicro
			state.CompletedLoops = last.CompletedLoops
			for _, ev := range events {
				if ev.Timeline == name {
					state.ProgressMicro = ev.ProgressMicro
					state.CompletedLoops = ev.CompletedLoops
				}
			}
			state.Status = ir.StatusKilled.String()
		default:
			state.Status = ir.StatusInvalid.String()
		}
		states[name] = state
	}
	return states
}
