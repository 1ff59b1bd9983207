package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/roach88/tempo/internal/ir"
)

// Binding connects a timeline to the property it animates.
//
// The engine calls a Binding only from the sequential apply pass: Capture
// when the record raises the Getter accessor flag, Apply when it raises
// Setter. Bindings may have arbitrary side effects, including spawning or
// killing other timelines.
type Binding interface {
	// Capture reads the live property value and stores it as the start value.
	Capture()
	// Apply writes the value for progress. Relative bindings interpret the
	// end value as an offset from the start; inverted swaps start and end.
	Apply(progress float64, inverted, relative bool)
}

// Tracer receives every frame's events after its apply pass.
// Implemented by the SQLite trace store and by the scenario harness.
type Tracer interface {
	RecordFrame(ctx context.Context, frame ir.Frame, events []ir.FrameEvent) error
}

// Engine owns a population of timelines and advances them one frame at a
// time.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Everything else (Spawn, Kill, On, RunFrame, ...) belongs to the
//     goroutine that drives frames. Listeners and bindings run on that
//     goroutine too and may call these methods.
//
// Inside RunFrame the evaluate phase fans out across workers; each worker
// owns a disjoint set of records and shares only the kill collector.
type Engine struct {
	table     slotTable
	kills     *KillCollector
	clock     *Clock
	queue     *commandQueue
	logger    *slog.Logger
	tracer    Tracer
	workers   int
	timeScale float64

	maxCascade int

	evaluating atomic.Bool
	inFrame    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many goroutines the evaluate phase may use.
// Values below 1 select runtime.GOMAXPROCS(0); 1 evaluates inline.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		e.workers = n
	}
}

// WithMaxCascade bounds how many kill-collector drain rounds one frame may
// run. Default: DefaultMaxCascade.
func WithMaxCascade(rounds int) Option {
	return func(e *Engine) {
		if rounds > 0 {
			e.maxCascade = rounds
		}
	}
}

// WithTimeScale sets the initial global time scale. Default: 1.
func WithTimeScale(scale float64) Option {
	return func(e *Engine) {
		e.timeScale = scale
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTracer records every frame's events.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates an Engine with no timelines.
func New(opts ...Option) *Engine {
	e := &Engine{
		kills:      NewKillCollector(),
		clock:      NewClock(),
		queue:      newCommandQueue(),
		logger:     slog.Default(),
		workers:    1,
		timeScale:  1,
		maxCascade: DefaultMaxCascade,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spawn creates a timeline in WaitingForStart and returns its handle.
// name labels the timeline in traces; binding may be nil for timelines
// that only drive callbacks.
func (e *Engine) Spawn(name string, p Params, binding Binding) (Handle, error) {
	if e.evaluating.Load() {
		return 0, newFrameInProgressError("Spawn")
	}
	idx, h := e.table.alloc()
	s := &e.table.slots[idx]
	s.rec = NewRecord(h, p)
	s.name = name
	s.binding = binding

	e.logger.Debug("timeline spawned", "timeline", s.label(), "handle", h.String())
	return h, nil
}

// Kill moves a timeline to Killed. Its OnKill listeners run and its slot
// is reclaimed at the end of the current apply pass, or of the next frame
// when called between frames. Killing an already killed timeline is a
// no-op.
//
// Kill must not be called while the evaluate phase is running.
func (e *Engine) Kill(h Handle) error {
	if e.evaluating.Load() {
		return newFrameInProgressError("Kill")
	}
	idx, err := e.table.lookup(h)
	if err != nil {
		return err
	}
	s := &e.table.slots[idx]
	if !s.pending {
		// Previous events were already dispatched; OnKill starts a fresh set.
		s.rec.Callbacks = 0
	}
	if kill(&s.rec, e.kills) {
		s.pending = true
		e.logger.Debug("timeline killed", "timeline", s.label(), "handle", h.String())
	}
	return nil
}

// Play requests that a waiting timeline start on its next evaluation, even
// when it is not auto-playing or its playhead has not moved yet.
func (e *Engine) Play(h Handle) error {
	return e.mutate("Play", h, func(r *Record) {
		if r.Status == ir.StatusWaitingForStart {
			r.PlayRequested = true
		}
	})
}

// Seek sets a timeline's raw playhead. The next frame evaluates from there.
func (e *Engine) Seek(h Handle, position float64) error {
	return e.mutate("Seek", h, func(r *Record) {
		r.Playhead = position
	})
}

// SetAutoKill changes whether a timeline is destroyed once it completes.
func (e *Engine) SetAutoKill(h Handle, autoKill bool) error {
	return e.mutate("SetAutoKill", h, func(r *Record) {
		r.AutoKill = autoKill
	})
}

func (e *Engine) mutate(op string, h Handle, fn func(*Record)) error {
	if e.evaluating.Load() {
		return newFrameInProgressError(op)
	}
	idx, err := e.table.lookup(h)
	if err != nil {
		return err
	}
	fn(&e.table.slots[idx].rec)
	return nil
}

// On registers a listener for one event kind. Listeners for the same event
// run in registration order. A listener registered after a frame's evaluate
// phase but before its apply pass still sees that frame's events.
func (e *Engine) On(h Handle, event ir.CallbackFlags, fn func()) error {
	if !dispatchable(event) {
		return fmt.Errorf("unsupported event %q: listeners take exactly one of play, start, rewind, update, step_complete, complete, kill", ir.EventName(event))
	}
	idx, err := e.table.lookup(h)
	if err != nil {
		return err
	}
	s := &e.table.slots[idx]
	if s.listeners == nil {
		s.listeners = make(map[ir.CallbackFlags][]func())
	}
	s.listeners[event] = append(s.listeners[event], fn)
	return nil
}

func dispatchable(event ir.CallbackFlags) bool {
	for _, f := range ir.CallbackOrder {
		if f == event {
			return true
		}
	}
	return false
}

// Status returns a timeline's lifecycle state.
func (e *Engine) Status(h Handle) (ir.Status, error) {
	idx, err := e.table.lookup(h)
	if err != nil {
		return ir.StatusInvalid, err
	}
	return e.table.slots[idx].rec.Status, nil
}

// Snapshot returns a copy of a timeline's record.
func (e *Engine) Snapshot(h Handle) (Record, error) {
	idx, err := e.table.lookup(h)
	if err != nil {
		return Record{}, err
	}
	return e.table.slots[idx].rec, nil
}

// Name returns the label a timeline was spawned with.
func (e *Engine) Name(h Handle) (string, error) {
	idx, err := e.table.lookup(h)
	if err != nil {
		return "", err
	}
	return e.table.slots[idx].name, nil
}

// SetTimeScale changes the global time scale applied from the next frame.
func (e *Engine) SetTimeScale(scale float64) {
	e.timeScale = scale
}

// TimeScale returns the global time scale.
func (e *Engine) TimeScale() float64 {
	return e.timeScale
}

// Workers returns the evaluate-phase parallelism.
func (e *Engine) Workers() int {
	return e.workers
}

// Len returns the number of timelines that hold a slot, including killed
// timelines awaiting reclamation.
func (e *Engine) Len() int {
	return e.table.live
}

// Frame returns the sequence number of the last frame run.
func (e *Engine) Frame() int64 {
	return e.clock.Current()
}

// Enqueue submits a command for the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(cmd Command) bool {
	return e.queue.Enqueue(cmd)
}

// QueueLen returns the number of commands waiting for the Run loop.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Run drives the engine from its command queue until the context is
// cancelled or Stop is called.
//
// CRITICAL: Must be called from exactly ONE goroutine. Every frame, kill
// and time-scale change happens on it.
//
// Errors from individual commands are logged and the loop continues,
// except a tracer failure: the frame already ran but is missing from the
// trace, so Run closes the queue and returns that error.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "workers", e.workers)

	for {
		cmd, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processCommand(ctx, cmd); err != nil {
				if IsTraceFailed(err) {
					e.logger.Error("engine stopping: trace failed", "error", err)
					e.queue.Close()
					return err
				}
				e.logger.Error("command failed",
					"type", cmd.Type.String(),
					"handle", cmd.Handle.String(),
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so a closed and
			// empty queue lands here immediately.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the command queue; Run returns once it has drained.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) processCommand(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandTick:
		report, err := e.RunFrame(ctx, cmd.Delta)
		if err != nil {
			return err
		}
		for _, cbErr := range report.Errors {
			e.logger.Warn("apply pass error", "frame", report.Seq, "error", cbErr)
		}
		return nil
	case CommandKill:
		return e.Kill(cmd.Handle)
	case CommandPlay:
		return e.Play(cmd.Handle)
	case CommandTimeScale:
		e.SetTimeScale(cmd.Scale)
		return nil
	default:
		return fmt.Errorf("unknown command type: %d", cmd.Type)
	}
}
