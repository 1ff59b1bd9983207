package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	Frames    int
	Delta     float64
	Workers   int
	TimeScale float64
	Label     string
	Realtime  bool

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator engine.RunIDGenerator
}

// RunSummary is the result of a recorded run.
type RunSummary struct {
	RunID     string            `json:"run_id"`
	Frames    int64             `json:"frames"`
	Events    int               `json:"events"`
	TraceHash string            `json:"trace_hash"`
	Timelines []TimelineSummary `json:"timelines"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <timelines-dir>",
		Short: "Run compiled timelines and record the trace",
		Long: `Spawn every timeline in the directory, run a fixed number of frames and
record each frame's events to a SQLite trace store.

The run ends with the trace hash. Runs recorded from the same timelines,
deltas, worker count and time scale always produce the same hash.

Example:
  tempo run --db ./tempo.db ./timelines
  tempo run --db ./tempo.db --frames 120 --workers 4 ./timelines
  tempo run --db ./tempo.db --realtime --label preview ./timelines`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimelines(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Frames, "frames", 60, "number of frames to run")
	cmd.Flags().Float64Var(&opts.Delta, "delta", 1.0/60, "seconds per frame")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "evaluate-phase goroutines (0 = GOMAXPROCS)")
	cmd.Flags().Float64Var(&opts.TimeScale, "time-scale", 1, "global time scale")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label stored with the run")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "pace frames in wall-clock time")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTimelines(opts *RunOptions, dir string, cmd *cobra.Command) error {
	out := NewOutputFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	if opts.Frames < 1 {
		return NewExitError(ExitCommandError, "--frames must be at least 1")
	}
	if opts.Delta < 0 {
		return NewExitError(ExitCommandError, "--delta must not be negative")
	}

	specs, err := compileSpecs(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile timelines", err)
	}
	logger.Info("timelines compiled", "dir", dir, "timelines", len(specs))

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, stop := signalContext(cmd)
	defer stop()

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	idGen := opts.RunIDGenerator
	if idGen == nil {
		idGen = engine.UUIDv7Generator{}
	}
	recorder, err := st.NewRecorder(ctx, ir.Run{
		ID:        idGen.Generate(),
		Label:     opts.Label,
		Workers:   workers,
		TimeScale: opts.TimeScale,
		Specs:     specs,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}

	eng := engine.New(
		engine.WithWorkers(workers),
		engine.WithTimeScale(opts.TimeScale),
		engine.WithLogger(logger),
		engine.WithTracer(recorder),
	)

	pb, err := spawnAll(eng, specs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to spawn timelines", err)
	}

	var interval time.Duration
	if opts.Realtime {
		interval = time.Duration(opts.Delta * float64(time.Second))
	}
	if _, err := drive(ctx, eng, uniformDeltas(opts.Frames, opts.Delta), interval); err != nil && !isCancellation(err) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	// An interrupted run still gets its partial trace hashed.
	hash, err := recorder.Finish(context.WithoutCancel(ctx))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to finish run", err)
	}

	summary := RunSummary{
		RunID:     recorder.Run().ID,
		Frames:    eng.Frame(),
		Events:    len(recorder.Events()),
		TraceHash: hash,
		Timelines: pb.summaries(),
	}
	if out.JSON() {
		return out.Encode(CLIResponse{Status: "ok", Data: summary, RunID: summary.RunID})
	}
	printRunSummary(cmd, summary)
	return nil
}

func printRunSummary(cmd *cobra.Command, s RunSummary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s: %d frames, %d events\n", s.RunID, s.Frames, s.Events)
	for _, tl := range s.Timelines {
		fmt.Fprintf(w, "  %-20s %-16s loops=%d", tl.Name, tl.Status, tl.Loops)
		if len(tl.Values) > 0 {
			fmt.Fprintf(w, " values=%v", tl.Values)
		}
		if tl.Text != "" {
			fmt.Fprintf(w, " text=%q", tl.Text)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Trace hash: %s\n", s.TraceHash)
}

// signalContext derives a context from the command's that is cancelled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// compileSpecs loads, compiles and validates every timeline in a
// directory, stopping at the first error.
func compileSpecs(dir string) ([]ir.TimelineSpec, error) {
	loadResult, loadErrors := LoadSpecs(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}
	return loadResult.Specs, nil
}
