package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
	All      bool   // replay every recorded run
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Frames        int    `json:"frames"`
	Events        int    `json:"events"`
	RecordedHash  string `json:"recorded_hash"`
	ReplayedHash  string `json:"replayed_hash"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run a recorded run and verify determinism",
		Long: `Re-run a recorded run from its stored timelines and frame deltas and
verify that it reproduces the recorded trace.

The replay uses the run's own worker count and time scale. It is
deterministic when every event matches and the trace hashes agree.

Exit codes:
  0 - All replayed runs are deterministic
  1 - A replay diverged from its recording
  2 - Command error (database not found, unknown run, etc.)

Examples:
  tempo replay --db ./tempo.db
  tempo replay --db ./tempo.db --run 0192f0c4-...
  tempo replay --db ./tempo.db --all --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to replay (default: latest run)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "replay every recorded run")
	cmd.MarkFlagsMutuallyExclusive("run", "all")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	formatter := NewOutputFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runIDs []string
	if opts.All {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return reportRunError(formatter, err)
		}
		for _, run := range runs {
			runIDs = append(runIDs, run.ID)
		}
	} else {
		run, err := resolveRun(ctx, st, opts.RunID)
		if err != nil {
			return reportRunError(formatter, err)
		}
		runIDs = []string{run.ID}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}
	for _, id := range runIDs {
		formatter.VerboseLog("Replaying run %s", id)
		runResult, err := replayRun(ctx, st, id, logger)
		if err != nil {
			_ = formatter.Error(ErrCodeEngineFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayRun re-runs one recorded run into an in-memory store and compares
// the two traces.
func replayRun(ctx context.Context, st *store.Store, runID string, logger *slog.Logger) (ReplayRunResult, error) {
	log, err := st.LoadReplay(ctx, runID)
	if err != nil {
		return ReplayRunResult{}, err
	}

	scratch, err := store.Open(":memory:")
	if err != nil {
		return ReplayRunResult{}, err
	}
	defer scratch.Close()

	recorder, err := scratch.NewRecorder(ctx, ir.Run{
		ID:        log.Run.ID,
		Label:     log.Run.Label,
		Workers:   log.Run.Workers,
		TimeScale: log.Run.TimeScale,
		Specs:     log.Run.Specs,
	})
	if err != nil {
		return ReplayRunResult{}, err
	}

	eng := engine.New(
		engine.WithWorkers(log.Run.Workers),
		engine.WithTimeScale(log.Run.TimeScale),
		engine.WithLogger(logger),
		engine.WithTracer(recorder),
	)
	if _, err := spawnAll(eng, log.Run.Specs); err != nil {
		return ReplayRunResult{}, err
	}

	sent, err := drive(ctx, eng, log.Deltas(), 0)
	if err != nil {
		return ReplayRunResult{}, err
	}
	if sent != len(log.Frames) {
		return ReplayRunResult{}, fmt.Errorf("replayed %d of %d frames", sent, len(log.Frames))
	}

	hash, err := recorder.Finish(ctx)
	if err != nil {
		return ReplayRunResult{}, err
	}

	result := ReplayRunResult{
		RunID:        runID,
		Frames:       len(log.Frames),
		Events:       len(log.Events),
		RecordedHash: log.Run.TraceHash,
		ReplayedHash: hash,
	}
	div, diverged := store.FirstDivergence(log.Events, recorder.Events())
	if diverged {
		result.Divergence = div.String()
	}
	// An unfinished recording has no hash; its events alone decide.
	result.Deterministic = !diverged && (log.Run.TraceHash == "" || log.Run.TraceHash == hash)
	return result, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s\n", status, run.RunID)
		fmt.Fprintf(w, "  Frames: %d, events: %d\n", run.Frames, run.Events)
		if formatter.Verbose {
			fmt.Fprintf(w, "  Recorded hash: %s\n", run.RecordedHash)
			fmt.Fprintf(w, "  Replayed hash: %s\n", run.ReplayedHash)
		}

		if run.Divergence != "" {
			fmt.Fprintf(w, "  First divergence: %s\n", run.Divergence)
		}
		if !run.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
