package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/tempo/internal/ir"
	"github.com/roach88/tempo/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
	Timeline string // optional - filter to one timeline
	Event    string // optional - filter to one event name
}

// RunInfo describes a recorded run.
type RunInfo struct {
	ID        string  `json:"id"`
	Label     string  `json:"label,omitempty"`
	Workers   int     `json:"workers"`
	TimeScale float64 `json:"time_scale"`
	Timelines int     `json:"timelines"`
	TraceHash string  `json:"trace_hash,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run    RunInfo         `json:"run"`
	Events []ir.FrameEvent `json:"events"`
	Stats  TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the selected events.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Frames      int            `json:"frames"`
	ByEvent     map[string]int `json:"by_event"`
	ByTimeline  map[string]int `json:"by_timeline"`
	IsFinished  bool           `json:"is_finished"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded events of a run",
		Long: `Show the events a recorded run raised, frame by frame.

The output includes:
- Run: the run's settings and trace hash
- Events: every event in dispatch order, optionally filtered
- Stats: event counts by name and by timeline

Examples:
  tempo trace --db ./tempo.db
  tempo trace --db ./tempo.db --run 0192f0c4-... --timeline fade
  tempo trace --db ./tempo.db --event complete --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show (default: latest run)")
	cmd.Flags().StringVar(&opts.Timeline, "timeline", "", "filter to one timeline")
	cmd.Flags().StringVar(&opts.Event, "event", "", "filter to one event (play, start, update, complete, ...)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	if opts.Event != "" {
		if _, ok := ir.ParseEvent(opts.Event); !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown event %q", opts.Event))
		}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := resolveRun(ctx, st, opts.RunID)
	if err != nil {
		return reportRunError(formatter, err)
	}

	events, err := st.ReadEvents(ctx, store.EventQuery(run.ID, opts.Timeline, opts.Event))
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	frames, err := st.ReadFrames(ctx, run.ID)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read frames", err)
	}

	result := TraceResult{
		Run:    describeRun(run),
		Events: events,
		Stats:  calculateTraceStats(events, len(frames), run.TraceHash != ""),
	}

	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	printTrace(formatter, result)
	return nil
}

// resolveRun reads the run with the given ID, or the latest run when id
// is empty.
func resolveRun(ctx context.Context, st *store.Store, id string) (ir.Run, error) {
	if id == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, id)
}

// reportRunError maps a run lookup failure to an exit error.
func reportRunError(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeRunNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to read run", err)
}

func describeRun(run ir.Run) RunInfo {
	return RunInfo{
		ID:        run.ID,
		Label:     run.Label,
		Workers:   run.Workers,
		TimeScale: run.TimeScale,
		Timelines: len(run.Specs),
		TraceHash: run.TraceHash,
	}
}

// calculateTraceStats computes summary statistics from trace events.
func calculateTraceStats(events []ir.FrameEvent, frames int, finished bool) TraceStats {
	stats := TraceStats{
		TotalEvents: len(events),
		Frames:      frames,
		ByEvent:     make(map[string]int),
		ByTimeline:  make(map[string]int),
		IsFinished:  finished,
	}
	for _, ev := range events {
		stats.ByEvent[ev.Event]++
		stats.ByTimeline[ev.Timeline]++
	}
	return stats
}

// printTrace outputs the trace in human-readable format.
func printTrace(formatter *OutputFormatter, result TraceResult) {
	w := formatter.Writer
	run := result.Run

	fmt.Fprintf(w, "Run: %s", run.ID)
	if run.Label != "" {
		fmt.Fprintf(w, " (%s)", run.Label)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  workers=%d time_scale=%g timelines=%d frames=%d\n", run.Workers, run.TimeScale, run.Timelines, result.Stats.Frames)
	if run.TraceHash != "" {
		fmt.Fprintf(w, "  trace hash: %s\n", run.TraceHash)
	} else {
		fmt.Fprintln(w, "  trace hash: (unfinished)")
	}
	fmt.Fprintln(w)

	if len(result.Events) == 0 {
		fmt.Fprintln(w, "No matching events.")
		return
	}

	frame := int64(-1)
	for _, ev := range result.Events {
		if ev.Frame != frame {
			frame = ev.Frame
			fmt.Fprintf(w, "frame %d\n", frame)
		}
		fmt.Fprintf(w, "  %-24s %-16s progress=%.6f loops=%d\n",
			ev.Timeline+"."+ev.Event, ev.Status, ir.FromMicro(ev.ProgressMicro), ev.CompletedLoops)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Events: %d\n", result.Stats.TotalEvents)
	for _, name := range sortedKeys(result.Stats.ByEvent) {
		fmt.Fprintf(w, "  %-14s %d\n", name, result.Stats.ByEvent[name])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
