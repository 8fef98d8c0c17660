package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Node     string // optional - filter to one node
}

// TraceResult holds the trace output.
type TraceResult struct {
	Run   ir.RunRecord    `json:"run"`
	Ticks []ir.TickRecord `json:"ticks"`
	Stats TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Ticks   int `json:"ticks"`
	Starts  int `json:"starts"`
	Changes int `json:"changes"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded trace of a run",
		Long: `Show the tick-by-tick trace of a recorded run.

Each tick lists the nodes started and the nodes whose observation changed,
followed by the state of every node after the tick.

Examples:
  motionchart trace --db ./runs.db --run 0190a1b2-...
  motionchart trace --db ./runs.db --run 0190a1b2-... --node gripper
  motionchart trace --db ./runs.db --run 0190a1b2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Node, "node", "", "only show the state of this node")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var filter store.Predicate
	if opts.Node != "" {
		filter = store.NodeFilter(opts.Node)
	}
	ticks, err := st.ReadTrace(ctx, opts.RunID, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	result := TraceResult{Run: run, Ticks: ticks, Stats: traceStats(ticks)}

	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	outputTraceText(formatter.Writer, result, opts.Verbose)
	return nil
}

// openExistingStore opens a database that must already exist.
// store.Open would otherwise create an empty one.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database %s not found", path), err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func traceStats(ticks []ir.TickRecord) TraceStats {
	stats := TraceStats{Ticks: len(ticks)}
	for _, t := range ticks {
		stats.Starts += len(t.Started)
		stats.Changes += len(t.Observed)
	}
	return stats
}

// outputTraceText prints the trace as a timeline.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	run := result.Run
	fmt.Fprintf(w, "Trace for Run: %s\n", run.ID)
	fmt.Fprintf(w, "Chart: %s (%s)\n", run.Chart, truncateID(run.ChartHash))
	fmt.Fprintf(w, "Status: %s\n", describeRunStatus(run))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Ticks) == 0 {
		fmt.Fprintln(w, "  (no ticks)")
	}
	for _, t := range result.Ticks {
		fmt.Fprintf(w, "  [%d] %s", t.Tick, t.Status)
		if len(t.Started) > 0 {
			fmt.Fprintf(w, " started=%s", strings.Join(t.Started, ","))
		}
		if len(t.Observed) > 0 {
			fmt.Fprintf(w, " observed=%s", strings.Join(t.Observed, ","))
		}
		fmt.Fprintln(w)
		for _, n := range t.Nodes {
			if !verbose && n.LifeCycle != "RUNNING" && len(t.Nodes) > 1 {
				continue
			}
			fmt.Fprintf(w, "       %-20s %-14s %-11s %s\n", n.Name, n.Kind, n.LifeCycle, n.Observation)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Ticks:   %d\n", result.Stats.Ticks)
	fmt.Fprintf(w, "  Starts:  %d\n", result.Stats.Starts)
	fmt.Fprintf(w, "  Changes: %d\n", result.Stats.Changes)
}

// describeRunStatus formats the status of a run with its error, if any.
func describeRunStatus(run ir.RunRecord) string {
	switch {
	case run.AbortedBy != "":
		return fmt.Sprintf("%s by %s after %d tick(s): %s", run.Status, run.AbortedBy, run.Ticks, run.Error)
	case run.Error != "":
		return fmt.Sprintf("%s after %d tick(s): %s", run.Status, run.Ticks, run.Error)
	default:
		return fmt.Sprintf("%s after %d tick(s)", run.Status, run.Ticks)
	}
}
