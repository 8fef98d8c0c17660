package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/runner"
	"github.com/roach88/motionchart/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs      []runner.ReplayReport `json:"runs"`
	TotalRuns int                   `json:"total_runs"`
	AllMatch  bool                  `json:"all_match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute recorded runs and verify determinism",
		Long: `Re-execute recorded runs from the stored chart IR and compare the
new trace with the recorded one tick by tick.

Exit codes:
  0 - Every replay matches its recording
  1 - At least one replay diverged
  2 - Command error (database not found, run not found, etc.)

Examples:
  motionchart replay --db ./runs.db
  motionchart replay --db ./runs.db --run 0190a1b2-...
  motionchart replay --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
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

	var runs []ir.RunRecord
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []ir.RunRecord{run}
	} else {
		runs, err = st.ListRuns(ctx, "")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:      make([]runner.ReplayReport, 0, len(runs)),
		TotalRuns: len(runs),
		AllMatch:  true,
	}

	r := runner.New(runner.WithLogger(slog.Default()))
	for _, run := range runs {
		if run.Status == ir.StatusRunning {
			formatter.VerboseLog("Skipping unfinished run %s", run.ID)
			result.TotalRuns--
			continue
		}
		report, err := replayRun(ctx, st, r, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		result.Runs = append(result.Runs, report)
		if !report.Match {
			result.AllMatch = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter.Writer, result, opts.Verbose)
}

// replayRun loads the chart and trace of a run and re-executes it.
func replayRun(ctx context.Context, st *store.Store, r *runner.Runner, run ir.RunRecord) (runner.ReplayReport, error) {
	chart, err := st.ReadChart(ctx, run.ChartHash)
	if err != nil {
		return runner.ReplayReport{}, fmt.Errorf("read chart %s: %w", run.ChartHash, err)
	}
	ticks, err := st.ReadTrace(ctx, run.ID, nil)
	if err != nil {
		return runner.ReplayReport{}, fmt.Errorf("read trace: %w", err)
	}
	return r.Replay(ctx, chart, run, ticks)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllMatch {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "replay diverged from recorded trace",
		}
	}
	if err := formatter.Encode(response); err != nil {
		return err
	}
	if !result.AllMatch {
		return NewExitError(ExitFailure, "replay diverged from recorded trace")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) error {
	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, rep := range result.Runs {
		status := "✓"
		if !rep.Match {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Run: %s (%s)\n", status, rep.RunID, rep.Chart)
		fmt.Fprintf(w, "  Recorded: %s, %d tick(s)\n", rep.RecordedStatus, rep.RecordedTicks)
		fmt.Fprintf(w, "  Replayed: %s, %d tick(s)\n", rep.ReplayedStatus, rep.ReplayedTicks)
		if verbose {
			fmt.Fprintf(w, "  Trace hash: %s / %s\n", truncateID(rep.RecordedHash), truncateID(rep.ReplayedHash))
		}
		if !rep.Match {
			fmt.Fprintf(w, "  Warning: traces diverge at tick %d\n", rep.FirstDivergence)
		}
		fmt.Fprintln(w)
	}

	if result.AllMatch {
		fmt.Fprintln(w, "✓ All runs replayed deterministically")
		return nil
	}
	fmt.Fprintln(w, "✗ Replay diverged from recorded trace")
	return NewExitError(ExitFailure, "replay diverged from recorded trace")
}
