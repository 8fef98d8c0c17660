package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/motionchart/internal/compiler"
	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/metrics"
	"github.com/roach88/motionchart/internal/monitor"
	"github.com/roach88/motionchart/internal/publish"
	"github.com/roach88/motionchart/internal/runner"
	"github.com/roach88/motionchart/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Chart       string
	Database    string
	Rate        time.Duration
	MaxTicks    int64
	MQTTBroker  string
	MQTTTopic   string
	MetricsAddr string

	// IDGenerator overrides run ID generation (for testing).
	// If nil, runs get UUIDv7 IDs.
	IDGenerator runner.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <charts-dir>",
		Short: "Run a chart until it completes or aborts",
		Long: `Run one chart from a CUE package at a fixed tick rate.

Each tick can be recorded to SQLite, published over MQTT and counted in
Prometheus metrics. The run ends when the chart completes, a cancel_motion
node aborts it, the tick quota is reached or the process is interrupted.

Exit codes:
  0 - Chart completed
  1 - Chart aborted, hit the tick quota or was interrupted
  2 - Command error (chart not found, invalid chart, database error, etc.)

Examples:
  motionchart run ./charts --chart pick
  motionchart run ./charts --chart pick --db ./runs.db --rate 50ms
  motionchart run ./charts --chart pick --mqtt-broker tcp://localhost:1883
  motionchart run ./charts --chart pick --metrics-addr :2112`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMotion(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Chart, "chart", "", "name of the chart to run (required)")
	_ = cmd.MarkFlagRequired("chart")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for the trace")
	cmd.Flags().DurationVar(&opts.Rate, "rate", 100*time.Millisecond, "tick period (0 ticks as fast as possible)")
	cmd.Flags().Int64Var(&opts.MaxTicks, "max-ticks", runner.DefaultMaxTicks, "tick quota (0 disables it)")
	cmd.Flags().StringVar(&opts.MQTTBroker, "mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	cmd.Flags().StringVar(&opts.MQTTTopic, "mqtt-topic", publish.DefaultPrefix, "MQTT topic prefix")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :2112")

	return cmd
}

func runMotion(opts *RunOptions, chartsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := slog.Default()

	chart, err := loadChart(chartsDir, opts.Chart)
	if err != nil {
		return err
	}
	if issues := validateChart(chart); len(issues) > 0 {
		_ = formatter.Error(issues[0].Code, fmt.Sprintf("chart %s is invalid: %s", chart.Name, issues[0].Message), issues)
		return NewExitError(ExitCommandError, fmt.Sprintf("chart %s is invalid with %d error(s)", chart.Name, len(issues)))
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []runner.Sink

	if opts.Database != "" {
		logger.Info("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		sinks = append(sinks, st)
	}

	if opts.MQTTBroker != "" {
		client := publish.NewClient(opts.MQTTBroker, fmt.Sprintf("motionchart-%d", os.Getpid()))
		if err := client.Connect(); err != nil {
			return WrapExitError(ExitCommandError, "failed to connect to MQTT broker", err)
		}
		defer client.Disconnect()
		logger.Info("publishing to MQTT", "broker", client.Broker(), "prefix", opts.MQTTTopic)
		sinks = append(sinks, publish.NewSink(client, opts.MQTTTopic))
	}

	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		ms, err := metrics.NewSink(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create metrics", err)
		}
		sinks = append(sinks, ms)

		serveCtx, stopServe := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(serveCtx, opts.MetricsAddr, metrics.NewHandler(reg, ms), logger); err != nil {
				logger.Error("metrics server failed", "addr", opts.MetricsAddr, "error", err)
			}
		}()
		defer func() {
			stopServe()
			wg.Wait()
		}()
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithRate(opts.Rate),
		runner.WithMaxTicks(opts.MaxTicks),
		runner.WithSinks(sinks...),
	}
	if opts.IDGenerator != nil {
		runnerOpts = append(runnerOpts, runner.WithIDGenerator(opts.IDGenerator))
	}
	r := runner.New(runnerOpts...)

	// Print nodes share stdout with text output; keep JSON output clean.
	var printOut io.Writer = cmd.OutOrStdout()
	if formatter.JSON() {
		printOut = cmd.ErrOrStderr()
	}

	res, runErr := r.RunChart(ctx, chart, nil, monitor.WithOutput(printOut))
	if res == nil {
		return WrapExitError(ExitCommandError, "failed to start run", runErr)
	}
	return outputRunResult(formatter, res.Run)
}

// loadChart compiles the package at dir and returns the named chart.
// Errors in other charts of the package do not prevent running this one.
func loadChart(dir, name string) (ir.ChartSpec, error) {
	loadResult, loadErrors := compiler.LoadCharts(dir, compiler.LoadModeCollectAll)
	if loadResult == nil {
		code, message := describeLoadError(loadErrors)
		return ir.ChartSpec{}, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}
	chart, ok := loadResult.Chart(name)
	if ok {
		return chart, nil
	}
	if len(loadErrors) > 0 {
		code, message := describeLoadError(loadErrors)
		return ir.ChartSpec{}, NewExitError(ExitCommandError, fmt.Sprintf("chart %q not loaded: %s: %s", name, code, message))
	}
	return ir.ChartSpec{}, NewExitError(ExitCommandError, fmt.Sprintf("chart %q not found (have %v)", name, loadResult.ChartNames()))
}

// outputRunResult reports the run and maps its status to an exit code.
func outputRunResult(formatter *OutputFormatter, run ir.RunRecord) error {
	var failure error
	switch run.Status {
	case ir.StatusCompleted:
	case ir.StatusAborted:
		failure = NewExitError(ExitFailure, fmt.Sprintf("run %s aborted by %s: %s", run.ID, run.AbortedBy, run.Error))
	default:
		failure = NewExitError(ExitFailure, fmt.Sprintf("run %s %s: %s", run.ID, run.Status, run.Error))
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: run, RunID: run.ID}
		if failure != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: run.Status, Message: run.Error}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	switch run.Status {
	case ir.StatusCompleted:
		fmt.Fprintf(w, "✓ Run %s completed after %d tick(s)\n", run.ID, run.Ticks)
	case ir.StatusAborted:
		fmt.Fprintf(w, "✗ Run %s aborted by %s at tick %d: %s\n", run.ID, run.AbortedBy, run.Ticks, run.Error)
	default:
		fmt.Fprintf(w, "✗ Run %s stopped (%s) after %d tick(s): %s\n", run.ID, run.Status, run.Ticks, run.Error)
	}
	return failure
}
