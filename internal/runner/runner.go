package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/monitor"
	"github.com/roach88/motionchart/internal/statechart"
)

// DefaultMaxTicks is the default tick limit per run.
const DefaultMaxTicks = 10000

// Sink receives the lifecycle of a run.
//
// BeginRun errors abort the run before the first tick. RecordTick and EndRun
// errors are logged and the run continues, so a flaky broker cannot stop a
// motion half way.
type Sink interface {
	BeginRun(ctx context.Context, run ir.RunRecord, chart ir.ChartSpec) error
	RecordTick(ctx context.Context, rec ir.TickRecord) error
	EndRun(ctx context.Context, run ir.RunRecord) error
}

// Runner drives engines at a fixed rate.
type Runner struct {
	logger    *slog.Logger
	rate      time.Duration
	maxTicks  int64
	sinks     []Sink
	ids       IDGenerator
	newTicker func(time.Duration) Ticker
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRate sets the tick period. A period <= 0 ticks as fast as possible.
func WithRate(d time.Duration) Option {
	return func(r *Runner) {
		r.rate = d
	}
}

// WithMaxTicks sets the tick limit. A limit <= 0 disables the quota.
func WithMaxTicks(n int64) Option {
	return func(r *Runner) {
		r.maxTicks = n
	}
}

// WithSinks appends sinks. Sinks are called in the order given.
func WithSinks(sinks ...Sink) Option {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

// WithIDGenerator sets the run ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Runner) {
		if g != nil {
			r.ids = g
		}
	}
}

// WithTicker replaces the ticker constructor. Used by tests to drive the
// loop by hand.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newTicker = fn
		}
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger:    slog.Default(),
		maxTicks:  DefaultMaxTicks,
		ids:       UUIDv7Generator{},
		newTicker: newTimeTicker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one run.
type Result struct {
	Run   ir.RunRecord
	Ticks []ir.TickRecord
}

// RunChart builds the chart against world and runs it.
func (r *Runner) RunChart(ctx context.Context, chart ir.ChartSpec, world any, opts ...monitor.BuildOption) (*Result, error) {
	opts = append([]monitor.BuildOption{
		monitor.WithEngineOptions(statechart.WithLogger(r.logger)),
	}, opts...)
	eng, err := monitor.Build(chart, world, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, chart, eng)
}

// Run drives a compiled engine until it completes, aborts, exceeds the tick
// quota or ctx is cancelled. The returned Result is non-nil whenever the run
// was started, including on error.
func (r *Runner) Run(ctx context.Context, chart ir.ChartSpec, eng *statechart.Engine) (*Result, error) {
	hash, err := ir.ChartHash(chart)
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", chart.Name, err)
	}

	res := &Result{Run: ir.RunRecord{
		ID:            r.ids.Generate(),
		Chart:         chart.Name,
		ChartHash:     hash,
		Status:        ir.StatusRunning,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}}
	logger := r.logger.With("run_id", res.Run.ID, "chart", chart.Name)

	for _, s := range r.sinks {
		if err := s.BeginRun(ctx, res.Run, chart); err != nil {
			return nil, fmt.Errorf("begin run %s: %w", res.Run.ID, err)
		}
	}
	logger.Info("run started", "rate", r.rate, "max_ticks", r.maxTicks)

	runErr := r.loop(ctx, logger, eng, res)
	r.finish(ctx, logger, res, runErr)
	return res, runErr
}

func (r *Runner) loop(ctx context.Context, logger *slog.Logger, eng *statechart.Engine, res *Result) error {
	var ticker Ticker
	if r.rate > 0 {
		ticker = r.newTicker(r.rate)
		defer ticker.Stop()
	}
	q := newQuota(res.Run.ID, r.maxTicks)

	for {
		if err := q.Take(); err != nil {
			return err
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return fmt.Errorf("run %s: %w", res.Run.ID, ctx.Err())
			case <-ticker.C():
			}
		} else if err := ctx.Err(); err != nil {
			return fmt.Errorf("run %s: %w", res.Run.ID, err)
		}

		out, err := eng.Tick()
		if err != nil {
			return fmt.Errorf("run %s: tick: %w", res.Run.ID, err)
		}
		res.Run.Ticks = out.Tick

		rec := NewTickRecord(res.Run.ID, eng, out)
		res.Ticks = append(res.Ticks, rec)
		for _, s := range r.sinks {
			if err := s.RecordTick(ctx, rec); err != nil {
				logger.Warn("sink failed to record tick", "tick", out.Tick, "sink", fmt.Sprintf("%T", s), "error", err)
			}
		}

		switch out.Status {
		case statechart.StatusCompleted:
			return nil
		case statechart.StatusAborted:
			return &AbortError{
				RunID: res.Run.ID,
				Node:  rec.AbortedBy,
				Tick:  out.Tick,
				Err:   out.Err,
			}
		}
	}
}

// finish sets the final run status and closes the run on every sink.
// Sinks get a context that survives cancellation of the run context.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, res *Result, runErr error) {
	run := &res.Run
	run.Status = runStatus(runErr)
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if ae, ok := runErr.(*AbortError); ok {
		run.AbortedBy = ae.Node
		if ae.Err != nil {
			run.Error = ae.Err.Error()
		}
	}

	endCtx := context.WithoutCancel(ctx)
	for _, s := range r.sinks {
		if err := s.EndRun(endCtx, *run); err != nil {
			logger.Warn("sink failed to end run", "sink", fmt.Sprintf("%T", s), "error", err)
		}
	}

	switch run.Status {
	case ir.StatusCompleted:
		logger.Info("run completed", "ticks", run.Ticks)
	case ir.StatusAborted:
		logger.Info("run aborted", "ticks", run.Ticks, "aborted_by", run.AbortedBy, "error", run.Error)
	default:
		logger.Warn("run stopped", "status", run.Status, "ticks", run.Ticks, "error", run.Error)
	}
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return ir.StatusCompleted
	case IsAbortError(err):
		return ir.StatusAborted
	case IsTickQuotaError(err):
		return ir.StatusQuota
	case isContextError(err):
		return ir.StatusCancelled
	default:
		return ir.StatusAborted
	}
}
