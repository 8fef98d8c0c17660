package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/roach88/motionchart/internal/ir"
	"github.com/roach88/motionchart/internal/monitor"
)

// ReplayReport compares a recorded trace with a fresh execution of the same
// chart.
type ReplayReport struct {
	RunID          string `json:"run_id"`
	Chart          string `json:"chart"`
	RecordedStatus string `json:"recorded_status"`
	ReplayedStatus string `json:"replayed_status"`
	RecordedTicks  int    `json:"recorded_ticks"`
	ReplayedTicks  int    `json:"replayed_ticks"`
	RecordedHash   string `json:"recorded_hash"`
	ReplayedHash   string `json:"replayed_hash"`
	Match          bool   `json:"match"`
	// FirstDivergence is the first tick that differs, 0 when the traces match.
	FirstDivergence int64 `json:"first_divergence,omitempty"`
}

// staticID always generates the same run ID.
type staticID string

func (s staticID) Generate() string { return string(s) }

// Replay re-executes chart and compares the new trace with the recorded
// one tick by tick. The traces match when every tick is identical and the
// replay ends with the recorded status.
//
// The replay runs unthrottled, without sinks, under the recorded run ID and
// is capped at the recorded tick count. Print output is discarded unless
// opts supply a writer. Aborts and quota stops of the replay are part of the
// comparison, not errors; only build failures, a chart hash mismatch and
// context cancellation return an error.
func (r *Runner) Replay(ctx context.Context, chart ir.ChartSpec, recorded ir.RunRecord, ticks []ir.TickRecord, opts ...monitor.BuildOption) (ReplayReport, error) {
	report := ReplayReport{
		RunID:          recorded.ID,
		Chart:          recorded.Chart,
		RecordedStatus: recorded.Status,
		RecordedTicks:  len(ticks),
	}

	hash, err := ir.ChartHash(chart)
	if err != nil {
		return report, fmt.Errorf("replay %s: %w", recorded.ID, err)
	}
	if hash != recorded.ChartHash {
		return report, fmt.Errorf("replay %s: chart hash mismatch: stored %s, recorded %s", recorded.ID, hash, recorded.ChartHash)
	}

	if report.RecordedHash, err = ir.TraceHash(ticks); err != nil {
		return report, fmt.Errorf("replay %s: hash recorded trace: %w", recorded.ID, err)
	}

	limit := int64(len(ticks))
	if limit == 0 {
		limit = 1
	}
	replayer := New(
		WithLogger(r.logger),
		WithMaxTicks(limit),
		WithIDGenerator(staticID(recorded.ID)),
	)

	opts = append([]monitor.BuildOption{monitor.WithOutput(io.Discard)}, opts...)
	res, err := replayer.RunChart(ctx, chart, nil, opts...)
	if res == nil {
		return report, fmt.Errorf("replay %s: %w", recorded.ID, err)
	}
	if err != nil && isContextError(err) {
		return report, fmt.Errorf("replay %s: %w", recorded.ID, err)
	}

	report.ReplayedStatus = res.Run.Status
	report.ReplayedTicks = len(res.Ticks)
	if report.ReplayedHash, err = ir.TraceHash(res.Ticks); err != nil {
		return report, fmt.Errorf("replay %s: hash replayed trace: %w", recorded.ID, err)
	}

	switch {
	case report.RecordedHash != report.ReplayedHash:
		report.FirstDivergence = firstDivergence(ticks, res.Ticks)
	case !statusesAgree(report.RecordedStatus, report.ReplayedStatus):
		report.FirstDivergence = int64(len(ticks) + 1)
	default:
		report.Match = true
	}
	return report, nil
}

// statusesAgree reports whether a replay ended the way the recorded run did.
// A cancelled run is cut short by the tick cap on replay.
func statusesAgree(recorded, replayed string) bool {
	if recorded == ir.StatusCancelled {
		return replayed == ir.StatusQuota
	}
	return recorded == replayed
}

// firstDivergence returns the first tick number at which the traces differ.
func firstDivergence(a, b []ir.TickRecord) int64 {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ha, errA := ir.TraceHash(a[i : i+1])
		hb, errB := ir.TraceHash(b[i : i+1])
		if errA != nil || errB != nil || ha != hb {
			return int64(i + 1)
		}
	}
	return int64(n + 1)
}
