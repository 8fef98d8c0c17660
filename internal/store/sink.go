package store

import (
	"context"

	"github.com/roach88/motionchart/internal/ir"
)

// BeginRun stores the chart and the run record.
func (s *Store) BeginRun(ctx context.Context, run ir.RunRecord, chart ir.ChartSpec) error {
	if err := s.WriteChart(ctx, run.ChartHash, chart); err != nil {
		return err
	}
	return s.WriteRun(ctx, run)
}

// RecordTick stores one tick.
func (s *Store) RecordTick(ctx context.Context, rec ir.TickRecord) error {
	return s.WriteTick(ctx, rec)
}

// EndRun stores the final run status.
func (s *Store) EndRun(ctx context.Context, run ir.RunRecord) error {
	return s.FinishRun(ctx, run)
}
