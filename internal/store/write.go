package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/motionchart/internal/ir"
)

// WriteChart stores chart IR under its content hash.
// Uses ON CONFLICT(hash) DO NOTHING: the same chart is stored once no matter
// how many runs reference it.
func (s *Store) WriteChart(ctx context.Context, hash string, spec ir.ChartSpec) error {
	data, err := marshalChart(spec)
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO charts (hash, name, ir)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, spec.Name, data)
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// WriteRun inserts a run record.
//
// Note: The chart referenced by ChartHash must exist (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, chart_hash, chart, status, ticks, error, aborted_by, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.ChartHash,
		run.Chart,
		run.Status,
		run.Ticks,
		run.Error,
		run.AbortedBy,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the final status of a run.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) FinishRun(ctx context.Context, run ir.RunRecord) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, ticks = ?, error = ?, aborted_by = ?
		WHERE id = ?
	`, run.Status, run.Ticks, run.Error, run.AbortedBy, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, sql.ErrNoRows)
	}
	return nil
}

// WriteTick inserts a tick record and its node snapshot in one transaction.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteTick(ctx context.Context, rec ir.TickRecord) error {
	started, err := marshalNames(rec.Started)
	if err != nil {
		return fmt.Errorf("write tick: %w", err)
	}
	observed, err := marshalNames(rec.Observed)
	if err != nil {
		return fmt.Errorf("write tick: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ticks
			(run_id, tick, status, error, aborted_by, started, observed)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.RunID, rec.Tick, rec.Status, rec.Error, rec.AbortedBy, started, observed)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO node_states
			(run_id, tick, position, name, kind, life_cycle, observation)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, n := range rec.Nodes {
			if _, err := stmt.ExecContext(ctx, rec.RunID, rec.Tick, i, n.Name, n.Kind, n.LifeCycle, n.Observation); err != nil {
				return fmt.Errorf("node %s: %w", n.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write tick %d of run %s: %w", rec.Tick, rec.RunID, err)
	}
	return nil
}
