package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/motionchart/internal/ir"
)

const runColumns = `id, chart_hash, chart, status, ticks, error, aborted_by, engine_version, ir_version`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns all runs in insertion order.
// If chart is non-empty only runs of that chart are returned.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, chart string) ([]ir.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if chart != "" {
		query += ` WHERE chart = ?`
		args = append(args, chart)
	}
	query += ` ORDER BY rowid ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadChart retrieves chart IR by content hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadChart(ctx context.Context, hash string) (ir.ChartSpec, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT ir FROM charts WHERE hash = ?`, hash).Scan(&data)
	if err != nil {
		return ir.ChartSpec{}, err
	}
	return unmarshalChart(data)
}

// ReadTrace returns the ticks of a run ordered by tick number, each with its
// node snapshot in declaration order.
//
// A nil filter returns every node of every tick. With a filter only matching
// node states are returned and ticks without any match are dropped.
//
// Returns an empty slice (not nil) if the run has no ticks.
func (s *Store) ReadTrace(ctx context.Context, runID string, filter Predicate) ([]ir.TickRecord, error) {
	ticks, err := s.readTicks(ctx, runID)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]int, len(ticks))
	for i, t := range ticks {
		index[t.Tick] = i
	}

	where, params, err := compilePredicate(filter)
	if err != nil {
		return nil, fmt.Errorf("compile trace filter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ns.tick, ns.name, ns.kind, ns.life_cycle, ns.observation
		FROM node_states ns
		WHERE ns.run_id = ? AND `+where+`
		ORDER BY ns.tick ASC, ns.position ASC
	`, append([]any{runID}, params...)...)
	if err != nil {
		return nil, fmt.Errorf("query node states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tick int64
		var n ir.NodeState
		if err := rows.Scan(&tick, &n.Name, &n.Kind, &n.LifeCycle, &n.Observation); err != nil {
			return nil, fmt.Errorf("scan node state: %w", err)
		}
		i, ok := index[tick]
		if !ok {
			return nil, fmt.Errorf("node state for unknown tick %d of run %s", tick, runID)
		}
		ticks[i].Nodes = append(ticks[i].Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate node states: %w", err)
	}

	if filter == nil {
		return ticks, nil
	}
	kept := ticks[:0]
	for _, t := range ticks {
		if len(t.Nodes) > 0 {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

func (s *Store) readTicks(ctx context.Context, runID string) ([]ir.TickRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, tick, status, error, aborted_by, started, observed
		FROM ticks
		WHERE run_id = ?
		ORDER BY tick ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	ticks := []ir.TickRecord{}
	for rows.Next() {
		var t ir.TickRecord
		var started, observed string
		if err := rows.Scan(&t.RunID, &t.Tick, &t.Status, &t.Error, &t.AbortedBy, &started, &observed); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		if t.Started, err = unmarshalNames(started); err != nil {
			return nil, fmt.Errorf("tick %d started: %w", t.Tick, err)
		}
		if t.Observed, err = unmarshalNames(observed); err != nil {
			return nil, fmt.Errorf("tick %d observed: %w", t.Tick, err)
		}
		t.Nodes = []ir.NodeState{}
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}
	return ticks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans a row into a RunRecord. sql.ErrNoRows is returned unwrapped.
func scanRun(row rowScanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	err := row.Scan(
		&run.ID, &run.ChartHash, &run.Chart, &run.Status, &run.Ticks,
		&run.Error, &run.AbortedBy, &run.EngineVersion, &run.IRVersion,
	)
	if err == sql.ErrNoRows {
		return ir.RunRecord{}, err
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
