package store

import (
	"context"
	"fmt"
	"strconv"
)

// Run is one recorded run's metadata.
type Run struct {
	ID         string
	CreatedAt  string
	Definition string
	Outcomes   int
}

// TraceOutcome is one recorded tick, pulses in firing order.
type TraceOutcome struct {
	Seq        uint64
	Tick       uint64
	Epoch      uint64
	Overflowed bool
	Pulses     []string
}

// ListRuns returns every recorded run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.definition,
		       (SELECT COUNT(*) FROM outcomes o WHERE o.run_id = r.id)
		FROM runs r
		ORDER BY r.rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Definition, &run.Outcomes); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a run's full trace in seq order, pulses in their
// recorded positions.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]TraceOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, tick, epoch, overflowed
		FROM outcomes
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	defer rows.Close()

	var trace []TraceOutcome
	index := make(map[uint64]int)
	for rows.Next() {
		var (
			seq          uint64
			tickStr      string
			epochStr     string
			overflowFlag int
		)
		if err := rows.Scan(&seq, &tickStr, &epochStr, &overflowFlag); err != nil {
			return nil, fmt.Errorf("read run: scan outcome: %w", err)
		}
		tick, err := strconv.ParseUint(tickStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("read run: tick column: %w", err)
		}
		epoch, err := strconv.ParseUint(epochStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("read run: epoch column: %w", err)
		}
		index[seq] = len(trace)
		trace = append(trace, TraceOutcome{
			Seq:        seq,
			Tick:       tick,
			Epoch:      epoch,
			Overflowed: overflowFlag != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	pulseRows, err := s.db.QueryContext(ctx, `
		SELECT seq, name
		FROM pulses
		WHERE run_id = ?
		ORDER BY seq ASC, position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read run: pulses: %w", err)
	}
	defer pulseRows.Close()

	for pulseRows.Next() {
		var (
			seq  uint64
			name string
		)
		if err := pulseRows.Scan(&seq, &name); err != nil {
			return nil, fmt.Errorf("read run: scan pulse: %w", err)
		}
		i, ok := index[seq]
		if !ok {
			return nil, fmt.Errorf("read run: pulse row for unrecorded seq %d", seq)
		}
		trace[i].Pulses = append(trace[i].Pulses, name)
	}
	if err := pulseRows.Err(); err != nil {
		return nil, fmt.Errorf("read run: pulses: %w", err)
	}

	return trace, nil
}
