package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/beeclock/internal/clock"
)

// BeginRun inserts a run record and returns its generated ID. The
// definition text is stored verbatim so a trace can be re-run against
// the exact configuration that produced it.
func (s *Store) BeginRun(ctx context.Context, definition string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, definition)
		VALUES (?, ?, ?)
	`,
		id,
		time.Now().UTC().Format(time.RFC3339),
		definition,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// WriteOutcome appends one tick outcome to a run. The outcome row and
// its pulse rows are written in a single transaction so a trace never
// contains a half-recorded tick.
//
// Seq is the tick count after the step; duplicate (run, seq) pairs are
// rejected by the primary key, surfacing a double-recorded tick as an
// error rather than silently corrupting the trace.
func (s *Store) WriteOutcome(ctx context.Context, runID string, seq uint64, outcome clock.TickOutcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write outcome: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	overflowed := 0
	if outcome.Overflowed {
		overflowed = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, seq, tick, epoch, overflowed)
		VALUES (?, ?, ?, ?, ?)
	`,
		runID,
		seq,
		strconv.FormatUint(outcome.Snapshot.Tick, 10),
		strconv.FormatUint(outcome.Snapshot.Epoch, 10),
		overflowed,
	)
	if err != nil {
		return fmt.Errorf("write outcome: insert: %w", err)
	}

	for position, pulse := range outcome.Pulses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pulses (run_id, seq, position, name)
			VALUES (?, ?, ?, ?)
		`,
			runID,
			seq,
			position,
			pulse.Name,
		)
		if err != nil {
			return fmt.Errorf("write outcome: insert pulse: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write outcome: commit: %w", err)
	}

	return nil
}

// Record drives the clock n ticks and appends every outcome to a new
// run, returning the run ID. This is the recording entry point the CLI
// uses; callers wanting finer control compose BeginRun and
// WriteOutcome directly.
func (s *Store) Record(ctx context.Context, c *clock.Clock, definition string, ticks uint64) (string, error) {
	runID, err := s.BeginRun(ctx, definition)
	if err != nil {
		return "", err
	}

	for i := uint64(0); i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return runID, fmt.Errorf("record: %w", err)
		}
		outcome := c.Tick()
		if err := s.WriteOutcome(ctx, runID, i+1, outcome); err != nil {
			return runID, err
		}
	}

	return runID, nil
}
