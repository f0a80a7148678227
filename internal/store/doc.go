// Package store provides SQLite-backed trace recording for clock runs.
//
// A trace is an append-only log of tick outcomes:
//   - Runs: one row per recorded run, holding the definition text
//   - Outcomes: one row per tick, keyed by (run, seq)
//   - Pulses: the fired pulses of each outcome, keyed by position
//
// Ordering uses the seq column, never timestamps: seq is the number of
// ticks the clock had consumed when the outcome was produced, so a
// replayed run yields a byte-identical trace regardless of wall time.
// The created_at column on runs exists for display only.
//
// Tick and epoch are stored as TEXT decimal rather than INTEGER:
// SQLite integers are signed 64-bit, and a deliberately overflowed
// clock carries tick values above int64's range.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
