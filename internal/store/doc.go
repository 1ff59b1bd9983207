// Package store provides SQLite-backed durable storage for engine traces.
//
// The store is an append-only log with:
//   - Runs: one row per recorded engine run, with the timeline specs it ran
//   - Frames: the delta fed to each frame of a run
//   - Frame events: every event a frame dispatched, in dispatch order
//
// # Determinism
//
// Ordering uses logical sequence numbers (created_seq, frame_seq, ord),
// NEVER timestamps. Every read goes through internal/querysql, which
// appends each table's fixed ORDER BY, so identical runs read back
// identically.
//
// Progress is stored as integer micro-units. Deltas and time scales are
// stored as REAL, which round-trips float64 exactly, so a replay feeds the
// engine bit-identical input.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
