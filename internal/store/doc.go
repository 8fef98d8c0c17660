// Package store provides SQLite-backed durable storage for motion traces.
//
// The store is an append-only log with:
//   - Charts: chart IR keyed by content hash
//   - Runs: one record per execution of a chart
//   - Ticks: one record per engine tick
//   - Node states: the full node snapshot taken after each tick
//
// # Ordering
//
// All ordering uses logical tick numbers and node declaration positions,
// never timestamps. Every query carries an ORDER BY with a binary-collated
// tiebreaker so results are identical across replays.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Store implements the runner's Sink interface through BeginRun,
// RecordTick and EndRun.
package store
