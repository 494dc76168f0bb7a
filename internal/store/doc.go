// Package store writes inspection results to a SQLite export database so they
// can be queried with ordinary SQL.
//
// An export is one run of `zdb log export` or `zdb state export`. Its rows are
// written in a single transaction: an export either appears complete with its
// entry count or not at all.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Only the export database is written. The inspected journal and state
// directories are opened read-only elsewhere.
package store
