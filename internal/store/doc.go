// Package store provides SQLite-backed storage for analysis runs and the
// issues they report.
//
// The store is append-only:
//   - Runs: one record per analysis, identified by a UUIDv7 run id
//   - Issues: diagnostics reported during a run
//
// # Invariants
//
// Issue dedupe
//   - UNIQUE(run_id, fingerprint)
//   - Reporting the same issue twice in one run stores it once
//
// Logical ordering
//   - Runs and issues carry a seq INTEGER from a logical clock, never a
//     timestamp
//   - Every listing orders by seq ASC, id ASC so listings are identical
//     across reruns
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Fingerprints come from issue.Issue.Fingerprint.
package store
