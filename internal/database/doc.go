// Package database provides SQLite-based storage for carbonscan.
//
// This package implements the ReportDB, which stores one row per
// sustainability report, keyed by page, language, and creation time, with
// the classified resource groups serialized as a JSON blob column.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Report history is append-only: rows are inserted once and never updated
// or deleted by this package. Retention is an operator concern.
package database
