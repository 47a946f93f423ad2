// Package migrate copies student and teacher records out of the legacy SQLite
// database into a storage backend.
//
// Rows whose embedding file is missing are skipped with a warning. Any other
// failure aborts the run. Running a migration twice leaves the target unchanged
// because every row is written with an upsert keyed on its natural key.
package migrate
