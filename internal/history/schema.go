// Package history persists benchmark sessions to a local SQLite database
// so past runs can be compared across invocations. Recording is optional;
// the harness runs fine without a history path.
package history

// schemaVersion is the schema this build reads and writes. Databases
// reporting a newer version are refused rather than migrated downward.
const schemaVersion = 1

// createMigrationsTableSQL creates the schema version guard table.
const createMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`

// createSessionsTableSQL creates the per-invocation summary table.
const createSessionsTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    files INTEGER NOT NULL,
    rows INTEGER NOT NULL,
    bytes INTEGER NOT NULL,
    cores INTEGER NOT NULL,
    contenders TEXT NOT NULL
)`

// createRunsTableSQL creates the per-run table. The aggregate column holds
// the snappy-compressed canonical JSON of the run's aggregate record.
const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
    session_id TEXT NOT NULL,
    contender TEXT NOT NULL,
    run_index INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    aggregate BLOB NOT NULL,
    fingerprint TEXT NOT NULL,
    PRIMARY KEY (session_id, contender, run_index),
    FOREIGN KEY (session_id) REFERENCES sessions(id)
)`

// createSessionsStartedIndexSQL indexes the recency query.
const createSessionsStartedIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)`

// allSchemaSQL returns every statement needed to initialize the database.
func allSchemaSQL() []string {
	return []string{
		createMigrationsTableSQL,
		createSessionsTableSQL,
		createRunsTableSQL,
		createSessionsStartedIndexSQL,
	}
}
