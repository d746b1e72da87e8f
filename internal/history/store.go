package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spaolacci/murmur3"

	"github.com/iamkarasik/hardwood/internal/bench"
	"github.com/iamkarasik/hardwood/pkg/aggregate"
)

// Store records and lists benchmark sessions in a SQLite database.
type Store struct {
	db *sql.DB
}

// SessionSummary is one row of the sessions table.
type SessionSummary struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	Files      int
	Rows       int64
	Bytes      int64
	Cores      int
	Contenders []string
}

// RunRecord is one stored run with its aggregate decoded back to JSON.
type RunRecord struct {
	Contender   string
	Index       int
	Duration    time.Duration
	Fingerprint string
	Aggregate   json.RawMessage
}

// Open opens or creates the history database at path and brings the
// schema up to the supported version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	for _, stmt := range allSchemaSQL() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("history: failed to execute schema statement: %w", err)
		}
	}

	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("history: failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("history: database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if version < schemaVersion {
		_, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			schemaVersion, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("history: failed to record schema version: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts the session and all of its runs in one transaction.
func (s *Store) Record(ctx context.Context, session *bench.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	keys := make([]string, len(session.Results))
	for i, result := range session.Results {
		keys[i] = result.Contender.Key
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, kind, started_at, files, rows, bytes, cores, contenders)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, string(session.Dataset.Kind), session.StartedAt.Unix(),
		len(session.Dataset.Files), session.Reference().RowCount(),
		session.Dataset.TotalBytes, runtime.NumCPU(), strings.Join(keys, ","),
	)
	if err != nil {
		return fmt.Errorf("history: failed to insert session: %w", err)
	}

	for _, result := range session.Results {
		for _, run := range result.Runs {
			payload, fingerprint, err := encodeAggregate(run.Aggregate)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO runs (session_id, contender, run_index, duration_ms, aggregate, fingerprint)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				session.ID, result.Contender.Key, run.Index,
				run.Duration.Milliseconds(), payload, fingerprint,
			)
			if err != nil {
				return fmt.Errorf("history: failed to insert run: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: failed to commit session: %w", err)
	}
	return nil
}

// Recent returns the latest n sessions, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, started_at, files, rows, bytes, cores, contenders
		 FROM sessions ORDER BY started_at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var summary SessionSummary
		var startedAtUnix int64
		var contenders string
		err := rows.Scan(&summary.ID, &summary.Kind, &startedAtUnix,
			&summary.Files, &summary.Rows, &summary.Bytes, &summary.Cores, &contenders)
		if err != nil {
			return nil, fmt.Errorf("history: failed to scan session: %w", err)
		}
		summary.StartedAt = time.Unix(startedAtUnix, 0)
		summary.Contenders = strings.Split(contenders, ",")
		sessions = append(sessions, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: error iterating sessions: %w", err)
	}
	return sessions, nil
}

// Runs returns a session's stored runs ordered by contender key, then
// run index.
func (s *Store) Runs(ctx context.Context, sessionID string) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contender, run_index, duration_ms, aggregate, fingerprint
		 FROM runs WHERE session_id = ? ORDER BY contender, run_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var durationMs int64
		var payload []byte
		err := rows.Scan(&record.Contender, &record.Index, &durationMs, &payload, &record.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("history: failed to scan run: %w", err)
		}
		record.Duration = time.Duration(durationMs) * time.Millisecond
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("history: failed to decompress aggregate: %w", err)
		}
		record.Aggregate = decoded
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: error iterating runs: %w", err)
	}
	return records, nil
}

// Fingerprint returns the hex-encoded murmur3 128-bit hash of the
// aggregate's canonical JSON. Equal aggregates always produce equal
// fingerprints.
func Fingerprint(agg aggregate.Aggregate) (string, error) {
	canonical, err := json.Marshal(agg)
	if err != nil {
		return "", fmt.Errorf("history: failed to marshal aggregate: %w", err)
	}
	h := murmur3.New128()
	h.Write(canonical)
	h1, h2 := h.Sum128()
	return fmt.Sprintf("%016x%016x", h1, h2), nil
}

// encodeAggregate produces the compressed payload and fingerprint stored
// for one run. Both derive from the same canonical JSON bytes.
func encodeAggregate(agg aggregate.Aggregate) ([]byte, string, error) {
	canonical, err := json.Marshal(agg)
	if err != nil {
		return nil, "", fmt.Errorf("history: failed to marshal aggregate: %w", err)
	}
	h := murmur3.New128()
	h.Write(canonical)
	h1, h2 := h.Sum128()
	return snappy.Encode(nil, canonical), fmt.Sprintf("%016x%016x", h1, h2), nil
}
