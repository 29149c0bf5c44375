package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	original_path TEXT NOT NULL,
	snapshot_path TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	reason        TEXT NOT NULL,
	size          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_path ON snapshots(original_path, created_at);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	path          TEXT NOT NULL,
	kind          TEXT NOT NULL,
	language      TEXT NOT NULL,
	initial_score REAL NOT NULL,
	final_score   REAL NOT NULL,
	iterations    INTEGER NOT NULL,
	stop_reason   TEXT NOT NULL,
	applied       INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	history       TEXT NOT NULL,
	changed       INTEGER NOT NULL,
	dry_run       INTEGER NOT NULL,
	error         TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path, started_at);
`

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps the snapshot catalog and the run history in one
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(snap Snapshot) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (id, original_path, snapshot_path, created_at, reason, size) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.OriginalPath, snap.SnapshotPath, snap.CreatedAt.UTC().Format(timeLayout), snap.Reason, snap.Size,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(id string) (Snapshot, error) {
	row := s.db.QueryRow(`SELECT id, original_path, snapshot_path, created_at, reason, size FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}
	return snap, err
}

func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) List(originalPath string) ([]Snapshot, error) {
	query := `SELECT id, original_path, snapshot_path, created_at, reason, size FROM snapshots`
	var args []any
	if originalPath != "" {
		query += ` WHERE original_path = ?`
		args = append(args, originalPath)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r scanner) (Snapshot, error) {
	var snap Snapshot
	var created string
	if err := r.Scan(&snap.ID, &snap.OriginalPath, &snap.SnapshotPath, &created, &snap.Reason, &snap.Size); err != nil {
		return Snapshot{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid snapshot timestamp %q: %w", created, err)
	}
	snap.CreatedAt = t
	return snap, nil
}

func (s *SQLiteStore) RecordRun(r RunRecord) error {
	history, err := json.Marshal(r.History)
	if err != nil {
		return fmt.Errorf("failed to marshal score history: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (id, path, kind, language, initial_score, final_score, iterations, stop_reason, applied, failed, history, changed, dry_run, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Path, r.Kind, r.Language, r.InitialScore, r.FinalScore, r.Iterations, r.StopReason,
		r.Applied, r.Failed, string(history), boolInt(r.Changed), boolInt(r.DryRun), r.Error,
		r.StartedAt.UTC().Format(timeLayout), r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(path string, limit int) ([]RunRecord, error) {
	query := `SELECT id, path, kind, language, initial_score, final_score, iterations, stop_reason, applied, failed, history, changed, dry_run, error, started_at, duration_ms FROM runs`
	var args []any
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var history, started string
		var changed, dryRun int
		var ms int64
		if err := rows.Scan(&r.ID, &r.Path, &r.Kind, &r.Language, &r.InitialScore, &r.FinalScore, &r.Iterations, &r.StopReason,
			&r.Applied, &r.Failed, &history, &changed, &dryRun, &r.Error, &started, &ms); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(history), &r.History); err != nil {
			return nil, fmt.Errorf("invalid score history for run %s: %w", r.ID, err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("invalid start time for run %s: %w", r.ID, err)
		}
		r.Changed, r.DryRun = changed != 0, dryRun != 0
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
