// Package audit keeps a local history of run summaries in SQLite. It stores
// only the observability counts a run already exposes; nothing here feeds
// back into reconciliation.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"calsync/internal/sync"
)

// Schema for the sync_runs table. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	calendar_id TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	inserted INTEGER NOT NULL,
	adopted INTEGER NOT NULL,
	updated INTEGER NOT NULL,
	unchanged INTEGER NOT NULL,
	deleted_future INTEGER NOT NULL,
	skipped_past INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record writes one run row. runErr may be nil.
func (s *Store) Record(ctx context.Context, calendarID string, started, finished time.Time, sum sync.Summary, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (calendar_id, started_at, finished_at,
			inserted, adopted, updated, unchanged, deleted_future, skipped_past, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		calendarID, started.Unix(), finished.Unix(),
		sum.Inserted, sum.Adopted, sum.Updated, sum.Unchanged,
		sum.DeletedFuture, sum.SkippedPast, sum.Failed, errText)
	if err != nil {
		return fmt.Errorf("audit: record run: %w", err)
	}
	return nil
}

// Run is one recorded reconciliation.
type Run struct {
	CalendarID string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    sync.Summary
	Error      string
}

// Recent returns the newest runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT calendar_id, started_at, finished_at,
			inserted, adopted, updated, unchanged, deleted_future, skipped_past, failed, error
		FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.CalendarID, &started, &finished,
			&r.Summary.Inserted, &r.Summary.Adopted, &r.Summary.Updated, &r.Summary.Unchanged,
			&r.Summary.DeletedFuture, &r.Summary.SkippedPast, &r.Summary.Failed, &r.Error); err != nil {
			return nil, fmt.Errorf("audit: scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		r.FinishedAt = time.Unix(finished, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}
