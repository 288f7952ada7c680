package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound is returned when a snapshot id does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// StoredSnapshot is one persisted budgeting snapshot: the raw JSON document
// plus the bookkeeping the sync worker needs.
type StoredSnapshot struct {
	ID         int64
	MonthLabel string
	Signature  string
	Document   []byte
	CreatedAt  time.Time
	Synced     bool
	SyncError  bool
}

// SnapshotSummary is the listing view: everything but the document body.
type SnapshotSummary struct {
	ID         int64     `json:"id"`
	MonthLabel string    `json:"month_label"`
	Signature  string    `json:"signature"`
	CreatedAt  time.Time `json:"created_at"`
	Synced     bool      `json:"synced"`
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateSnapshot persists a snapshot document and returns its assigned id.
func (r *SQLiteRepository) CreateSnapshot(ctx context.Context, monthLabel, signature string, document []byte) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (month_label, signature, document) VALUES (?, ?, ?)`,
		monthLabel, signature, string(document))
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot insert id: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"id", id,
		"month_label", monthLabel,
		"signature", signature)

	return id, nil
}

// GetSnapshot loads one snapshot by id.
func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id int64) (StoredSnapshot, error) {
	var (
		s        StoredSnapshot
		document string
		created  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, month_label, signature, document, created_at, synced, sync_error
		 FROM snapshots WHERE id = ?`, id).
		Scan(&s.ID, &s.MonthLabel, &s.Signature, &document, &created, &s.Synced, &s.SyncError)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredSnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return StoredSnapshot{}, fmt.Errorf("select snapshot %d: %w", id, err)
	}
	s.Document = []byte(document)
	s.CreatedAt = parseSQLiteTime(created)
	return s, nil
}

// FindBySignature returns the most recent snapshot with the given content
// signature, so re-imports of the same document can be detected.
func (r *SQLiteRepository) FindBySignature(ctx context.Context, signature string) (StoredSnapshot, error) {
	var (
		s        StoredSnapshot
		document string
		created  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, month_label, signature, document, created_at, synced, sync_error
		 FROM snapshots WHERE signature = ? ORDER BY id DESC LIMIT 1`, signature).
		Scan(&s.ID, &s.MonthLabel, &s.Signature, &document, &created, &s.Synced, &s.SyncError)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredSnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return StoredSnapshot{}, fmt.Errorf("select snapshot by signature: %w", err)
	}
	s.Document = []byte(document)
	s.CreatedAt = parseSQLiteTime(created)
	return s, nil
}

// ListSnapshots returns summaries of the newest snapshots, most recent first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month_label, signature, created_at, synced
		 FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var (
			s       SnapshotSummary
			created string
		)
		if err := rows.Scan(&s.ID, &s.MonthLabel, &s.Signature, &created, &s.Synced); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		s.CreatedAt = parseSQLiteTime(created)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return out, nil
}

// DeleteSnapshot removes a snapshot by id.
func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	if affected == 0 {
		return ErrSnapshotNotFound
	}

	slog.InfoContext(ctx, "Snapshot deleted", "id", id)
	return nil
}

// GetPendingSync returns snapshots not yet exported to the metrics history,
// oldest first, up to limit.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]StoredSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month_label, signature, document, created_at, synced, sync_error
		 FROM snapshots WHERE synced = 0 ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending snapshots: %w", err)
	}
	defer rows.Close()

	var out []StoredSnapshot
	for rows.Next() {
		var (
			s        StoredSnapshot
			document string
			created  string
		)
		if err := rows.Scan(&s.ID, &s.MonthLabel, &s.Signature, &document, &created, &s.Synced, &s.SyncError); err != nil {
			return nil, fmt.Errorf("scan pending snapshot: %w", err)
		}
		s.Document = []byte(document)
		s.CreatedAt = parseSQLiteTime(created)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending snapshots: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful history export.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE snapshots SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark snapshot synced: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a snapshot whose export failed; it stays pending so the
// next sweep retries it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE snapshots SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark snapshot sync error: %w", err)
	}
	return nil
}

// parseSQLiteTime handles the timestamp formats sqlite hands back for
// CURRENT_TIMESTAMP columns.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
