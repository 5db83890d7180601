package usagestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"socialstorm/internal/textmatch"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Selection is one recorded clip choice.
type Selection struct {
	ID         int64
	JobID      string
	SceneIndex int
	Subject    string
	Locator    string
	Stem       string
	Provider   string
	IsVideo    bool
	Score      float64
	CreatedAt  time.Time
}

// Store manages selection persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the selections database.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("usagestore: db path required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the database to reset)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Record stores one selection.
func (s *Store) Record(ctx context.Context, sel Selection) (int64, error) {
	if strings.TrimSpace(sel.Locator) == "" {
		return 0, errors.New("usagestore: locator required")
	}
	stem := sel.Stem
	if stem == "" {
		stem = textmatch.Stem(sel.Locator)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO selections (
            job_id, scene_index, subject, locator, stem, provider, is_video, score, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sel.JobID, sel.SceneIndex, sel.Subject, sel.Locator, stem, sel.Provider,
		boolToInt(sel.IsVideo), sel.Score, timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert selection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecentStems returns the stems of the most recent selections across
// all jobs, newest first, capped at limit.
func (s *Store) RecentStems(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT stem FROM selections ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent stems: %w", err)
	}
	defer rows.Close()

	var stems []string
	for rows.Next() {
		var stem string
		if err := rows.Scan(&stem); err != nil {
			return nil, fmt.Errorf("scan stem: %w", err)
		}
		stems = append(stems, stem)
	}
	return stems, rows.Err()
}

// ListForJob returns every selection recorded under a job, scene order.
func (s *Store) ListForJob(ctx context.Context, jobID string) ([]Selection, error) {
	return s.list(ctx,
		"SELECT id, job_id, scene_index, subject, locator, stem, provider, is_video, score, created_at FROM selections WHERE job_id = ? ORDER BY scene_index ASC, id ASC",
		jobID)
}

// ListRecent returns the latest selections across jobs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Selection, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx,
		"SELECT id, job_id, scene_index, subject, locator, stem, provider, is_video, score, created_at FROM selections ORDER BY id DESC LIMIT ?",
		limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Selection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	var selections []Selection
	for rows.Next() {
		var sel Selection
		var isVideo int
		var createdAt string
		if err := rows.Scan(&sel.ID, &sel.JobID, &sel.SceneIndex, &sel.Subject,
			&sel.Locator, &sel.Stem, &sel.Provider, &isVideo, &sel.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		sel.IsVideo = isVideo != 0
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			sel.CreatedAt = parsed
		}
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
