package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"textflix/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	phone TEXT NOT NULL,
	title TEXT NOT NULL,
	year INTEGER NOT NULL DEFAULT 0,
	tmdb_id INTEGER NOT NULL,
	radarr_id INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	notified_started INTEGER NOT NULL DEFAULT 0,
	notified_completed INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_phone_tmdb ON requests(phone, tmdb_id);
CREATE INDEX IF NOT EXISTS idx_requests_active ON requests(notified_completed);
`

// ErrDuplicate marks a request for a movie the same number already requested.
var ErrDuplicate = errors.New("request already exists")

// Store manages request persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the requests database at the configured path.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.RequestsDBPath())
}

// OpenPath opens the requests database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
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

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new request. A second request for the same movie from the
// same number returns ErrDuplicate.
func (s *Store) Create(ctx context.Context, req Request) (*Request, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	req.Title = strings.TrimSpace(req.Title)
	if req.Phone == "" || req.Title == "" || req.TMDBID <= 0 {
		return nil, errors.New("create request: phone, title, and tmdb id required")
	}
	if req.Status == "" {
		req.Status = StatusRequested
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (phone, title, year, tmdb_id, radarr_id, status, notified_started, notified_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Phone, req.Title, req.Year, req.TMDBID, req.RadarrID, string(req.Status),
		boolToInt(req.NotifiedStarted), boolToInt(req.NotifiedCompleted), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s for %s", ErrDuplicate, req.Title, req.Phone)
		}
		return nil, fmt.Errorf("insert request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read insert id: %w", err)
	}
	req.ID = id
	return &req, nil
}

// ByID fetches one request.
func (s *Store) ByID(ctx context.Context, id int64) (*Request, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanRequest(row)
}

// ByPhoneAndTMDBID fetches the request a number made for a movie, nil when absent.
func (s *Store) ByPhoneAndTMDBID(ctx context.Context, phone string, tmdbID int64) (*Request, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE phone = ? AND tmdb_id = ?", strings.TrimSpace(phone), tmdbID)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// Active lists requests the monitor still tracks, oldest first.
func (s *Store) Active(ctx context.Context) ([]Request, error) {
	return s.list(ctx, selectColumns+" WHERE notified_completed = 0 ORDER BY created_at ASC")
}

// List returns every request, newest first.
func (s *Store) List(ctx context.Context) ([]Request, error) {
	return s.list(ctx, selectColumns+" ORDER BY created_at DESC")
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var result []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return result, nil
}

// SetStatus updates the acquisition status.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) error {
	return s.update(ctx, id, "status = ?", string(status))
}

// SetRadarrID records the Radarr movie id once known.
func (s *Store) SetRadarrID(ctx context.Context, id, radarrID int64) error {
	return s.update(ctx, id, "radarr_id = ?", radarrID)
}

// MarkNotifiedStarted records that the download-started message was sent.
func (s *Store) MarkNotifiedStarted(ctx context.Context, id int64) error {
	return s.update(ctx, id, "notified_started = 1")
}

// MarkNotifiedCompleted records that the download-completed message was sent.
// The request drops out of the active set afterwards.
func (s *Store) MarkNotifiedCompleted(ctx context.Context, id int64) error {
	return s.update(ctx, id, "notified_completed = 1")
}

func (s *Store) update(ctx context.Context, id int64, clause string, args ...any) error {
	query := "UPDATE requests SET " + clause + ", updated_at = ? WHERE id = ?"
	args = append(args, time.Now().UTC(), id)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update request %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update request %d: not found", id)
	}
	return nil
}

const selectColumns = `
	SELECT id, phone, title, year, tmdb_id, radarr_id, status, notified_started, notified_completed, created_at, updated_at
	FROM requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var (
		req               Request
		status            string
		notifiedStarted   int
		notifiedCompleted int
	)
	err := row.Scan(
		&req.ID, &req.Phone, &req.Title, &req.Year, &req.TMDBID, &req.RadarrID,
		&status, &notifiedStarted, &notifiedCompleted, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan request: %w", err)
	}
	req.Status = Status(status)
	req.NotifiedStarted = notifiedStarted != 0
	req.NotifiedCompleted = notifiedCompleted != 0
	return &req, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}
