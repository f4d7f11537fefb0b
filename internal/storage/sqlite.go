// Package storage provides SQLite-based persistence for leaderboards and
// player documents. Uses the pure-Go modernc.org/sqlite driver to avoid
// CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection. It is safe for
// concurrent use; the SSH server shares one Store between sessions.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single leaderboard record.
type ScoreEntry struct {
	ID          int64
	Board       string
	DisplayName string
	Value       float64
	SessionID   string
	CreatedAt   time.Time
}

// Order selects which end of a board is best.
type Order int

const (
	HighFirst Order = iota // Scores
	LowFirst               // Times
)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database. SSH sessions write concurrently, so wait on locks
	// instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board TEXT NOT NULL,
			display_name TEXT NOT NULL,
			value REAL NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_board ON scores(board, value);

		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a new entry on a board.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(ctx context.Context, e ScoreEntry) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO scores (board, display_name, value, session_id) VALUES (?, ?, ?, ?)",
		e.Board, e.DisplayName, e.Value, e.SessionID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the best N entries of a board, best first.
// Ties go to the earlier entry.
func (s *Store) TopScores(ctx context.Context, board string, order Order, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, board, display_name, value, session_id, created_at
		 FROM scores
		 WHERE board = ?
		 ORDER BY value DESC, id ASC
		 LIMIT ?`
	if order == LowFirst {
		query = `SELECT id, board, display_name, value, session_id, created_at
		 FROM scores
		 WHERE board = ?
		 ORDER BY value ASC, id ASC
		 LIMIT ?`
	}

	rows, err := s.db.QueryContext(ctx, query, board, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Board, &e.DisplayName, &e.Value, &e.SessionID, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// CountBetter returns how many entries on a board strictly beat value.
func (s *Store) CountBetter(ctx context.Context, board string, order Order, value float64) (int, error) {
	query := "SELECT COUNT(*) FROM scores WHERE board = ? AND value > ?"
	if order == LowFirst {
		query = "SELECT COUNT(*) FROM scores WHERE board = ? AND value < ?"
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, board, value).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count scores: %w", err)
	}
	return n, nil
}

// ClearScores deletes all entries of a board.
func (s *Store) ClearScores(ctx context.Context, board string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scores WHERE board = ?", board)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// BoardStats contains aggregated statistics for a board.
type BoardStats struct {
	Board      string
	Entries    int
	Best       float64
	Average    float64
	LastPlayed time.Time
}

// GetBoardStats retrieves aggregated statistics for a board.
func (s *Store) GetBoardStats(ctx context.Context, board string, order Order) (*BoardStats, error) {
	stats := &BoardStats{Board: board}

	best := "COALESCE(MAX(value), 0)"
	if order == LowFirst {
		best = "COALESCE(MIN(value), 0)"
	}

	var lastPlayed any
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), `+best+`, COALESCE(AVG(value), 0), MAX(created_at)
		 FROM scores WHERE board = ?`,
		board,
	).Scan(&stats.Entries, &stats.Best, &stats.Average, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get board stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// Get returns the document stored under key.
// The boolean is false when the key does not exist.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a document under key, replacing any previous one.
func (s *Store) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete %s: %w", key, err)
	}
	return nil
}

// parseTime handles the driver returning either time.Time or text for
// DATETIME columns.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
