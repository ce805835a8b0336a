// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists past questions and answers locally.
//
// The backend keeps its own conversational state; this store is the client's
// own record, so answers survive backend restarts and the capsule can recall
// recent questions without a round trip.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("history entry not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// TYPES
// =============================================================================

// Entry is one answered question.
type Entry struct {
	ID            string
	Question      string
	Answer        string
	PersonalityID string
	// HadCapture records whether screen context was attached.
	HadCapture bool
	CreatedAt  time.Time
}

// Store is a SQLite-backed history store. Safe for use from the single UI
// loop; database/sql serializes access for the CLI paths.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the default history database path (~/.ruma/history.db).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ruma", "history.db"), nil
}

// =============================================================================
// OPEN / CLOSE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id             TEXT PRIMARY KEY,
	question       TEXT NOT NULL,
	answer         TEXT NOT NULL,
	personality_id TEXT NOT NULL DEFAULT '',
	had_capture    INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at DESC);
`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to apply schema: %v", ErrDatabaseError, err)
	}

	// SECURITY: history may contain screen contents; owner-only.
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set history permissions: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Add records an answered question and returns its generated id.
func (s *Store) Add(entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO entries (id, question, answer, personality_id, had_capture, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Question, entry.Answer, entry.PersonalityID,
		boolToInt(entry.HadCapture), entry.CreatedAt.Unix())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

// Delete removes an entry by id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Get fetches a single entry by id.
func (s *Store) Get(id string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT id, question, answer, personality_id, had_capture, created_at
		FROM entries WHERE id = ?
	`, id)
	return scanEntry(row)
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, question, answer, personality_id, had_capture, created_at
		FROM entries ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Search returns entries whose question or answer contains the query,
// most recent first.
func (s *Store) Search(query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, question, answer, personality_id, had_capture, created_at
		FROM entries
		WHERE question LIKE ? OR answer LIKE ?
		ORDER BY created_at DESC, id LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var hadCapture int
	var createdAt int64
	err := row.Scan(&e.ID, &e.Question, &e.Answer, &e.PersonalityID, &hadCapture, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	e.HadCapture = hadCapture != 0
	e.CreatedAt = time.Unix(createdAt, 0)
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
