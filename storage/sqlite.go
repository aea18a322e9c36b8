package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStorage implements TranscriptStorage using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS transcript (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			record_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			agents_used TEXT NOT NULL DEFAULT '[]',
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, record_index)
		);

		CREATE INDEX IF NOT EXISTS idx_transcript_session
		ON transcript(session_id, record_index);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SqliteStorage) ensureSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (session_id) VALUES (?)",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// Save saves the transcript for a session, replacing any previous copy.
func (s *SqliteStorage) Save(ctx context.Context, sessionID string, records []Record) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, "DELETE FROM transcript WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear old records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO transcript (session_id, record_index, role, content, agents_used) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		agents := rec.AgentsUsed
		if agents == nil {
			agents = []string{}
		}
		encoded, err := json.Marshal(agents)
		if err != nil {
			return fmt.Errorf("failed to encode agents: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sessionID, i, rec.Role, rec.Content, string(encoded)); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = datetime('now') WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load loads the transcript for a session.
// Returns empty slice if the session doesn't exist.
func (s *SqliteStorage) Load(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, agents_used FROM transcript WHERE session_id = ? ORDER BY record_index ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer rows.Close()

	records := []Record{} // Start with empty slice, not nil
	for rows.Next() {
		var rec Record
		var agents string
		if err := rows.Scan(&rec.Role, &rec.Content, &agents); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(agents), &rec.AgentsUsed); err != nil {
			return nil, fmt.Errorf("failed to decode agents: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Delete removes a session and its transcript.
func (s *SqliteStorage) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	// The foreign key cascade is not enforced unless enabled per
	// connection, so clear the transcript explicitly.
	_, err = s.db.ExecContext(ctx,
		"DELETE FROM transcript WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

// ListSessions lists all session IDs, most recently updated first.
func (s *SqliteStorage) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{} // Start with empty slice, not nil
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sessionID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// Exists checks if a session exists.
func (s *SqliteStorage) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_id = ?",
		sessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return count > 0, nil
}

// Verify SqliteStorage implements TranscriptStorage
var _ TranscriptStorage = (*SqliteStorage)(nil)
