// Package storage provides transcript persistence.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import "context"

// Record is one finished exchange entry as persisted: the live
// conversation stays in memory, only completed messages are written.
type Record struct {
	Role       string
	Content    string
	AgentsUsed []string
}

// TranscriptStorage defines the interface for storing chat transcripts.
// Implementations can use different backends without API changes.
type TranscriptStorage interface {
	// Save saves the transcript for a session, replacing any previous copy.
	Save(ctx context.Context, sessionID string, records []Record) error

	// Load loads the transcript for a session.
	// Returns empty slice (not nil) if the session doesn't exist.
	// Returns error only for storage failures, not missing sessions.
	Load(ctx context.Context, sessionID string) ([]Record, error)

	// Delete removes a session and its transcript.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions lists all session IDs, most recently updated first.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists checks if a session exists.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
