package session

import (
	"context"

	"github.com/chanpio/honbob/internal/models"
)

// Store is the per-browser session cache: simple string values under
// fixed keys, scoped to a session id. It carries only two things, the
// "my record id" reference for session continuity and the edit-priming
// snapshot.
type Store interface {
	// MyRecordID returns the record id cached for this session, or
	// "" when none is cached.
	MyRecordID(ctx context.Context, sessionID string) (string, error)

	// SetMyRecordID caches the record id for this session.
	SetMyRecordID(ctx context.Context, sessionID, recordID string) error

	// ClearMyRecordID drops the cached record id.
	ClearMyRecordID(ctx context.Context, sessionID string) error

	// Editing returns the edit-priming snapshot, or nil when the
	// session is not editing.
	Editing(ctx context.Context, sessionID string) (*models.EditState, error)

	// SetEditing primes the session with an existing record snapshot.
	SetEditing(ctx context.Context, sessionID string, state *models.EditState) error

	// ClearEditing drops the edit-priming snapshot.
	ClearEditing(ctx context.Context, sessionID string) error

	// ClearAllMyRecords drops every session's cached record id. The
	// weekly reset invokes this alongside clearing the roster.
	ClearAllMyRecords(ctx context.Context) error
}
