// Package persist stores session snapshots so detached sessions can be
// resumed later, possibly on another process. Only the session's data map
// is persisted; hook cells are rebuilt by the first render after resume.
package persist

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a session ID.
var ErrNotFound = errors.New("persist: snapshot not found")

// Snapshot is the serializable state of a detached session.
type Snapshot struct {
	SessionID  string         `json:"session_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DetachedAt time.Time      `json:"detached_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// SnapshotStore persists session snapshots.
type SnapshotStore interface {
	// Save stores the snapshot, replacing any previous one for the same ID.
	Save(ctx context.Context, snap Snapshot) error

	// Load retrieves the snapshot for a session ID. Returns ErrNotFound if
	// none exists.
	Load(ctx context.Context, sessionID string) (Snapshot, error)

	// Delete removes the snapshot for a session ID. Deleting a missing
	// snapshot is not an error.
	Delete(ctx context.Context, sessionID string) error
}
