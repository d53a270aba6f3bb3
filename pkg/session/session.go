// Package session persists editing sessions: the canvas being edited plus
// the per-session view state around it.
//
// A session is what lets a front end pick up where the user left off. The
// CLI saves one after every command and restores it when no canvas file is
// given; the HTTP server saves one after every mutation and restores it on
// startup. Restoring always rebuilds the canvas from its snapshot, so the
// caller follows up with a full recalculation.
//
// # Backends
//
// The Store interface has two implementations:
//   - [FileStore]: JSON files in a config directory, for the CLI
//   - [CacheStore]: any [cache.Cache] (file, Redis, null), for the server
//
// [CLIStore] wraps a Store with the fixed "last" session ID.
//
// # Usage
//
//	store, err := session.NewCLIStore("")
//	sess, err := store.GetSession(ctx)
//	if sess == nil {
//	    // Nothing saved yet
//	}
//	g, err := sess.Restore(catalog)
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
)

// ErrNoCanvas is returned when restoring a session that holds no canvas.
var ErrNoCanvas = errors.New("session has no canvas")

// Session is a saved editing session.
type Session struct {
	ID string `json:"id"`

	// Source is the canvas file the session was editing, if any.
	Source string `json:"source,omitempty"`

	Canvas *canvas.Snapshot `json:"canvas"`
	Editor EditorState      `json:"editor"`

	// ExpiresAt is zero for sessions that never expire.
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the session has an expiry in the past.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Update replaces the session's canvas with the current state of g.
func (s *Session) Update(g *canvas.Graph) {
	s.Canvas = g.Snapshot()
	s.Editor.Forget(g)
	s.UpdatedAt = time.Now()
}

// Restore rebuilds the session's canvas. The returned graph has no computed
// values; callers run a full recalculation.
func (s *Session) Restore(cat *canvas.Catalog) (*canvas.Graph, error) {
	if s.Canvas == nil {
		return nil, ErrNoCanvas
	}
	return canvas.Restore(s.Canvas, cat, nil)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for TTL backends).
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session holding a snapshot of g. A ttl of zero means the
// session never expires.
func New(g *canvas.Graph, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{
		ID:        id,
		Canvas:    g.Snapshot(),
		Editor:    NewEditorState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s, nil
}
