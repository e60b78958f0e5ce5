// Package session manages interactive editing sessions.
//
// A session owns a working copy of one diagram. Every edit bumps the
// session's generation and starts a routing pass over a snapshot; when the
// pass finishes it is committed only if no newer edit arrived in the
// meantime. A superseded pass is discarded wholesale with a SUPERSEDED error,
// so clients never see routes computed for an outdated layout.
//
// # Storage
//
// Session state lives in a [Store]:
//   - [MemoryStore]: in-process, used by the HTTP server
//   - [FileStore]: JSON files, so the terminal editor can resume a session
//
// # Usage
//
//	m := session.NewManager(session.NewMemoryStore(), router, logger)
//	s, _ := m.Open(ctx, "prod", d)
//	routed, err := m.Move(ctx, s.ID, "web", 24, 0)
//	if errors.Is(err, errors.ErrCodeSuperseded) {
//	    // a newer move is already being routed
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Session is the state of one editing session.
type Session struct {
	ID        string `json:"id" msgpack:"id"`
	DiagramID string `json:"diagramId,omitempty" msgpack:"diagramId,omitempty"`
	// Generation counts edits; each routing pass is tagged with the
	// generation it was started for.
	Generation uint64           `json:"generation" msgpack:"generation"`
	Diagram    *diagram.Diagram `json:"diagram" msgpack:"diagram"`
	// Routed is the last committed pass, nil before the first one.
	Routed    *diagram.Routed `json:"routed,omitempty" msgpack:"routed,omitempty"`
	CreatedAt time.Time       `json:"createdAt" msgpack:"createdAt"`
	ExpiresAt time.Time       `json:"expiresAt" msgpack:"expiresAt"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
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

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a random session ID.
func GenerateID() string { return uuid.NewString() }

// New creates a session over a copy of d.
func New(diagramID string, d *diagram.Diagram, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		DiagramID: diagramID,
		Diagram:   d.Clone(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// clone copies the session and its diagram so stores never share state with
// callers.
func (s *Session) clone() *Session {
	c := *s
	if s.Diagram != nil {
		c.Diagram = s.Diagram.Clone()
	}
	return &c
}
