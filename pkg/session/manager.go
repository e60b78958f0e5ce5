package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/observability"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// Manager applies edits to sessions and routes them.
type Manager struct {
	Store  Store
	Router *route.Router
	TTL    time.Duration
	Logger *log.Logger

	// mu serializes read-modify-write cycles on the store. Routing runs
	// outside it.
	mu sync.Mutex
}

// NewManager creates a manager. A nil logger falls back to log.Default().
func NewManager(store Store, router *route.Router, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	if router == nil {
		router = route.New(route.DefaultOptions(), logger)
	}
	return &Manager{Store: store, Router: router, TTL: DefaultTTL, Logger: logger}
}

// Pending is a routing pass started for one generation of a session.
type Pending struct {
	SessionID  string
	Generation uint64
	Snapshot   *diagram.Diagram
}

// Open starts a session over a copy of d and routes it once.
func (m *Manager) Open(ctx context.Context, diagramID string, d *diagram.Diagram) (*Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s := New(diagramID, d, m.TTL)
	s.Generation = 1
	s.Routed = diagram.Route(s.Diagram.Clone(), m.Router)
	s.Routed.Generation = 1
	if err := m.Store.Set(ctx, s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	m.Logger.Debug("session opened", "session", s.ID, "diagram", diagramID, "nodes", len(d.Nodes))
	return s, nil
}

// Get returns a session or SESSION_NOT_FOUND.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	s, err := m.Store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session %s", id)
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", id)
	}
	return s, nil
}

// Close ends a session.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.Store.Delete(ctx, id)
}

// Begin applies edit to the session's diagram, bumps the generation and
// returns a snapshot to route. Any pass begun earlier is superseded.
func (m *Manager) Begin(ctx context.Context, id string, edit func(d *diagram.Diagram) error) (*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if edit != nil {
		if err := edit(s.Diagram); err != nil {
			return nil, err
		}
	}
	s.Generation++
	s.ExpiresAt = time.Now().Add(m.TTL)
	if err := m.Store.Set(ctx, s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	return &Pending{SessionID: id, Generation: s.Generation, Snapshot: s.Diagram.Clone()}, nil
}

// Run routes a pending pass. It touches no shared state.
func (m *Manager) Run(p *Pending) *diagram.Routed {
	r := diagram.Route(p.Snapshot, m.Router)
	r.Generation = p.Generation
	return r
}

// Commit stores the result of a pass unless a newer edit began after it,
// in which case the result is dropped and SUPERSEDED is returned.
func (m *Manager) Commit(ctx context.Context, p *Pending, r *diagram.Routed) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Get(ctx, p.SessionID)
	if err != nil {
		return err
	}
	if s.Generation != p.Generation {
		observability.Pipeline().OnPassSuperseded(ctx, p.SessionID, p.Generation)
		return errors.New(errors.ErrCodeSuperseded, "pass %d superseded by %d", p.Generation, s.Generation)
	}
	s.Routed = r
	if err := m.Store.Set(ctx, s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	return nil
}

// Apply runs Begin, Run and Commit for one edit.
func (m *Manager) Apply(ctx context.Context, id string, edit func(d *diagram.Diagram) error) (*diagram.Routed, error) {
	p, err := m.Begin(ctx, id, edit)
	if err != nil {
		return nil, err
	}
	r := m.Run(p)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Commit(ctx, p, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Move translates a node (and, for containers, its contents) and re-routes.
func (m *Manager) Move(ctx context.Context, id, nodeID string, dx, dy float64) (*diagram.Routed, error) {
	return m.Apply(ctx, id, func(d *diagram.Diagram) error { return d.Move(nodeID, dx, dy) })
}

// MoveTo places a node at an absolute position and re-routes.
func (m *Manager) MoveTo(ctx context.Context, id, nodeID string, x, y float64) (*diagram.Routed, error) {
	return m.Apply(ctx, id, func(d *diagram.Diagram) error { return d.MoveTo(nodeID, x, y) })
}

// Cleanup drops expired sessions.
func (m *Manager) Cleanup(ctx context.Context) error {
	return m.Store.Cleanup(ctx)
}
