package store

import (
	"context"
	"sync"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// MemoryStore keeps diagrams in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*diagram.Diagram
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]*diagram.Diagram{}}
}

func (s *MemoryStore) Put(ctx context.Context, id string, d *diagram.Diagram) error {
	if err := checkPut(id, d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = d.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, notFound(id)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.docs))
	for id, d := range s.docs {
		out = append(out, summarize(id, d))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
