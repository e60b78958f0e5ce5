// Package store persists diagram documents.
//
// Backends:
//
//   - [MemoryStore]: process-local, used by tests and the default server
//   - [FileStore]: one JSON file per diagram
//   - [MongoStore]: a MongoDB collection
//
// Every backend returns DIAGRAM_NOT_FOUND for unknown IDs and rejects IDs
// that fail errors.ValidateID. Documents are copied on the way in and out,
// so callers may mutate what they pass or receive.
package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// Store persists diagrams by ID.
type Store interface {
	Put(ctx context.Context, id string, d *diagram.Diagram) error
	Get(ctx context.Context, id string) (*diagram.Diagram, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// Summary describes a stored diagram without its contents.
type Summary struct {
	ID        string `json:"id" msgpack:"id" bson:"_id"`
	Title     string `json:"title" msgpack:"title" bson:"title"`
	UpdatedAt string `json:"updatedAt,omitempty" msgpack:"updatedAt,omitempty" bson:"updated_at"`
	Nodes     int    `json:"nodes" msgpack:"nodes" bson:"nodes"`
	Edges     int    `json:"edges" msgpack:"edges" bson:"edges"`
}

// NewID returns a fresh random diagram ID.
func NewID() string { return uuid.NewString() }

func summarize(id string, d *diagram.Diagram) Summary {
	return Summary{
		ID:        id,
		Title:     d.Meta.Title,
		UpdatedAt: d.Meta.UpdatedAt,
		Nodes:     len(d.Nodes),
		Edges:     len(d.Edges),
	}
}

func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int { return cmp.Compare(a.ID, b.ID) })
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeDiagramNotFound, "diagram %s not found", id)
}

// checkPut validates an ID and document before storing.
func checkPut(id string, d *diagram.Diagram) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil diagram")
	}
	return d.Validate()
}
