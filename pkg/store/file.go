package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// FileStore keeps one <id>.json file per diagram in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string { return filepath.Join(s.dir, id+".json") }

func (s *FileStore) Put(ctx context.Context, id string, d *diagram.Diagram) error {
	if err := checkPut(id, d); err != nil {
		return err
	}
	// Write then rename so readers never see a partial document.
	tmp := s.path(id) + ".tmp"
	if err := diagram.WriteDiagramFile(d, tmp); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(id))
}

func (s *FileStore) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	d, err := diagram.ReadDiagramFile(s.path(id))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, notFound(id)
	}
	return d, err
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	return err
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		d, err := diagram.ReadDiagramFile(s.path(id))
		if err != nil {
			continue
		}
		out = append(out, summarize(id, d))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
