package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps one <id>.json file per session so the terminal editor
// can pick a session up again after a restart.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore stores sessions under dir, creating it with owner-only
// permissions.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("session: empty store directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the session files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := readSession(s.file(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		_ = os.Remove(s.file(id))
		return nil, nil
	}
	return sess, nil
}

// Set writes sess. The committed pass shares the session's diagram, so the
// diagram is written once and reattached by Get.
func (s *FileStore) Set(_ context.Context, sess *Session) error {
	stored := *sess
	if stored.Routed != nil {
		r := *stored.Routed
		r.Diagram = nil
		stored.Routed = &r
	}
	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.file(sess.ID), data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.file(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", id, err)
	}
	return nil
}

// Cleanup removes expired sessions. Files it cannot parse are left alone.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}
	now := time.Now()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		if sess, err := readSession(p); err == nil && now.After(sess.ExpiresAt) {
			_ = os.Remove(p)
		}
	}
	return nil
}

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filepath.Base(path), err)
	}
	if sess.Routed != nil {
		sess.Routed.Diagram = sess.Diagram
	}
	return &sess, nil
}

var _ Store = (*FileStore)(nil)
