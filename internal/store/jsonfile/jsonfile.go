// Package jsonfile persists the memo collection in a single JSON file,
// the default durable container. The whole collection is loaded at open
// and flushed after every mutation via an atomic temp-file replace.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/store"
)

type jsonStore struct {
	mu    sync.RWMutex
	path  string
	memos []*model.Memo // insertion order, mirrors the file layout
}

// Open loads the collection from path. A missing file yields an empty
// collection; an unreadable or corrupt file is fatal and surfaces as
// model.StorageError, never a silent reset.
func Open(path string) (store.Store, error) {
	s := &jsonStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.memos = []*model.Memo{}
		return s, nil
	case err != nil:
		return nil, model.NewStorageError("load", err)
	}

	if err := json.Unmarshal(data, &s.memos); err != nil {
		return nil, model.NewStorageError("load", fmt.Errorf("corrupt container %s: %w", path, err))
	}
	// Well-formed JSON can still be a corrupt collection: null entries or
	// memos without an id would break every lookup later.
	for i, m := range s.memos {
		if m == nil || m.ID == "" {
			return nil, model.NewStorageError("load", fmt.Errorf("corrupt container %s: entry %d has no id", path, i))
		}
	}
	return s, nil
}

func (s *jsonStore) Create(ctx context.Context, m *model.Memo) (*model.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append([]*model.Memo{}, s.memos...), m.Clone())
	if err := s.flush(next); err != nil {
		return nil, err
	}
	s.memos = next
	return m.Clone(), nil
}

func (s *jsonStore) Get(ctx context.Context, id string) (*model.Memo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memos {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return nil, model.NewNotFoundError(id)
}

func (s *jsonStore) List(ctx context.Context) ([]*model.Memo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Memo, 0, len(s.memos))
	for _, m := range s.memos {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *jsonStore) Update(ctx context.Context, m *model.Memo) (*model.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, cur := range s.memos {
		if cur.ID == m.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, model.NewNotFoundError(m.ID)
	}

	next := append([]*model.Memo{}, s.memos...)
	next[idx] = m.Clone()
	if err := s.flush(next); err != nil {
		return nil, err
	}
	s.memos = next
	return m.Clone(), nil
}

func (s *jsonStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, cur := range s.memos {
		if cur.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.NewNotFoundError(id)
	}

	next := make([]*model.Memo, 0, len(s.memos)-1)
	next = append(next, s.memos[:idx]...)
	next = append(next, s.memos[idx+1:]...)
	if err := s.flush(next); err != nil {
		return err
	}
	s.memos = next
	return nil
}

func (s *jsonStore) Close() error { return nil }

// flush writes the snapshot to a temp file in the same directory and
// renames it over the container, so readers of the file never observe a
// half-written collection. In-memory state is only advanced by callers
// after flush succeeds.
func (s *jsonStore) flush(memos []*model.Memo) error {
	data, err := json.MarshalIndent(memos, "", "  ")
	if err != nil {
		return model.NewStorageError("flush", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.NewStorageError("flush", err)
	}
	tmp, err := os.CreateTemp(dir, ".memos-*.json")
	if err != nil {
		return model.NewStorageError("flush", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return model.NewStorageError("flush", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return model.NewStorageError("flush", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return model.NewStorageError("flush", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return model.NewStorageError("flush", err)
	}
	return nil
}
