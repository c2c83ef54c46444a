package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// File persists the whole key set as one JSON document under the data dir.
// Loaded on open, written through on every Set/Delete.
type File struct {
	mu   sync.RWMutex
	path string
	m    map[string]string
}

func NewFile(dataDir string) (*File, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &File{
		path: filepath.Join(dataDir, "state.json"),
		m:    map[string]string{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *File) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded map[string]string
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded != nil {
		s.m = loaded
	}
	return nil
}

func (s *File) saveLocked() error {
	b, err := json.MarshalIndent(s.m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *File) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *File) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return s.saveLocked()
}

func (s *File) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return s.saveLocked()
}
