// Package storage is the scoped key-value store backing autosave and
// cold-start loading. Absence of a key is a normal condition, not an error.
package storage

import (
	"context"
	"sync"
)

// Keys used by the application state. One key per collection, matching the
// snapshot layout, plus calendar-date stamps for daily gating.
const (
	KeyCharacter         = "character"
	KeyTasks             = "tasks"
	KeyTechniques        = "techniques"
	KeyInventory         = "inventory"
	KeyEvents            = "cultivationEvents"
	KeyShopItems         = "shopItems"
	KeyDiary             = "cultivationDiary"
	KeyDiaryDraft        = "diaryDraft"
	KeyLastShopRefresh   = "lastShopRefresh"
	KeyLastEncounterDate = "lastEncounterDate"
	KeyEntered           = "hasEntered"
)

// Store is a string key-value store. Get reports presence explicitly so a
// missing key never reads as an empty value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-memory store for tests and throwaway sessions.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: map[string]string{}}
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
