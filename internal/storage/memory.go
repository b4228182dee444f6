package storage

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu      sync.RWMutex
	browser map[string]map[string]string
}

// NewMemory builds an in-process backend. Contents are lost on restart.
func NewMemory() Backend {
	return &memoryBackend{browser: make(map[string]map[string]string)}
}

func (b *memoryBackend) Scope(browserID string) Storage {
	return &memoryScope{backend: b, id: browserID}
}

func (b *memoryBackend) Ping(context.Context) error { return nil }

type memoryScope struct {
	backend *memoryBackend
	id      string
}

func (s *memoryScope) Get(_ context.Context, key string) (string, bool, error) {
	if s.id == "" {
		return "", false, ErrEmptyBrowserID
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	value, ok := s.backend.browser[s.id][key]
	return value, ok, nil
}

func (s *memoryScope) Set(_ context.Context, key, value string) error {
	if s.id == "" {
		return ErrEmptyBrowserID
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	values, ok := s.backend.browser[s.id]
	if !ok {
		values = make(map[string]string)
		s.backend.browser[s.id] = values
	}
	values[key] = value
	return nil
}

func (s *memoryScope) Remove(_ context.Context, keys ...string) error {
	if s.id == "" {
		return ErrEmptyBrowserID
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	values, ok := s.backend.browser[s.id]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(values, key)
	}
	if len(values) == 0 {
		delete(s.backend.browser, s.id)
	}
	return nil
}
