package storage

import (
	"context"
	"fmt"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process; URLs are {baseURL}/{path}.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Upload(_ context.Context, path string, data []byte, contentType string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	key, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return joinURL(s.baseURL, key), nil
}

func (s *MemoryStore) GetURL(_ context.Context, path string) (string, error) {
	key, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", ErrNotFound
	}
	return joinURL(s.baseURL, key), nil
}

// Get returns a copy of the stored bytes and content type.
func (s *MemoryStore) Get(path string) ([]byte, string, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
