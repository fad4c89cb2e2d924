package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a root directory and serves them from
// {baseURL}/files/{path}.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSpace(baseURL)}, nil
}

// Root is the directory served under /files/.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	full, rel, err := s.pathFor(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.url(rel), nil
}

func (s *LocalStore) GetURL(_ context.Context, path string) (string, error) {
	full, rel, err := s.pathFor(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.url(rel), nil
}

func (s *LocalStore) url(rel string) string {
	return joinURL(s.baseURL, "files/"+rel)
}

func (s *LocalStore) pathFor(path string) (string, string, error) {
	if s == nil {
		return "", "", fmt.Errorf("store is nil")
	}
	rel, err := cleanPath(path)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), rel, nil
}
