// Package storage persists rendered page images and hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend stores an object under path and returns its public URL.
type Backend interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	GetURL(ctx context.Context, path string) (string, error)
}

var ErrNotFound = errors.New("object not found")

// cleanPath rejects empty, absolute and parent-relative object paths.
func cleanPath(path string) (string, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if strings.Contains(path, "..") || filepath.IsAbs(path) {
		return "", fmt.Errorf("invalid path: %s", path)
	}
	return path, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + path
}
