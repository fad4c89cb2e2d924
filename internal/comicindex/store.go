// Package comicindex maps comic hashes to generated comics for later lookup.
package comicindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vulncomics/internal/types"
)

type Store interface {
	Put(ctx context.Context, comic types.Comic) error
	Get(ctx context.Context, hash string) (types.Comic, error)
}

var ErrNotFound = errors.New("comic not found")

func normalizeHash(hash string) (string, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", fmt.Errorf("comic hash is required")
	}
	return hash, nil
}

func cloneComic(c types.Comic) types.Comic {
	c.Pages = append([]types.GeneratedPage(nil), c.Pages...)
	return c
}
