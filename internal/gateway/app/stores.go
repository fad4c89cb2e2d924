package app

import (
	"fmt"
	"log/slog"
	"strings"

	"vulncomics/internal/comicindex"
	"vulncomics/internal/gateway/config"
	"vulncomics/internal/storage"
)

type gatewayStores struct {
	pages storage.Backend
	// filesDir is served under /files/ when pages live on local disk.
	filesDir string
	index    comicindex.Store
	closers  []func() error
}

func initStores(cfg *config.Config, logger *slog.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}

	switch cfg.Storage.Mode {
	case "s3":
		s3Cfg := storage.S3Config{
			Endpoint:      cfg.Storage.S3.Endpoint,
			Region:        cfg.Storage.S3.Region,
			AccessKey:     cfg.Storage.S3.AccessKey,
			SecretKey:     cfg.Storage.S3.SecretKey,
			Bucket:        cfg.Storage.S3.Bucket,
			UseSSL:        cfg.Storage.S3.UseSSL,
			PublicBaseURL: cfg.Storage.S3.PublicBaseURL,
		}
		s3Store, err := storage.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize page s3 store: %w", err)
		}
		logger.Info("page_store_selected", "mode", "s3", "bucket", s3Cfg.Bucket, "endpoint", s3Cfg.Endpoint)
		stores.pages = s3Store
	default:
		local, err := storage.NewLocalStore(cfg.Storage.LocalPath, cfg.BackendURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local page store: %w", err)
		}
		logger.Info("page_store_selected", "mode", "local", "path", local.Root())
		stores.pages = local
		stores.filesDir = local.Root()
	}

	index, closer, err := chooseComicIndex(cfg, logger)
	if err != nil {
		return nil, err
	}
	stores.index = index
	if closer != nil {
		stores.closers = append(stores.closers, closer)
	}
	return stores, nil
}

// chooseComicIndex prefers Postgres behind a read-through cache and falls
// back to the in-process LRU.
func chooseComicIndex(cfg *config.Config, logger *slog.Logger) (comicindex.Store, func() error, error) {
	if dsn := strings.TrimSpace(cfg.Index.PostgresDSN); dsn != "" {
		pg, err := comicindex.OpenPostgresStore(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open comic index db: %w", err)
		}
		logger.Info("comic_index_selected", "backend", "postgres")
		cached := comicindex.NewCachedStore(pg, comicindex.CacheConfig{
			TTL:        cfg.Index.TTL,
			MaxEntries: cfg.Index.MaxEntries,
		})
		return cached, pg.Close, nil
	}
	logger.Info("comic_index_selected", "backend", "memory", "max_entries", cfg.Index.MaxEntries, "ttl", cfg.Index.TTL)
	return comicindex.NewMemoryStore(cfg.Index.MaxEntries, cfg.Index.TTL), nil, nil
}

func (s *gatewayStores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
