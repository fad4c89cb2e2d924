package comicindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"vulncomics/internal/types"
)

// PostgresStore persists the index as one JSONB row per comic.
type PostgresStore struct {
	db *sql.DB

	schemaMu    sync.Mutex
	schemaReady bool
}

const schemaTimeout = 10 * time.Second

func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaReady {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), schemaTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS comics (
  comic_hash TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  payload JSONB NOT NULL,
  generated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_comics_generated_at ON comics (generated_at);
`); err != nil {
		return err
	}
	s.schemaReady = true
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, c types.Comic) error {
	hash, err := normalizeHash(c.Hash)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal comic: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO comics (comic_hash, title, payload, generated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (comic_hash)
DO UPDATE SET title=EXCLUDED.title,
  payload=EXCLUDED.payload,
  generated_at=EXCLUDED.generated_at`,
		hash, c.Title, payload, c.GeneratedAt)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, hash string) (types.Comic, error) {
	hash, err := normalizeHash(hash)
	if err != nil {
		return types.Comic{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return types.Comic{}, fmt.Errorf("ensure schema: %w", err)
	}
	var payload []byte
	err = s.db.QueryRowContext(ctx, `SELECT payload FROM comics WHERE comic_hash = $1`, hash).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Comic{}, ErrNotFound
	}
	if err != nil {
		return types.Comic{}, err
	}
	var c types.Comic
	if err := json.Unmarshal(payload, &c); err != nil {
		return types.Comic{}, fmt.Errorf("decode comic %s: %w", hash, err)
	}
	return c, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
