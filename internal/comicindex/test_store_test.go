package comicindex

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulncomics/internal/types"
)

type fakeOriginStore struct {
	mu       sync.Mutex
	data     map[string]types.Comic
	getCalls int
	putCalls int
	failPut  bool
	failGet  bool
}

func newFakeOriginStore() *fakeOriginStore {
	return &fakeOriginStore{data: map[string]types.Comic{}}
}

func (s *fakeOriginStore) Put(_ context.Context, c types.Comic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPut {
		return fmt.Errorf("put failed")
	}
	s.data[c.Hash] = c
	return nil
}

func (s *fakeOriginStore) Get(_ context.Context, hash string) (types.Comic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.failGet {
		return types.Comic{}, fmt.Errorf("get failed")
	}
	c, ok := s.data[hash]
	if !ok {
		return types.Comic{}, ErrNotFound
	}
	return c, nil
}

func sampleComic(hash string) types.Comic {
	return types.Comic{
		Hash:      hash,
		Title:     "The Heist",
		Archetype: types.ArchetypeHeist,
		PageCount: 1,
		Pages:     []types.GeneratedPage{{PageNumber: 1, ImageURL: "https://cdn.test/p1.png"}},
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(8, time.Minute)
	ctx := context.Background()

	_, err := s.Get(ctx, "com_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, sampleComic("com_1")))
	got, err := s.Get(ctx, "com_1")
	require.NoError(t, err)
	assert.Equal(t, "The Heist", got.Title)

	got.Pages[0].ImageURL = "mutated"
	again, err := s.Get(ctx, "com_1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/p1.png", again.Pages[0].ImageURL)

	assert.Error(t, s.Put(ctx, types.Comic{}))
	_, err = s.Get(ctx, " ")
	assert.Error(t, err)
}

func TestMemoryStoreEvictsBySize(t *testing.T) {
	s := NewMemoryStore(2, time.Minute)
	ctx := context.Background()
	for _, h := range []string{"com_1", "com_2", "com_3"} {
		require.NoError(t, s.Put(ctx, sampleComic(h)))
	}
	assert.Equal(t, 2, s.Len())
	_, err := s.Get(ctx, "com_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpires(t *testing.T) {
	s := NewMemoryStore(8, 20*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, sampleComic("com_1")))
	require.Eventually(t, func() bool {
		_, err := s.Get(ctx, "com_1")
		return err == ErrNotFound
	}, time.Second, 10*time.Millisecond)
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	origin := newFakeOriginStore()
	origin.data["com_1"] = sampleComic("com_1")
	store := NewCachedStore(origin, CacheConfig{TTL: time.Minute, MaxEntries: 8})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := store.Get(ctx, "com_1")
		require.NoError(t, err)
		assert.Equal(t, "com_1", got.Hash)
	}
	assert.Equal(t, 1, origin.getCalls)

	m := store.Metrics()
	assert.Equal(t, uint64(2), m.Hits)
	assert.Equal(t, uint64(1), m.Misses)
	assert.Equal(t, uint64(1), m.OriginReads)
}

func TestCachedStoreWriteThrough(t *testing.T) {
	origin := newFakeOriginStore()
	store := NewCachedStore(origin, DefaultCacheConfig())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleComic("com_2")))
	_, err := store.Get(ctx, "com_2")
	require.NoError(t, err)
	assert.Equal(t, 1, origin.putCalls)
	assert.Equal(t, 0, origin.getCalls)

	origin.failPut = true
	assert.Error(t, store.Put(ctx, sampleComic("com_3")))
	assert.Equal(t, uint64(1), store.Metrics().OriginWriteErr)
	_, err = store.Get(ctx, "com_3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedStoreOriginErrors(t *testing.T) {
	origin := newFakeOriginStore()
	origin.failGet = true
	store := NewCachedStore(origin, DefaultCacheConfig())
	_, err := store.Get(context.Background(), "com_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, uint64(1), store.Metrics().OriginReadErr)
}

// Runs against a live database when COMIC_INDEX_TEST_DSN is set.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("COMIC_INDEX_TEST_DSN")
	if dsn == "" {
		t.Skip("COMIC_INDEX_TEST_DSN not set")
	}
	s, err := OpenPostgresStore(dsn)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	c := sampleComic(fmt.Sprintf("com_test_%d", time.Now().UnixNano()))
	c.GeneratedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, s.Put(ctx, c))
	got, err := s.Get(ctx, c.Hash)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.True(t, c.GeneratedAt.Equal(got.GeneratedAt))

	_, err = s.Get(ctx, "com_absent_row")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenPostgresStoreRequiresDSN(t *testing.T) {
	_, err := OpenPostgresStore("  ")
	assert.Error(t, err)
}

// flakyDB is a database/sql connector whose first failExecs statements fail.
type flakyDB struct {
	mu        sync.Mutex
	failExecs int
	execs     []string
}

func (d *flakyDB) Connect(context.Context) (driver.Conn, error) { return &flakyConn{db: d}, nil }
func (d *flakyDB) Driver() driver.Driver                        { return flakyDriver{db: d} }

func (d *flakyDB) count(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, q := range d.execs {
		if strings.HasPrefix(strings.TrimSpace(q), prefix) {
			n++
		}
	}
	return n
}

type flakyDriver struct{ db *flakyDB }

func (d flakyDriver) Open(string) (driver.Conn, error) { return &flakyConn{db: d.db}, nil }

type flakyConn struct{ db *flakyDB }

func (c *flakyConn) Prepare(q string) (driver.Stmt, error) { return &flakyStmt{db: c.db, query: q}, nil }
func (c *flakyConn) Close() error                          { return nil }
func (c *flakyConn) Begin() (driver.Tx, error)             { return nil, errors.New("transactions unsupported") }

type flakyStmt struct {
	db    *flakyDB
	query string
}

func (s *flakyStmt) Close() error  { return nil }
func (s *flakyStmt) NumInput() int { return -1 }

func (s *flakyStmt) Exec([]driver.Value) (driver.Result, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.execs = append(s.db.execs, s.query)
	if s.db.failExecs > 0 {
		s.db.failExecs--
		return nil, errors.New("connection refused")
	}
	return driver.RowsAffected(1), nil
}

func (s *flakyStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("queries unsupported")
}

func TestPostgresStoreRetriesSchemaAfterFailure(t *testing.T) {
	fdb := &flakyDB{failExecs: 1}
	db := sql.OpenDB(fdb)
	defer db.Close()
	s := NewPostgresStore(db)
	ctx := context.Background()

	err := s.Put(ctx, sampleComic("com_a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure schema")

	require.NoError(t, s.Put(ctx, sampleComic("com_a")))
	require.NoError(t, s.Put(ctx, sampleComic("com_b")))
	assert.Equal(t, 2, fdb.count("CREATE TABLE"))
	assert.Equal(t, 2, fdb.count("INSERT"))
}

func TestPostgresStoreSchemaIgnoresCallerCancel(t *testing.T) {
	fdb := &flakyDB{}
	db := sql.OpenDB(fdb)
	defer db.Close()
	s := NewPostgresStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.ensureSchema(ctx))
	require.NoError(t, s.ensureSchema(context.Background()))
	assert.Equal(t, 1, fdb.count("CREATE TABLE"))
}
