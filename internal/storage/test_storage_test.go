package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUploadAndURL(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root, "http://localhost:8080/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Upload(ctx, "pages/com_1_p01_abc.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/pages/com_1_p01_abc.png", url)

	raw, err := os.ReadFile(filepath.Join(root, "pages", "com_1_p01_abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), raw)

	got, err := s.GetURL(ctx, "/pages/com_1_p01_abc.png")
	require.NoError(t, err)
	assert.Equal(t, url, got)

	_, err = s.GetURL(ctx, "pages/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsEscapes(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	for _, p := range []string{"", "  ", "../x.png", "pages/../../x.png"} {
		_, err := s.Upload(context.Background(), p, []byte("x"), "image/png")
		assert.Error(t, err, p)
	}
}

func TestNewLocalStoreRequiresRoot(t *testing.T) {
	_, err := NewLocalStore(" ", "")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("https://mem.test")
	ctx := context.Background()

	url, err := s.Upload(ctx, "pages/a.png", []byte("a"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://mem.test/pages/a.png", url)

	data, ct, err := s.Get("pages/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, 1, s.Len())

	_, err = s.GetURL(ctx, "pages/b.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", Bucket: "comics"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "comics"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/comics/pages/a.png", s.PublicURL("pages/a.png"))

	s, err = NewS3Store(S3Config{
		Endpoint: "storage.googleapis.com", AccessKey: "k", SecretKey: "s", Bucket: "comics",
		UseSSL: true, PublicBaseURL: "https://cdn.test/comics/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/comics/pages/a.png", s.PublicURL("/pages/a.png"))
}

// s3Server answers the bucket HEAD with the queued statuses, then 200.
func s3Server(t *testing.T, headStatuses ...int) (*httptest.Server, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	var heads, puts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			n := int(heads.Add(1))
			if n <= len(headStatuses) {
				w.WriteHeader(headStatuses[n-1])
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			puts.Add(1)
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &heads, &puts
}

func newTestS3Store(t *testing.T, srv *httptest.Server) *S3Store {
	t.Helper()
	s, err := NewS3Store(S3Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "k",
		SecretKey: "s",
		Bucket:    "comics",
	})
	require.NoError(t, err)
	return s
}

func TestS3StoreRetriesBucketCheckAfterFailure(t *testing.T) {
	srv, heads, puts := s3Server(t, http.StatusForbidden)
	s := newTestS3Store(t, srv)
	ctx := context.Background()

	_, err := s.Upload(ctx, "pages/a.png", []byte("png"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure bucket")
	assert.Equal(t, int32(0), puts.Load())

	url, err := s.Upload(ctx, "pages/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/comics/pages/a.png", url)
	assert.Equal(t, int32(2), heads.Load())

	_, err = s.Upload(ctx, "pages/b.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, int32(2), heads.Load(), "bucket is checked once after success")
	assert.Equal(t, int32(2), puts.Load())
}

func TestS3StoreBucketCheckIgnoresCallerCancel(t *testing.T) {
	srv, heads, _ := s3Server(t)
	s := newTestS3Store(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Upload(ctx, "pages/a.png", []byte("png"), "image/png")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "ensure bucket")

	_, err = s.Upload(context.Background(), "pages/a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, int32(1), heads.Load())
}
