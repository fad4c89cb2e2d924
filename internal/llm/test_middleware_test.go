package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

// scriptedClient returns errs in order, then ok.
type scriptedClient struct {
	mu    sync.Mutex
	errs  []error
	calls int
	order *[]string
	tag   string
}

func (s *scriptedClient) Name() string { return "scripted" }
func (s *scriptedClient) Close() error { return nil }
func (s *scriptedClient) GenerateJSON(context.Context, StructuredRequest) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.order != nil {
		*s.order = append(*s.order, s.tag)
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return json.RawMessage(`{"ok":true}`), nil
}
func (s *scriptedClient) StartImageSession(context.Context) (ImageSession, error) {
	return &fakeImageSession{}, nil
}

func tagging(tag string, order *[]string) Middleware {
	return func(next Client) Client {
		return &tagged{Client: next, tag: tag, order: order}
	}
}

type tagged struct {
	Client
	tag   string
	order *[]string
}

func (t *tagged) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	*t.order = append(*t.order, t.tag)
	return t.Client.GenerateJSON(ctx, req)
}

func TestWrapAppliesLeftToRight(t *testing.T) {
	var order []string
	inner := &scriptedClient{order: &order, tag: "inner"}
	cli := Wrap(inner, tagging("A", &order), tagging("B", &order))
	_, err := cli.GenerateJSON(context.Background(), StructuredRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "inner"}, order)
}

func TestRetryMiddlewareRetriesTransient(t *testing.T) {
	inner := &scriptedClient{errs: []error{genai.APIError{Code: http.StatusServiceUnavailable}}}
	cli := Wrap(inner, Retry(Policy{MaxAttempts: 3, Backoff: noWait}))
	raw, err := cli.GenerateJSON(context.Background(), StructuredRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, 2, inner.calls)
}

func TestRateLimitSpacesCalls(t *testing.T) {
	inner := &scriptedClient{}
	// 120 rpm = one token every 500ms, burst 1.
	cli := Wrap(inner, RateLimit(120, 1))
	ctx := context.Background()
	start := time.Now()
	_, err := cli.GenerateJSON(ctx, StructuredRequest{})
	require.NoError(t, err)
	_, err = cli.GenerateJSON(ctx, StructuredRequest{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestRateLimitDisabled(t *testing.T) {
	inner := &scriptedClient{}
	assert.Same(t, Client(inner), RateLimit(0, 0)(inner))
}

func TestRateLimitCoversImageTurns(t *testing.T) {
	cli := Wrap(&scriptedClient{}, RateLimit(60, 1))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s, err := cli.StartImageSession(ctx)
	require.NoError(t, err)
	_, err = s.Send(ctx, "page 1")
	require.NoError(t, err)
	// The second turn would wait ~1s for a token; the deadline wins.
	_, err = s.Send(ctx, "page 2")
	assert.Error(t, err)
}
