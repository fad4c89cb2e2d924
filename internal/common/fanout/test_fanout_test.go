package fanout

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesInputOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3}
	// Later inputs finish first.
	out := Map(context.Background(), inputs, 0,
		func(_ context.Context, n int) (string, error) {
			time.Sleep(time.Duration(6-n) * 5 * time.Millisecond)
			return strconv.Itoa(n * 10), nil
		},
		func(int, error) string { return "fallback" },
	)
	assert.Equal(t, []string{"50", "10", "40", "20", "30"}, out)
}

func TestMapSubstitutesFallback(t *testing.T) {
	boom := errors.New("boom")
	var seen error
	out := Map(context.Background(), []string{"a", "bad", "c"}, 0,
		func(_ context.Context, s string) (string, error) {
			if s == "bad" {
				return "", boom
			}
			return s + "!", nil
		},
		func(s string, err error) string {
			seen = err
			return "degraded:" + s
		},
	)
	assert.Equal(t, []string{"a!", "degraded:bad", "c!"}, out)
	assert.ErrorIs(t, seen, boom)
}

func TestMapRespectsLimit(t *testing.T) {
	var inflight, peak atomic.Int32
	inputs := make([]int, 12)
	Map(context.Background(), inputs, 3,
		func(_ context.Context, _ int) (int, error) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			return 0, nil
		},
		func(int, error) int { return 0 },
	)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestMapEmpty(t *testing.T) {
	out := Map(context.Background(), nil, 0,
		func(context.Context, int) (int, error) { return 1, nil },
		func(int, error) int { return 0 },
	)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSettleKeepsErrors(t *testing.T) {
	boom := errors.New("boom")
	res := Settle(context.Background(), []int{1, 2}, 0,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, boom
			}
			return n, nil
		},
	)
	require.Len(t, res, 2)
	assert.NoError(t, res[0].Err)
	assert.Equal(t, 1, res[0].Value)
	assert.ErrorIs(t, res[1].Err, boom)
}
