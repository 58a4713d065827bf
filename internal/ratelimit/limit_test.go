package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in     string
		count  int
		window time.Duration
	}{
		{"10/minute", 10, time.Minute},
		{"20/minute", 20, time.Minute},
		{"1/second", 1, time.Second},
		{"100/hour", 100, time.Hour},
		{"5/day", 5, 24 * time.Hour},
		{" 10 / minute ", 10, time.Minute},
	}
	for _, tc := range cases {
		l, err := ParseLimit(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, l.Count, tc.in)
		assert.Equal(t, tc.window, l.Window, tc.in)
	}

	for _, bad := range []string{"", "10", "/minute", "0/minute", "-1/minute", "x/minute", "10/fortnight"} {
		_, err := ParseLimit(bad)
		assert.Error(t, err, bad)
	}
}

func TestLimiterAdmitsUpToCount(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), "rl")
	limit := Limit{Count: 10, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		d, err := l.Allow(ctx, "key-a", limit)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, int64(10-(i+1)), d.Remaining)
	}

	// The 11th request inside the same window is denied.
	d, err := l.Allow(ctx, "key-a", limit)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(0), d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	// A different key has its own counter.
	d, err = l.Allow(ctx, "key-b", limit)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiterWindowReset(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), "rl")
	limit := Limit{Count: 2, Window: 50 * time.Millisecond}
	ctx := context.Background()

	// Align to the start of a fresh window so the burst below cannot
	// straddle a boundary.
	wait := limit.Window - time.Duration(time.Now().UnixNano()%int64(limit.Window))
	time.Sleep(wait + time.Millisecond)

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "key", limit)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := l.Allow(ctx, "key", limit)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	time.Sleep(60 * time.Millisecond)

	d, err = l.Allow(ctx, "key", limit)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "new window should admit again")
}

func TestLimiterConcurrentExactAdmission(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), "rl")
	limit := Limit{Count: 10, Window: time.Minute}
	ctx := context.Background()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "shared", limit)
			if err == nil && d.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), admitted.Load())
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n, err := s.Incr(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Incr(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	time.Sleep(25 * time.Millisecond)

	n, err = s.Incr(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "expired entry restarts at one")
}
