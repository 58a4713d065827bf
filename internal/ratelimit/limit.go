// Package ratelimit implements fixed-window request admission keyed per
// principal.  A Limit is expressed as "<count>/<window>" (e.g. "10/minute");
// counters live in a pluggable Store so single-process deployments can use
// process memory while multi-process ones share a Redis counter.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Limit is an admission rate: at most Count requests per Window.
type Limit struct {
	Count  int
	Window time.Duration
}

func (l Limit) String() string {
	return fmt.Sprintf("%d/%s", l.Count, l.Window)
}

// ParseLimit parses the "<count>/<window>" notation.  Recognized windows
// are second, minute, hour and day.
func ParseLimit(s string) (Limit, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return Limit{}, fmt.Errorf("rate limit %q: want <count>/<window>", s)
	}
	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count < 1 {
		return Limit{}, fmt.Errorf("rate limit %q: bad count", s)
	}
	var window time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "second":
		window = time.Second
	case "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return Limit{}, fmt.Errorf("rate limit %q: unknown window", s)
	}
	return Limit{Count: count, Window: window}, nil
}

// MustParseLimit is ParseLimit for configuration defaults known to be valid.
func MustParseLimit(s string) Limit {
	l, err := ParseLimit(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Store counts requests per key within fixed windows.  Incr registers one
// request against the window containing now and returns the number of
// requests seen in that window so far, including this one.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int64         // requests left in the current window
	RetryAfter time.Duration // how long until the window resets (when denied)
}

// Limiter applies Limits against a Store.  Prefix namespaces the keys so
// several limiters can share one backend.
type Limiter struct {
	store  Store
	prefix string
}

func NewLimiter(store Store, prefix string) *Limiter {
	return &Limiter{store: store, prefix: prefix}
}

// Allow admits or denies one request for the given key under the limit.
func (l *Limiter) Allow(ctx context.Context, key string, limit Limit) (Decision, error) {
	now := time.Now()
	storeKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, now.UnixNano()/int64(limit.Window))
	n, err := l.store.Incr(ctx, storeKey, limit.Window)
	if err != nil {
		return Decision{}, err
	}
	remaining := int64(limit.Count) - n
	if remaining < 0 {
		remaining = 0
	}
	if n > int64(limit.Count) {
		reset := limit.Window - time.Duration(now.UnixNano()%int64(limit.Window))
		return Decision{Allowed: false, Remaining: 0, RetryAfter: reset}, nil
	}
	return Decision{Allowed: true, Remaining: remaining}, nil
}
