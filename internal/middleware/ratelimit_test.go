package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/ratelimit"
)

// callLimited runs one request with the given API key through the APIKeyAuth
// and RateLimit chain and reports the outcome.
func callLimited(t *testing.T, keys stubKeys, apiKey string, mw echo.MiddlewareFunc) (error, http.Header) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiKeyHeader, apiKey)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	h = mw(h)
	h = APIKeyAuth(keys)(h)
	return h(c), rec.Header()
}

func TestRateLimitDeniesEleventhCall(t *testing.T) {
	keys := stubKeys{"key-1": {ID: 1, Username: "alice", RoleName: model.RolePublicUser}}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "rl")
	mw := RateLimit(limiter, ratelimit.Limit{Count: 10, Window: time.Minute})

	for i := 0; i < 10; i++ {
		err, hdr := callLimited(t, keys, "key-1", mw)
		require.NoError(t, err, "call %d", i+1)
		assert.Equal(t, "10", hdr.Get("X-RateLimit-Limit"))
	}

	err, hdr := callLimited(t, keys, "key-1", mw)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusTooManyRequests, ae.Status)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", ae.Code)
	assert.Equal(t, "0", hdr.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, hdr.Get("Retry-After"))
}

func TestRateLimitCountsPerKey(t *testing.T) {
	keys := stubKeys{
		"key-1": {ID: 1, Username: "alice", RoleName: model.RolePublicUser},
		"key-2": {ID: 2, Username: "bob", RoleName: model.RolePublicUser},
	}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "rl")
	mw := RateLimit(limiter, ratelimit.Limit{Count: 1, Window: time.Minute})

	err, _ := callLimited(t, keys, "key-1", mw)
	require.NoError(t, err)
	err, _ = callLimited(t, keys, "key-1", mw)
	require.Error(t, err)

	// Exhausting key-1 must not touch key-2's budget.
	err, _ = callLimited(t, keys, "key-2", mw)
	assert.NoError(t, err)
}

func TestRateLimitInvalidKeyIs401Not429(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), "rl")
	mw := RateLimit(limiter, ratelimit.Limit{Count: 1, Window: time.Minute})

	// Auth runs first, so a bad key never reaches admission control.
	err, _ := callLimited(t, stubKeys{}, "unknown", mw)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "AUTH_APIKEY_INVALID", ae.Code)
}

type brokenStore struct{}

func (brokenStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("counter backend down")
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	keys := stubKeys{"key-1": {ID: 1, Username: "alice", RoleName: model.RolePublicUser}}
	limiter := ratelimit.NewLimiter(brokenStore{}, "rl")
	mw := RateLimit(limiter, ratelimit.Limit{Count: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		err, _ := callLimited(t, keys, "key-1", mw)
		assert.NoError(t, err)
	}
}

func TestRateLimitNilLimiterIsNoOp(t *testing.T) {
	keys := stubKeys{"key-1": {ID: 1, Username: "alice", RoleName: model.RolePublicUser}}
	mw := RateLimit(nil, ratelimit.Limit{Count: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		err, _ := callLimited(t, keys, "key-1", mw)
		assert.NoError(t, err)
	}
}

func TestRateKeyFallsBackToAddress(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "ip:203.0.113.9", rateKey(c))

	setPrincipal(c, &Principal{APIKey: "key-9"})
	assert.Equal(t, "key-9", rateKey(c))
}
