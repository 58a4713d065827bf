package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/repository"
)

type stubUsers map[uint64]model.User

func (s stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type stubKeys map[string]model.User

func (s stubKeys) GetActiveByValue(_ context.Context, value string) (model.APIKey, model.User, error) {
	u, ok := s[value]
	if !ok {
		return model.APIKey{}, model.User{}, repository.ErrNotFound
	}
	return model.APIKey{Key: value, UserID: u.ID, IsActive: true}, u, nil
}

func okParser(subject uint64) TokenParser {
	return func(string) (uint64, error) { return subject, nil }
}

func failParser() TokenParser {
	return func(string) (uint64, error) { return 0, errors.New("bad token") }
}

// run sends a request through the middleware chain into a handler that
// records whether it was reached and what principal was bound.
func run(t *testing.T, req *http.Request, mws ...echo.MiddlewareFunc) (error, *Principal, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	var bound *Principal
	h := func(c echo.Context) error {
		reached = true
		bound, _ = CurrentPrincipal(c)
		return c.String(http.StatusOK, "ok")
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h(c), bound, reached
}

func appErrCode(t *testing.T, err error) (string, int) {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	return ae.Code, ae.Status
}

func TestBearerAuthMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err, _, reached := run(t, req, BearerAuth(okParser(1), stubUsers{}))

	code, status := appErrCode(t, err)
	assert.Equal(t, "AUTH_TOKEN_MISSING", code)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, reached)
}

func TestBearerAuthMalformedHeader(t *testing.T) {
	for _, header := range []string{"Basic abc", "Bearer", "Bearer ", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		err, _, _ := run(t, req, BearerAuth(okParser(1), stubUsers{}))

		code, status := appErrCode(t, err)
		assert.Equal(t, "AUTH_INVALID_HEADER", code, "header %q", header)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
}

func TestBearerAuthInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer broken")
	err, _, _ := run(t, req, BearerAuth(failParser(), stubUsers{}))

	code, _ := appErrCode(t, err)
	assert.Equal(t, "AUTH_TOKEN_INVALID", code)
}

func TestBearerAuthUnknownSubject(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer whatever")
	err, _, _ := run(t, req, BearerAuth(okParser(99), stubUsers{}))

	code, status := appErrCode(t, err)
	assert.Equal(t, "AUTH_USER_NOT_FOUND", code)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBearerAuthBindsPrincipal(t *testing.T) {
	users := stubUsers{7: {ID: 7, Username: "alice", RoleName: model.RolePublicUser}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	err, p, reached := run(t, req, BearerAuth(okParser(7), users))

	require.NoError(t, err)
	require.True(t, reached)
	require.NotNil(t, p)
	assert.Equal(t, uint64(7), p.User.ID)
	assert.Equal(t, model.RolePublicUser, p.Role)
	assert.Empty(t, p.APIKey)
}

func TestAPIKeyAuthMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err, _, _ := run(t, req, APIKeyAuth(stubKeys{}))

	code, status := appErrCode(t, err)
	assert.Equal(t, "AUTH_APIKEY_MISSING", code)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPIKeyAuthUnknownKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiKeyHeader, "nope")
	err, _, _ := run(t, req, APIKeyAuth(stubKeys{}))

	code, _ := appErrCode(t, err)
	assert.Equal(t, "AUTH_APIKEY_INVALID", code)
}

func TestAPIKeyAuthBindsPrincipalWithKey(t *testing.T) {
	keys := stubKeys{"k-123": {ID: 3, Username: "bob", RoleName: model.RolePublicUser}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiKeyHeader, "k-123")
	err, p, _ := run(t, req, APIKeyAuth(keys))

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "k-123", p.APIKey)
	assert.Equal(t, uint64(3), p.User.ID)
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err, _, reached := run(t, req, RequireRole(model.RoleAdmin))

	code, status := appErrCode(t, err)
	assert.Equal(t, "AUTH_INSUFFICIENT_ROLE", code)
	assert.Equal(t, http.StatusForbidden, status)
	assert.False(t, reached)
}

func TestRequireRoleDeniesWrongRole(t *testing.T) {
	users := stubUsers{7: {ID: 7, Username: "alice", RoleName: model.RolePublicUser}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	err, _, _ := run(t, req, BearerAuth(okParser(7), users), RequireRole(model.RoleAdmin))

	code, status := appErrCode(t, err)
	assert.Equal(t, "AUTH_INSUFFICIENT_ROLE", code)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "root", RoleName: model.RoleAdmin}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	err, _, reached := run(t, req, BearerAuth(okParser(1), users), RequireRole(model.RoleAdmin))

	require.NoError(t, err)
	assert.True(t, reached)
}
