package middleware // middleware provides reusable request processing for handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/repository"
)

// UserFinder resolves a token subject to a stored user.  Implemented by
// *repository.UserRepo; declared here so tests can stub the lookup.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenParser validates a raw bearer token and returns the subject user
// ID.  The concrete implementation wraps utils.ParseAccessToken bound to
// the configured secret.
type TokenParser func(raw string) (subject uint64, err error)

// BearerAuth returns middleware that authenticates the Authorization
// header and binds a bearer Principal.  Failure modes are discrete and
// typed: a missing header, a malformed scheme, an unusable token and an
// unknown subject each surface their own error code, all as 401.
func BearerAuth(parse TokenParser, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" {
				return apperr.Unauthorized("AUTH_TOKEN_MISSING", "token is missing")
			}
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return apperr.Unauthorized("AUTH_INVALID_HEADER", "bearer token malformed")
			}

			sub, err := parse(strings.TrimSpace(raw))
			if err != nil {
				// Expired, forged and undecodable tokens are
				// distinguishable to callers of the codec but collapse to
				// one authentication failure at the HTTP surface.
				return apperr.Unauthorized("AUTH_TOKEN_INVALID", "token is invalid or expired")
			}

			u, err := users.GetByID(c.Request().Context(), sub)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperr.Unauthorized("AUTH_USER_NOT_FOUND", "user not found or token invalid")
				}
				return apperr.Internal(err)
			}

			// The stored role is authoritative; the token's role claim is
			// informational for clients only.
			setPrincipal(c, &Principal{User: u, Role: u.RoleName})
			return next(c)
		}
	}
}

// apiKeyHeader is the dedicated header carrying public API keys.
const apiKeyHeader = "X-API-KEY"

// KeyFinder resolves an active API key value to the key and its owner.
// Implemented by *repository.APIKeyRepo.
type KeyFinder interface {
	GetActiveByValue(ctx context.Context, keyValue string) (model.APIKey, model.User, error)
}

// APIKeyAuth returns middleware that authenticates the X-API-KEY header
// and binds an API-key Principal.  The key value is kept on the principal
// so the rate limiter downstream can count per key.  Inactive and unknown
// keys are indistinguishable to the caller.
func APIKeyAuth(keys KeyFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value := c.Request().Header.Get(apiKeyHeader)
			if value == "" {
				return apperr.Unauthorized("AUTH_APIKEY_MISSING", "API key is missing in X-API-KEY header")
			}
			key, u, err := keys.GetActiveByValue(c.Request().Context(), value)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperr.Unauthorized("AUTH_APIKEY_INVALID", "invalid or inactive API key")
				}
				return apperr.Internal(err)
			}
			setPrincipal(c, &Principal{User: u, Role: u.RoleName, APIKey: key.Key})
			return next(c)
		}
	}
}
