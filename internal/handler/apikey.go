package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/middleware"
	"github.com/openpoi/poi-directory/internal/repository"
)

// APIKeyHandler manages a user's own API keys.  Every route here runs
// behind bearer authentication; the principal is the key owner.
type APIKeyHandler struct {
	Keys *repository.APIKeyRepo
}

func NewAPIKeyHandler(k *repository.APIKeyRepo) *APIKeyHandler {
	return &APIKeyHandler{Keys: k}
}

// List returns all keys belonging to the caller.
func (h *APIKeyHandler) List(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	keys, err := h.Keys.ListByUser(ctx, p.User.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	return success(c, http.StatusOK, "", echo.Map{"api_keys": keys})
}

// Create issues a new key for the caller, rejecting the request once the
// active-key cap is reached.  The full key list is returned so clients
// can render it without a second round-trip.
func (h *APIKeyHandler) Create(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Keys.Create(ctx, p.User.ID); err != nil {
		if errors.Is(err, repository.ErrKeyLimitReached) {
			return apperr.Conflict("APIKEY_LIMIT_REACHED", "API key limit reached (max 3 active)")
		}
		return apperr.Internal(err)
	}

	keys, err := h.Keys.ListByUser(ctx, p.User.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	return success(c, http.StatusCreated, "API key created", echo.Map{"api_keys": keys})
}

// Delete revokes one of the caller's keys by value.  A key that does not
// exist and a key owned by someone else are the same 404, so the endpoint
// never confirms the existence of other users' keys.
func (h *APIKeyHandler) Delete(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)
	value := c.Param("key")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Keys.DeleteOwned(ctx, value, p.User.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("APIKEY_NOT_FOUND_OR_FORBIDDEN", "API key not found or not owned by you")
		}
		return apperr.Internal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
