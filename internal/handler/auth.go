package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
	"github.com/openpoi/poi-directory/internal/config"
	"github.com/openpoi/poi-directory/internal/middleware"
	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/repository"
	"github.com/openpoi/poi-directory/internal/utils"
)

// dbTimeout bounds every store round-trip from a handler.  The derived
// context still carries the request's cancellation, so an aborted request
// aborts its queries too.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for registration, login and profile
// endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Roles: r}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account with the public_user role and returns a
// token immediately, so registration doubles as a first login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("VALIDATION_ERROR", "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperr.BadRequest("VALIDATION_ERROR", "username, email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.GetByName(ctx, model.RolePublicUser)
	if err != nil {
		return apperr.Internal(err)
	}

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, role.ID, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("AUTH_USER_EXISTS", "username or email already registered")
		}
		return apperr.Internal(err)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return apperr.Internal(err)
	}
	return h.respondWithToken(c, http.StatusCreated, "user registered", u)
}

// Login verifies credentials and issues a fresh token.  Unknown email and
// wrong password are deliberately the same failure.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("VALIDATION_ERROR", "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperr.BadRequest("VALIDATION_ERROR", "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Unauthorized("AUTH_INVALID_CREDENTIALS", "wrong email or password")
		}
		return apperr.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.Unauthorized("AUTH_INVALID_CREDENTIALS", "wrong email or password")
	}
	return h.respondWithToken(c, http.StatusOK, "login successful", u)
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperr.Unauthorized("AUTH_TOKEN_MISSING", "token is missing")
	}
	return success(c, http.StatusOK, "", echo.Map{"user": userPayload(p.User)})
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, message string, u model.User) error {
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.RoleName, h.Cfg.TokenTTLDays)
	if err != nil {
		return apperr.Internal(err)
	}
	return success(c, status, message, echo.Map{
		"token": tok.Token,
		"user":  userPayload(u),
	})
}
