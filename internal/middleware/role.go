package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/apperr"
)

// RequireRole returns middleware enforcing that the bound Principal holds
// one of the given roles.  This is authorization, not authentication: it
// assumes an auth middleware already ran, and a mismatch is a typed 403,
// distinct from any 401.  Roles come from the closed set in the model
// package, so the allow set is fixed at route registration.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok || !allowed[p.Role] {
				return apperr.Forbidden("AUTH_INSUFFICIENT_ROLE", "access denied: insufficient role")
			}
			return next(c)
		}
	}
}
