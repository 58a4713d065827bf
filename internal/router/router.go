package router // package router defines how HTTP routes are registered for the API

// Authorization is declared here, per route group, rather than inside
// handlers: bearer routes carry the bearer middleware, admin routes add
// the admin role gate, and public routes carry API-key auth plus their
// rate limit.  The full route-by-role table:
//
//	POST   /api/v1/auth/register      – open
//	POST   /api/v1/auth/login         – open
//	GET    /api/v1/auth/me            – bearer (any role)
//	GET    /api/v1/auth/apikey        – bearer (any role)
//	POST   /api/v1/auth/apikey        – bearer (any role)
//	DELETE /api/v1/auth/apikey/:key   – bearer (any role)
//	POST   /api/v1/pois               – bearer + admin
//	PUT    /api/v1/pois/:id           – bearer + admin
//	DELETE /api/v1/pois/:id           – bearer + admin
//	GET    /api/v1/pois/search        – API key, rate limited
//	GET    /api/v1/pois/:id/public    – API key, rate limited

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/handler"
)

// APIPrefix is the common prefix for all versioned routes.
const APIPrefix = "/api/v1"

// RegisterRoutes registers routes that require no authentication at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
