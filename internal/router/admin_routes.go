package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/handler"
	"github.com/openpoi/poi-directory/internal/middleware"
	"github.com/openpoi/poi-directory/internal/model"
)

// RegisterAdmin registers the POI mutation endpoints.  All routes require
// a valid bearer token and the admin role; middlewares are attached at
// group construction time for clarity.
func RegisterAdmin(e *echo.Echo, h *handler.POIAdminHandler, bearer echo.MiddlewareFunc) {
	g := e.Group(
		APIPrefix+"/pois",
		bearer,
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
