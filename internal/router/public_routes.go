package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/handler"
)

// RegisterPublic registers the API-key read endpoints.  Authentication
// runs before admission control, so a caller with a bad key sees 401 and
// never consumes rate-limit budget.  The two endpoints carry independent
// limits (search is the heavier query).
func RegisterPublic(e *echo.Echo, h *handler.POIPublicHandler, apikey, searchLimit, detailLimit echo.MiddlewareFunc) {
	g := e.Group(APIPrefix+"/pois", apikey)
	g.GET("/search", h.Search, searchLimit)
	g.GET("/:id/public", h.GetPublic, detailLimit)
}
