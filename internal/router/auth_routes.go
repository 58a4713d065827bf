package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/handler"
)

// RegisterAuth registers registration/login plus the bearer-protected
// profile and API-key management endpoints.  bearer is the configured
// bearer-auth middleware; register/login stay outside it.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, k *handler.APIKeyHandler, bearer echo.MiddlewareFunc) {
	open := e.Group(APIPrefix + "/auth")
	open.POST("/register", a.Register)
	open.POST("/login", a.Login)

	// Any authenticated role may manage its own keys; admins need keys
	// like everyone else if they want to call the public endpoints.
	auth := e.Group(APIPrefix+"/auth", bearer)
	auth.GET("/me", a.Me)
	auth.GET("/apikey", k.List)
	auth.POST("/apikey", k.Create)
	auth.DELETE("/apikey/:key", k.Delete)
}
