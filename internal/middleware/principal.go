package middleware

// principal.go defines the request-scoped identity context bound by the
// authentication middleware.  A Principal is either a bearer user (JWT) or
// an API-key user; it lives only in the Echo context for the duration of
// one request and is discarded with the response.

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/model"
)

const principalKey = "principal"

// Principal is the resolved identity for one request.
type Principal struct {
	User   model.User
	Role   string
	APIKey string // key value when authenticated via X-API-KEY, else empty
}

func setPrincipal(c echo.Context, p *Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the principal bound by an auth middleware, or
// false when the request is unauthenticated.
func CurrentPrincipal(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

// rateKey identifies the caller for admission control: the API key value
// when present, otherwise the client network address.
func rateKey(c echo.Context) string {
	if p, ok := CurrentPrincipal(c); ok && p.APIKey != "" {
		return p.APIKey
	}
	if ip := c.RealIP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}
