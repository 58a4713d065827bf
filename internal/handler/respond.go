package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/openpoi/poi-directory/internal/model"
)

// success writes the uniform success envelope: {"status":"success"} plus
// an optional message and the payload keys.  Error envelopes are rendered
// by the apperr boundary, never here.
func success(c echo.Context, status int, message string, payload echo.Map) error {
	body := echo.Map{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// userPayload is the public representation of a user.  The password hash
// never appears in any response.
func userPayload(u model.User) echo.Map {
	return echo.Map{
		"id":            u.ID,
		"username":      u.Username,
		"email":         u.Email,
		"role":          u.RoleName,
		"registered_on": u.RegisteredOn,
	}
}
