// Package apperr defines the typed application error carried from any layer
// up to the single HTTP error boundary.  Every failure the API can surface
// has an HTTP status and a stable machine-readable error code; handlers and
// middleware return *Error values instead of writing responses themselves,
// and ErrorHandler translates them into the uniform envelope
// {"status":"error","message":...,"error_code":...}.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is a failure with a fixed HTTP status and stable error code.
// Cause, when set, is an internal error that is logged server-side but
// never shown to callers outside dev mode.
type Error struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with an explicit status.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *Error {
	return New(http.StatusForbidden, code, message)
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

func TooManyRequests(code, message string) *Error {
	return New(http.StatusTooManyRequests, code, message)
}

// Internal wraps an unexpected error.  The cause is kept for the boundary
// log; the caller-visible message stays generic.
func Internal(cause error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred on the server",
		Cause:   cause,
	}
}

// ErrorHandler returns the Echo HTTPErrorHandler that renders every failure
// as the uniform error envelope.  Three shapes arrive here: *Error values
// from our own code, *echo.HTTPError from the framework (unknown route,
// bind failures), and anything else, which is treated as internal.  When
// dev is true internal messages are passed through for debugging; in
// production they are replaced with a generic message.  Unexpected errors
// are always logged with the request method and path.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		switch {
		case errors.As(err, &appErr):
			// fall through with appErr as-is
		default:
			if he, ok := err.(*echo.HTTPError); ok {
				appErr = &Error{
					Status:  he.Code,
					Code:    fmt.Sprintf("HTTP_%d", he.Code),
					Message: fmt.Sprintf("%v", he.Message),
				}
			} else {
				appErr = Internal(err)
			}
		}

		if appErr.Status >= http.StatusInternalServerError {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		msg := appErr.Message
		if dev && appErr.Cause != nil {
			msg = appErr.Cause.Error()
		}

		body := echo.Map{
			"status":     "error",
			"message":    msg,
			"error_code": appErr.Code,
		}
		if err := c.JSON(appErr.Status, body); err != nil {
			c.Logger().Errorf("write error response: %v", err)
		}
	}
}
