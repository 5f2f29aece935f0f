// Package response renders the JSON envelope shared by every endpoint:
// {"success", "message", "data", "timestamp"}.
package response

import (
	"time"

	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// now is replaced in tests.
var now = time.Now

func OK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now().UTC().Format(time.RFC3339),
	})
}

func Fail(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		Data:      data,
		Timestamp: now().UTC().Format(time.RFC3339),
	})
}
