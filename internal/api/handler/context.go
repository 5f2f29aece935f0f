package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// pathID reads a positive integer path parameter. Anything else is a 400.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, name+" must be a positive integer")
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("body", "request body must be valid JSON")
	}
	return c.Validate(req)
}
