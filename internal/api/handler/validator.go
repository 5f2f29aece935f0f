package handler

import "github.com/cpms/cpms-api/internal/pkg/validate"

// echoValidator lets Echo call c.Validate(req). Failures come back as
// *domain.ValidationError keyed by JSON field name.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return validate.Struct(i)
}
