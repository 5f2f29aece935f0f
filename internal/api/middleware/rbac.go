package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// RBAC lets the request through only when the resolved actor holds one of
// allowedRoles. Anonymous requests fail with domain.ErrUnauthorized, others
// with an access-denied error on resource.
func RBAC(resolver ActorResolver, resource string, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	names := make([]string, 0, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	denied := &domain.ResourceError{
		Err:      domain.ErrAccessDenied,
		Resource: resource,
		Message:  fmt.Sprintf("Access denied - requires role %s", strings.Join(names, " or ")),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := Actor(c, resolver)
			if err != nil {
				return err
			}
			if _, ok := allowed[actor.Role]; !ok {
				return denied
			}
			return next(c)
		}
	}
}
