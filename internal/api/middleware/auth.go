package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/cpms/cpms-api/internal/api/metrics"
	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

const (
	identityKey = "identity"
	actorKey    = "actor"
)

// Identity validates the bearer token, when there is one, and stores the
// resulting ports.Identity in the context. It never rejects a request: a
// missing or bad token leaves the request anonymous and any handler that
// needs an actor fails with domain.ErrUnauthorized.
func Identity(codec ports.TokenCodec, log zerolog.Logger, skipper echomiddleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomiddleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenValidationsTotal.WithLabelValues("missing").Inc()
				return next(c)
			}

			id, err := codec.Validate(token)
			if err != nil {
				result := "invalid"
				if errors.Is(err, domain.ErrTokenExpired) {
					result = "expired"
				}
				metrics.TokenValidationsTotal.WithLabelValues(result).Inc()
				log.Debug().Str("result", result).Str("path", c.Path()).Msg("bearer token rejected")
				return next(c)
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// IdentityFrom returns the identity stored by Identity, if any.
func IdentityFrom(c echo.Context) (ports.Identity, bool) {
	id, ok := c.Get(identityKey).(ports.Identity)
	return id, ok
}

// ActorResolver loads the user behind a token identity.
type ActorResolver interface {
	ResolveActor(ctx context.Context, id ports.Identity) (*domain.User, error)
}

// Actor returns the user the request runs on behalf of. The lookup happens
// at most once per request; later calls return the same user.
func Actor(c echo.Context, resolver ActorResolver) (*domain.User, error) {
	if u, ok := c.Get(actorKey).(*domain.User); ok {
		return u, nil
	}

	id, ok := IdentityFrom(c)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	u, err := resolver.ResolveActor(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	c.Set(actorKey, u)
	return u, nil
}
