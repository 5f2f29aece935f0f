// Package server assembles the process: store, cache, services and router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cpms/cpms-api/internal/api"
	"github.com/cpms/cpms-api/internal/core/auth"
	"github.com/cpms/cpms-api/internal/core/ports"
	"github.com/cpms/cpms-api/internal/core/service"
	"github.com/cpms/cpms-api/internal/infrastructure/config"
	redisstore "github.com/cpms/cpms-api/internal/infrastructure/db/redis"
	"github.com/cpms/cpms-api/internal/infrastructure/http/handlers"
)

// Server wraps the Echo instance and the connections it owns.
type Server struct {
	cfg   *config.Config
	log   zerolog.Logger
	echo  *echo.Echo
	store *Store
	redis *goredis.Client
}

// New connects every dependency and builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	codec, err := auth.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	checks := store.Checks
	rdb, cache := openUserCache(ctx, cfg, log)
	if rdb != nil {
		checks["redis"] = handlers.RedisCheck(rdb)
	}

	authService := service.NewAuthService(
		store.Users,
		cache,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		codec,
		log.With().Str("component", "auth").Logger(),
	)
	clientService := service.NewClientService(store.Clients, log.With().Str("component", "clients").Logger())
	projectService := service.NewProjectService(store.Projects, store.Clients, log.With().Str("component", "projects").Logger())

	e := api.NewRouter(api.Deps{
		Logger:         log,
		Tokens:         codec,
		AuthService:    authService,
		ClientService:  clientService,
		ProjectService: projectService,
		Checks:         checks,
	})

	return &Server{cfg: cfg, log: log, echo: e, store: store, redis: rdb}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within SHUTDOWN_TIMEOUT and closes every connection.
func (s *Server) Run(ctx context.Context) error {
	addr := ":" + s.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("env", s.cfg.Env).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("http shutdown")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close redis")
		}
	}
	if err := s.store.Close(shutdownCtx); err != nil {
		s.log.Warn().Err(err).Msg("close store")
	}

	s.log.Info().Msg("server stopped")
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

// openUserCache connects the optional Redis user cache. An unreachable
// Redis is not fatal: the service runs uncached.
func openUserCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*goredis.Client, ports.UserCache) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("user cache disabled")
		return nil, nil
	}
	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.UserTTL).Msg("user cache enabled")
	return rdb, redisstore.NewUserCache(rdb, cfg.Redis.UserTTL)
}
