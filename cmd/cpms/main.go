package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cpms/cpms-api/internal/infrastructure/config"
	"github.com/cpms/cpms-api/pkg/logger"
)

// @title           CPMS API
// @version         1.0
// @description     Client and project management with per-owner access control.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

var rootCmd = &cobra.Command{
	Use:           "cpms",
	Short:         "Client and project management service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log := logger.Init(logger.Options{Output: os.Stderr})
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// bootstrap loads configuration and initialises the process logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, logger.Init(logger.Options{}), err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})
	return cfg, log, nil
}
