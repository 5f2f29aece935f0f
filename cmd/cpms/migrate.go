package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cpms/cpms-api/internal/infrastructure/config"
	"github.com/cpms/cpms-api/internal/infrastructure/db/postgres"
)

var errNotPostgres = errors.New("migrations only apply to STORE_DRIVER=postgres")

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		if cfg.Store.Driver != config.DriverPostgres {
			return errNotPostgres
		}
		if err := postgres.MigrateUp(cfg.Postgres.URL); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		if cfg.Store.Driver != config.DriverPostgres {
			return errNotPostgres
		}
		if err := postgres.MigrateDown(cfg.Postgres.URL); err != nil {
			return err
		}
		log.Info().Msg("migrations rolled back")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
