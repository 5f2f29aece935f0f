package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cpms/cpms-api/internal/core/ports"
	"github.com/cpms/cpms-api/internal/infrastructure/config"
	mongostore "github.com/cpms/cpms-api/internal/infrastructure/db/mongo"
	pgstore "github.com/cpms/cpms-api/internal/infrastructure/db/postgres"
	"github.com/cpms/cpms-api/internal/infrastructure/http/handlers"
)

// Store bundles the repositories of the configured backend.
type Store struct {
	Users    ports.UserRepository
	Clients  ports.ClientRepository
	Projects ports.ProjectRepository
	// Checks holds the readiness probe of the backend.
	Checks map[string]handlers.Check

	close func(ctx context.Context) error
}

// OpenStore connects to the backend selected by STORE_DRIVER and prepares
// its schema: migrations on postgres, unique indexes on mongo.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	if cfg.Postgres.AutoMigrate {
		if err := pgstore.MigrateUp(cfg.Postgres.URL); err != nil {
			return nil, err
		}
		log.Info().Msg("postgres migrations applied")
	}

	db, err := pgstore.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", config.DriverPostgres).Msg("store connected")

	return &Store{
		Users:    pgstore.NewUserRepository(db),
		Clients:  pgstore.NewClientRepository(db),
		Projects: pgstore.NewProjectRepository(db),
		Checks:   map[string]handlers.Check{"postgres": handlers.PostgresCheck(db)},
		close:    func(context.Context) error { return closeSQL(db) },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("driver", config.DriverMongo).Str("database", cfg.Mongo.Database).Msg("store connected")

	return &Store{
		Users:    mongostore.NewUserRepository(db),
		Clients:  mongostore.NewClientRepository(db),
		Projects: mongostore.NewProjectRepository(db),
		Checks:   map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)},
		close:    func(ctx context.Context) error { return disconnectMongo(ctx, client) },
	}, nil
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func closeSQL(db *sql.DB) error {
	if err := db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}

func disconnectMongo(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}
