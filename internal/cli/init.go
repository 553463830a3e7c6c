// Package cli wires configuration, logging, the store and the ledger
// service behind the finledger commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"finledger/internal/config"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/storage"
)

// ErrNotInitialized is returned by commands that need a ledger file when
// none exists yet.
var ErrNotInitialized = errors.New("no ledger found, run 'finledger init' first")

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment, applies
// the --db override and validates the result.
func LoadAndValidateConfig(dbOverride string) (*config.Config, error) {
	cfg := config.Load()
	if dbOverride != "" {
		cfg.DBPath = dbOverride
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg and installs it as the
// slog default, so the storage layer logs through it too. Every entry of one
// invocation carries the same run id.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	opts := log.DefaultConfig()
	opts.Level = log.ParseLevel(cfg.LogLevel)
	opts.Format = cfg.LogFormat
	opts.Component = log.ComponentCLI
	if out != nil {
		opts.Output = out
	}
	logger := log.New(opts).With(log.FieldRunID, uuid.NewString())
	log.SetDefault(logger)
	return logger
}

// OpenLedger opens the existing ledger at cfg.DBPath and loads the default
// view. The caller owns the returned repository and must close it.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.SQLiteRepository, *ledger.Service, error) {
	ok, err := storage.Exists(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrNotInitialized
	}
	return openAndLoad(ctx, cfg, logger)
}

// SetupLedger creates the ledger file if needed, seeds it and loads the
// default view. It reports whether seed data was written.
func SetupLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.SQLiteRepository, *ledger.Service, bool, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, false, err
	}
	repo, err := storage.NewSQLiteRepository(cfg.DBPath, loc)
	if err != nil {
		logger.LogError(ctx, "Failed to initialize SQLite repository", err, log.ErrorTypeDatabase, log.OpSetup,
			log.NewFields().With(log.FieldDBPath, cfg.DBPath))
		return nil, nil, false, err
	}
	seeded, err := repo.Seed(ctx)
	if err != nil {
		repo.Close()
		return nil, nil, false, fmt.Errorf("seed ledger: %w", err)
	}

	svc := newService(repo, cfg, loc, logger)
	if err := svc.Init(ctx); err != nil {
		repo.Close()
		return nil, nil, false, err
	}
	return repo, svc, seeded, nil
}

func openAndLoad(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.SQLiteRepository, *ledger.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	repo, err := storage.NewSQLiteRepository(cfg.DBPath, loc)
	if err != nil {
		logger.LogError(ctx, "Failed to open SQLite repository", err, log.ErrorTypeDatabase, log.OpRead,
			log.NewFields().With(log.FieldDBPath, cfg.DBPath))
		return nil, nil, err
	}

	svc := newService(repo, cfg, loc, logger)
	if err := svc.Init(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return repo, svc, nil
}

func newService(repo *storage.SQLiteRepository, cfg *config.Config, loc *time.Location, logger *log.Logger) *ledger.Service {
	return ledger.NewService(repo, ledger.Options{
		Location:  loc,
		Logger:    logger,
		CacheSize: cfg.ReferenceCacheSize,
		CacheTTL:  cfg.ReferenceCacheTTL,
	})
}
