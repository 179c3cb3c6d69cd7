// Package cli holds the start-up steps shared by cmd/savings,
// cmd/savings-worker and cmd/savingsctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"savings/internal/backend"
	"savings/internal/config"
	applog "savings/internal/log"
)

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error; ENV_FILE picks another path.
func LoadEnvFile() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		_ = godotenv.Load()
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot load env file %s: %v\n", path, err)
	}
}

// LoadConfig loads and validates the configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger at the configured level and makes
// it the slog default.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Level = cfg.SlogLevel()
	lc.Component = component
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// Bootstrap runs the common start-up: .env, configuration, logger. It exits
// the process when the configuration is invalid.
func Bootstrap(component string) (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg, err := LoadConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, SetupLogger(cfg, component)
}

// OpenBackend creates the configured record store.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	return factory.CreateBackend(ctx, bc)
}

// RequirePersistentBackend rejects backends whose data lives only in this
// process. The worker mirrors what the server stored, so it has to read the
// same database.
func RequirePersistentBackend(cfg *config.Config) error {
	bt := backend.BackendType(cfg.DataBackend)
	if !bt.Persistent() {
		return fmt.Errorf("backend %q is not shared with the server, use %s or %s",
			cfg.DataBackend, backend.SQLiteBackend, backend.PostgresBackend)
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
