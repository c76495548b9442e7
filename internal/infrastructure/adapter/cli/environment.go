package cli

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/usecase/executor"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/loader"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/logger"
	neo4jstore "github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/neo4j"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/repository"
	timeprovider "github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/config"
)

// environment bundles everything a command needs after wiring
type environment struct {
	cfg      *config.Config
	logger   coreport.Logger
	store    *neo4jstore.Store
	migrator usecase.MigrationUseCase
}

// buildEnvironment loads configuration, applies flag overrides and wires the
// store, ledger, source and executor together
func (o *options) buildEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	o.override(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(logLevelFromName(cfg.Logger.Level))

	storeConfig := neo4jstore.DefaultConfig().
		WithURI(cfg.Neo4j.URI).
		WithCredentials(cfg.Neo4j.Username, cfg.Neo4j.Password)
	storeConfig.Realm = cfg.Neo4j.Realm
	if cfg.Neo4j.MaxConnectionPoolSize > 0 {
		storeConfig.MaxConnectionPoolSize = cfg.Neo4j.MaxConnectionPoolSize
	}
	if cfg.Neo4j.ConnectionAcquisitionTimeout > 0 {
		storeConfig.ConnectionAcquisitionTimeout = cfg.Neo4j.ConnectionAcquisitionTimeout
	}
	if cfg.Neo4j.ConnectTimeout > 0 {
		storeConfig.ConnectTimeout = cfg.Neo4j.ConnectTimeout
	}
	if cfg.Neo4j.RetryAttempts > 0 {
		storeConfig.RetryAttempts = cfg.Neo4j.RetryAttempts
	}
	if cfg.Neo4j.RetryDelay > 0 {
		storeConfig.RetryDelay = cfg.Neo4j.RetryDelay
	}

	tp := timeprovider.NewRealTimeProvider()

	store, err := neo4jstore.NewStore(ctx, storeConfig, appLogger, tp)
	if err != nil {
		_ = appLogger.Flush()
		return nil, err
	}

	scope, schemaDatabase := entity.ResolveScope(
		cfg.Migrations.Project,
		cfg.Migrations.Database,
		cfg.Migrations.SchemaDatabase,
	)
	ledger := repository.NewMigrationLedger(store, appLogger, scope, schemaDatabase)
	migrationSource := loader.NewFilesystemSource(cfg.Migrations.Path, nil, appLogger)
	migrator := executor.NewExecutor(
		store,
		ledger,
		migrationSource,
		tp,
		appLogger,
		cfg.Migrations.Database,
	)

	return &environment{
		cfg:      cfg,
		logger:   appLogger,
		store:    store,
		migrator: migrator,
	}, nil
}

// Close releases the store connection and flushes buffered logs
func (e *environment) Close(ctx context.Context) {
	if err := e.store.Close(ctx); err != nil {
		e.logger.Warn("Failed to close the graph store", map[string]any{
			"error": err.Error(),
		})
	}
	_ = e.logger.Flush()
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Neo4j.URI == "" {
		missingConfigs = append(missingConfigs, "neo4j.uri (or GM_NEO4J_URI environment variable)")
	}
	if cfg.Migrations.Path == "" {
		missingConfigs = append(missingConfigs, "migrations.path (or GM_MIGRATIONS_PATH environment variable)")
	}
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	return nil
}

func logLevelFromName(name string) coreport.LogLevel {
	switch name {
	case "debug":
		return coreport.LogLevelDebug
	case "warn", "warning":
		return coreport.LogLevelWarn
	case "error":
		return coreport.LogLevelError
	default:
		return coreport.LogLevelInfo
	}
}
