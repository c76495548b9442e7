package neo4j

import (
	"context"
	"fmt"
	"time"

	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jcfg "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
)

// Store adapts the Neo4j driver to the persistence graph ports
type Store struct {
	driver  neo4jdrv.DriverWithContext
	logger  coreport.Logger
	mapper  *ErrorMapper
	metrics *MetricsCollector
	uri     string
}

// NewStore connects to the store and verifies connectivity before returning
func NewStore(ctx context.Context, config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store configuration: %w", err)
	}

	auth := neo4jdrv.NoAuth()
	if config.Username != "" {
		auth = neo4jdrv.BasicAuth(config.Username, config.Password, config.Realm)
	}

	driver, err := neo4jdrv.NewDriverWithContext(config.URI, auth, func(c *neo4jcfg.Config) {
		c.MaxConnectionPoolSize = config.MaxConnectionPoolSize
		c.ConnectionAcquisitionTimeout = config.ConnectionAcquisitionTimeout
		c.UserAgent = config.UserAgent
		c.Log = NewDriverLogger(logger)
	})
	if err != nil {
		return nil, errs.NewConnectionError(config.URI, err)
	}

	// The driver connects lazily, so reachability is only known after an
	// explicit check. Retry while the store comes up.
	retryConfig := RetryConfig{
		MaxRetries:    config.RetryAttempts,
		RetryInterval: config.RetryDelay,
		MaxInterval:   4 * config.RetryDelay,
		JitterFactor:  0.2,
	}
	err = RetryOnTransientError(ctx, retryConfig, func() error {
		verifyCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
		return driver.VerifyConnectivity(verifyCtx)
	}, logger)
	if err != nil {
		_ = driver.Close(ctx)
		return nil, errs.NewConnectionError(config.URI, err)
	}

	logger.Info("Connected to graph store", map[string]any{
		"uri":           config.URI,
		"max_pool_size": config.MaxConnectionPoolSize,
	})
	return &Store{
		driver:  driver,
		logger:  logger,
		mapper:  NewErrorMapper(),
		metrics: NewMetricsCollector(logger, timeProvider),
		uri:     config.URI,
	}, nil
}

// Session opens a session against the named database; an empty name selects
// the store's default database
func (s *Store) Session(ctx context.Context, database string) persistence.GraphSession {
	return &session{
		inner:   s.driver.NewSession(ctx, neo4jdrv.SessionConfig{DatabaseName: database}),
		logger:  s.logger,
		mapper:  s.mapper,
		metrics: s.metrics,
	}
}

// VerifyConnectivity checks that the store is reachable
func (s *Store) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return errs.NewConnectionError(s.uri, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

type session struct {
	inner   neo4jdrv.SessionWithContext
	logger  coreport.Logger
	mapper  *ErrorMapper
	metrics *MetricsCollector
}

func (s *session) Query(ctx context.Context, cypher string, params map[string]any) (*persistence.CypherResult, error) {
	s.logger.Debug("Running auto-commit statement", map[string]any{
		"cypher": cypher,
	})

	var collected *persistence.CypherResult
	_, err := s.metrics.MeasureStatement(ctx, "auto-commit statement", func() (int64, error) {
		result, err := s.inner.Run(ctx, cypher, params)
		if err != nil {
			return 0, err
		}
		collected, err = collectResult(ctx, result)
		if err != nil {
			return 0, err
		}
		return int64(len(collected.Records)), nil
	})
	if err != nil {
		return nil, s.mapper.MapError(err, "auto-commit statement")
	}
	return collected, nil
}

func (s *session) BeginTransaction(ctx context.Context) (persistence.GraphTransaction, error) {
	tx, err := s.inner.BeginTransaction(ctx)
	if err != nil {
		return nil, s.mapper.MapError(err, "begin transaction")
	}
	return &transaction{
		inner:   tx,
		logger:  s.logger,
		mapper:  s.mapper,
		metrics: s.metrics,
	}, nil
}

func (s *session) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

type transaction struct {
	inner   neo4jdrv.ExplicitTransaction
	logger  coreport.Logger
	mapper  *ErrorMapper
	metrics *MetricsCollector
}

func (t *transaction) Run(ctx context.Context, cypher string, params map[string]any) error {
	_, err := t.Query(ctx, cypher, params)
	return err
}

func (t *transaction) Query(ctx context.Context, cypher string, params map[string]any) (*persistence.CypherResult, error) {
	t.logger.Debug("Running statement in transaction", map[string]any{
		"cypher": cypher,
	})

	var collected *persistence.CypherResult
	_, err := t.metrics.MeasureStatement(ctx, "transaction statement", func() (int64, error) {
		result, err := t.inner.Run(ctx, cypher, params)
		if err != nil {
			return 0, err
		}
		collected, err = collectResult(ctx, result)
		if err != nil {
			return 0, err
		}
		return int64(len(collected.Records)), nil
	})
	if err != nil {
		return nil, t.mapper.MapError(err, "transaction statement")
	}
	return collected, nil
}

func (t *transaction) Commit(ctx context.Context) error {
	if err := t.inner.Commit(ctx); err != nil {
		return t.mapper.MapError(err, "commit")
	}
	return nil
}

func (t *transaction) Rollback(ctx context.Context) error {
	return t.inner.Rollback(ctx)
}

func (t *transaction) Close(ctx context.Context) error {
	return t.inner.Close(ctx)
}

// collectResult buffers all records and the summary of one statement
func collectResult(ctx context.Context, result neo4jdrv.ResultWithContext) (*persistence.CypherResult, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return nil, err
	}

	collected := &persistence.CypherResult{
		Records: make([]persistence.Record, len(records)),
	}
	for i, record := range records {
		row := make(persistence.Record, len(record.Keys))
		for j, key := range record.Keys {
			row[key] = convertValue(record.Values[j])
		}
		collected.Records[i] = row
	}

	counters := summary.Counters()
	collected.Counters = persistence.WriteCounters{
		NodesCreated:         counters.NodesCreated(),
		NodesDeleted:         counters.NodesDeleted(),
		RelationshipsCreated: counters.RelationshipsCreated(),
		RelationshipsDeleted: counters.RelationshipsDeleted(),
		ConstraintsAdded:     counters.ConstraintsAdded(),
	}
	return collected, nil
}

// convertValue maps driver types onto the plain values the ports expose.
// Nodes and relationships flatten to their property maps; durations written
// by the chain carry only seconds and nanoseconds.
func convertValue(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return convertProps(v.Props)
	case dbtype.Relationship:
		return convertProps(v.Props)
	case dbtype.Duration:
		return time.Duration(v.Seconds)*time.Second + time.Duration(v.Nanos)
	case []any:
		converted := make([]any, len(v))
		for i, item := range v {
			converted[i] = convertValue(item)
		}
		return converted
	default:
		return value
	}
}

func convertProps(props map[string]any) map[string]any {
	converted := make(map[string]any, len(props))
	for key, value := range props {
		converted[key] = convertValue(value)
	}
	return converted
}
