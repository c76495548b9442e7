package persistence

import (
	"context"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

// Record is one result row keyed by the names in the query's RETURN clause.
// Node and relationship values are flattened to property maps, temporal
// values arrive as time.Time and time.Duration.
type Record map[string]any

// WriteCounters reports what a query changed, as counted by the store
type WriteCounters struct {
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	RelationshipsDeleted int
	ConstraintsAdded     int
}

// CypherResult is the fully collected outcome of one Cypher query
type CypherResult struct {
	Records  []Record
	Counters WriteCounters
}

// GraphTransaction is an explicit transaction on the target store. Callers
// must resolve it with Commit or Rollback and release it with Close on
// every exit path; Close rolls back when the transaction is still open.
type GraphTransaction interface {
	entity.StatementRunner

	// Query executes one Cypher statement inside the transaction and
	// collects all records and write counters
	Query(ctx context.Context, cypher string, params map[string]any) (*CypherResult, error)

	// Commit makes the transaction's changes durable
	Commit(ctx context.Context) error

	// Rollback discards the transaction's changes
	Rollback(ctx context.Context) error

	// Close releases the transaction, rolling back unless committed
	Close(ctx context.Context) error
}

// GraphSession is a short-lived handle bound to one database. Sessions are
// not safe for concurrent use and must be closed by the caller.
type GraphSession interface {
	// Query executes one Cypher statement in an auto-commit transaction
	Query(ctx context.Context, cypher string, params map[string]any) (*CypherResult, error)

	// BeginTransaction opens an explicit transaction on the session
	BeginTransaction(ctx context.Context) (GraphTransaction, error)

	// Close releases the session and its resources
	Close(ctx context.Context) error
}

// GraphStore is the connection to the target property graph store
type GraphStore interface {
	// Session opens a session against the named database; an empty name
	// selects the store's default database
	Session(ctx context.Context, database string) GraphSession

	// VerifyConnectivity checks that the store is reachable with the
	// configured credentials
	VerifyConnectivity(ctx context.Context) error

	// Close releases the underlying connection pool
	Close(ctx context.Context) error
}
