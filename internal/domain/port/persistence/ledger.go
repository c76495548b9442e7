package persistence

import (
	"context"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
)

// Ledger is the persisted history of applied migrations for one scope,
// stored as a singly linked chain inside the target store. Implementations
// run every mutation in its own transaction.
type Ledger interface {
	// EnsureBaseline idempotently creates the baseline sentinel for the
	// scope when absent
	EnsureBaseline(ctx context.Context) error

	// EnsureUniquenessConstraint idempotently installs the uniqueness
	// constraint on (version, project, target); safe to call repeatedly
	EnsureUniquenessConstraint(ctx context.Context) error

	// Append records a migration at the head of the chain. The match of the
	// current head inside the same transaction is the concurrency control: a
	// competing append to the same head cannot also commit. With dryRun the
	// transaction is rolled back after validating that exactly one entry and
	// one link would have been created.
	Append(ctx context.Context, def entity.MigrationDefinition, took core.Duration, dryRun bool) error

	// FetchApplied returns every applied entry of the scope, baseline
	// excluded, ascending by version
	FetchApplied(ctx context.Context) ([]entity.LedgerEntry, error)

	// Remove deletes the entry for version and relinks its predecessor to
	// its successor, preserving the single path invariant
	Remove(ctx context.Context, version entity.Version) error
}
