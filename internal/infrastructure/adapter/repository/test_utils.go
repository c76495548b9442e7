package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
)

// TestLedger is an in-memory ledger with the same chain semantics as the
// store-backed one: baseline before first append, version uniqueness, dry
// runs that validate without recording, relinking removal. It lets flow
// tests run against real history behavior without a store.
type TestLedger struct {
	mu sync.Mutex

	Baselined         bool
	ConstraintEnsured bool
	DryRunVersions    []string

	entries []entity.LedgerEntry
}

// NewTestLedger creates an empty in-memory ledger
func NewTestLedger(t *testing.T) *TestLedger {
	t.Helper()
	return &TestLedger{}
}

// EnsureBaseline idempotently marks the baseline as present
func (l *TestLedger) EnsureBaseline(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Baselined = true
	return nil
}

// EnsureUniquenessConstraint idempotently marks the constraint as installed
func (l *TestLedger) EnsureUniquenessConstraint(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ConstraintEnsured = true
	return nil
}

// Append validates the chain shape and, unless dryRun, records the entry
func (l *TestLedger) Append(ctx context.Context, def entity.MigrationDefinition, took coreport.Duration, dryRun bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.Baselined {
		return errs.NewLedgerIntegrityError("append", 0, 0)
	}
	for _, entry := range l.entries {
		if entry.Version.Equal(def.Version) {
			return fmt.Errorf("%w: version %s already recorded", errs.ErrDuplicateVersion, def.Version)
		}
	}

	if dryRun {
		l.DryRunVersions = append(l.DryRunVersions, def.Version.String())
		return nil
	}

	l.entries = append(l.entries, entity.LedgerEntry{
		Version:     def.Version,
		Description: def.Description,
		Kind:        def.Kind,
		Source:      def.Source,
		Checksum:    def.Checksum,
		AppliedAt:   time.Now(),
		Took:        took.Std(),
		AppliedBy:   "tester",
		ConnectedAs: "neo4j",
	})
	return nil
}

// FetchApplied returns the recorded entries ascending by version
func (l *TestLedger) FetchApplied(ctx context.Context) ([]entity.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	applied := make([]entity.LedgerEntry, len(l.entries))
	copy(applied, l.entries)
	sort.SliceStable(applied, func(i, j int) bool {
		return applied[i].Version.Less(applied[j].Version)
	})
	return applied, nil
}

// Remove deletes the entry for version, failing like the store-backed
// ledger when it is absent
func (l *TestLedger) Remove(ctx context.Context, version entity.Version) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, entry := range l.entries {
		if entry.Version.Equal(version) {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return nil
		}
	}
	return errs.NewNotFoundError(version.String(), "the migration chain")
}

// RecordedStatement is one Cypher statement committed through the test store
type RecordedStatement struct {
	Database string
	Cypher   string
	Params   map[string]any
}

// TestGraphStore is an in-memory graph store that records committed
// statements instead of executing them. Rolled back transactions leave no
// trace, matching the visibility rules of the real store.
type TestGraphStore struct {
	mu         sync.Mutex
	committed  []RecordedStatement
	RolledBack int
}

// NewTestGraphStore creates an empty recording store
func NewTestGraphStore(t *testing.T) *TestGraphStore {
	t.Helper()
	return &TestGraphStore{}
}

// Session opens a recording session bound to database
func (s *TestGraphStore) Session(ctx context.Context, database string) persistence.GraphSession {
	return &testSession{store: s, database: database}
}

// VerifyConnectivity always succeeds for the in-memory store
func (s *TestGraphStore) VerifyConnectivity(ctx context.Context) error {
	return nil
}

// Close releases nothing; the store is memory only
func (s *TestGraphStore) Close(ctx context.Context) error {
	return nil
}

// Committed returns every statement committed so far
func (s *TestGraphStore) Committed() []RecordedStatement {
	s.mu.Lock()
	defer s.mu.Unlock()
	statements := make([]RecordedStatement, len(s.committed))
	copy(statements, s.committed)
	return statements
}

func (s *TestGraphStore) commit(statements []RecordedStatement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, statements...)
}

func (s *TestGraphStore) rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RolledBack++
}

type testSession struct {
	store    *TestGraphStore
	database string
}

func (s *testSession) Query(ctx context.Context, cypher string, params map[string]any) (*persistence.CypherResult, error) {
	s.store.commit([]RecordedStatement{{Database: s.database, Cypher: cypher, Params: params}})
	return &persistence.CypherResult{}, nil
}

func (s *testSession) BeginTransaction(ctx context.Context) (persistence.GraphTransaction, error) {
	return &testTransaction{store: s.store, database: s.database}, nil
}

func (s *testSession) Close(ctx context.Context) error {
	return nil
}

type testTransaction struct {
	store    *TestGraphStore
	database string
	pending  []RecordedStatement
	resolved bool
}

func (t *testTransaction) Run(ctx context.Context, cypher string, params map[string]any) error {
	_, err := t.Query(ctx, cypher, params)
	return err
}

func (t *testTransaction) Query(ctx context.Context, cypher string, params map[string]any) (*persistence.CypherResult, error) {
	t.pending = append(t.pending, RecordedStatement{Database: t.database, Cypher: cypher, Params: params})
	return &persistence.CypherResult{}, nil
}

func (t *testTransaction) Commit(ctx context.Context) error {
	t.store.commit(t.pending)
	t.pending = nil
	t.resolved = true
	return nil
}

func (t *testTransaction) Rollback(ctx context.Context) error {
	t.pending = nil
	t.resolved = true
	t.store.rollback()
	return nil
}

func (t *testTransaction) Close(ctx context.Context) error {
	if !t.resolved {
		return t.Rollback(ctx)
	}
	return nil
}
