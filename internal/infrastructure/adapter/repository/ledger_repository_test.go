package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
	coremocks "github.com/amirhossein-jamali/graph-migrator/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/graph-migrator/mocks/port/persistence"
)

type ledgerFixture struct {
	store   *persistencemocks.MockGraphStore
	session *persistencemocks.MockGraphSession
	tx      *persistencemocks.MockGraphTransaction
	ledger  *MigrationLedger
}

func newLedgerFixture(scope entity.Scope) *ledgerFixture {
	f := &ledgerFixture{
		store:   &persistencemocks.MockGraphStore{},
		session: &persistencemocks.MockGraphSession{},
		tx:      &persistencemocks.MockGraphTransaction{},
	}

	logger := &coremocks.MockLogger{}
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()

	f.store.On("Session", mock.Anything, "").Return(f.session).Maybe()
	f.session.On("Close", mock.Anything).Return(nil).Maybe()
	f.tx.On("Close", mock.Anything).Return(nil).Maybe()

	f.ledger = NewMigrationLedger(f.store, logger, scope, "")
	return f
}

// expectIdentity stubs the one-time connected user lookup
func (f *ledgerFixture) expectIdentity(name string) {
	f.session.On("Query", mock.Anything, cypherContaining("SHOW CURRENT USER"), mock.Anything).
		Return(&persistence.CypherResult{Records: []persistence.Record{{"user": name}}}, nil)
}

func cypherContaining(fragment string) interface{} {
	return mock.MatchedBy(func(cypher string) bool {
		return strings.Contains(cypher, fragment)
	})
}

func emptyResult() *persistence.CypherResult {
	return &persistence.CypherResult{}
}

func testDefinition(version string) entity.MigrationDefinition {
	return entity.MigrationDefinition{
		Version:     entity.MustParseVersion(version),
		Description: "test migration",
		Kind:        entity.KindScript,
		Source:      "V" + version + "__test.cypher",
		Checksum:    "2648307716",
	}
}

func TestEnsureBaseline(t *testing.T) {
	t.Run("should leave an existing baseline alone", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.session.On("Query", mock.Anything, cypherContaining("MATCH (m:__Migration {version: $version})"), mock.Anything).
			Return(&persistence.CypherResult{Records: []persistence.Record{{"m": map[string]any{}}}}, nil).
			Once()

		err := f.ledger.EnsureBaseline(context.Background())

		require.NoError(t, err)
		f.session.AssertNumberOfCalls(t, "Query", 1)
	})

	t.Run("should create the baseline when absent", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		var createParams map[string]any
		f.session.On("Query", mock.Anything, cypherContaining("MATCH (m:__Migration {version: $version})"), mock.Anything).
			Return(emptyResult(), nil).
			Once()
		f.session.On("Query", mock.Anything, cypherContaining("CREATE (:__Migration"), mock.Anything).
			Run(func(args mock.Arguments) {
				createParams = args.Get(2).(map[string]any)
			}).
			Return(emptyResult(), nil).
			Once()

		err := f.ledger.EnsureBaseline(context.Background())

		require.NoError(t, err)
		f.session.AssertExpectations(t)
		assert.Equal(t, entity.BaselineVersion, createParams["version"])
		assert.Nil(t, createParams["project"])
		assert.Nil(t, createParams["migration_target"])
	})

	t.Run("should scope the baseline to project and target", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{Project: "billing", Target: "customers"})
		var matchParams map[string]any
		f.session.On("Query", mock.Anything, cypherContaining("MATCH (m:__Migration {version: $version})"), mock.Anything).
			Run(func(args mock.Arguments) {
				matchParams = args.Get(2).(map[string]any)
			}).
			Return(&persistence.CypherResult{Records: []persistence.Record{{"m": map[string]any{}}}}, nil)

		err := f.ledger.EnsureBaseline(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "billing", matchParams["project"])
		assert.Equal(t, "customers", matchParams["migration_target"])
	})

	t.Run("should propagate query failures", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		queryErr := errs.NewConnectionError("bolt://localhost:7687", errors.New("refused"))
		f.session.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, queryErr)

		err := f.ledger.EnsureBaseline(context.Background())

		assert.ErrorIs(t, err, errs.ErrConnection)
	})
}

func TestEnsureUniquenessConstraint(t *testing.T) {
	t.Run("should install the constraint idempotently", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.session.On("Query", mock.Anything, cypherContaining("CREATE CONSTRAINT"), mock.Anything).
			Return(&persistence.CypherResult{Counters: persistence.WriteCounters{ConstraintsAdded: 1}}, nil).
			Once()

		err := f.ledger.EnsureUniquenessConstraint(context.Background())

		require.NoError(t, err)
		f.session.AssertExpectations(t)
	})
}

func TestLedgerAppend(t *testing.T) {
	goodCounters := persistence.WriteCounters{NodesCreated: 1, RelationshipsCreated: 1}

	t.Run("should record the entry at the head of the chain", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)

		var appendParams map[string]any
		f.tx.On("Query", mock.Anything, cypherContaining("CREATE (m2:__Migration"), mock.Anything).
			Run(func(args mock.Arguments) {
				appendParams = args.Get(2).(map[string]any)
			}).
			Return(&persistence.CypherResult{Counters: goodCounters}, nil)
		f.tx.On("Commit", mock.Anything).Return(nil).Once()

		err := f.ledger.Append(context.Background(), testDefinition("0001"), coreport.Duration(1500*time.Millisecond), false)

		require.NoError(t, err)
		f.tx.AssertExpectations(t)
		f.tx.AssertNotCalled(t, "Rollback", mock.Anything)
		assert.Equal(t, "0001", appendParams["version_to"])
		assert.Equal(t, "SCRIPT", appendParams["type"])
		assert.Equal(t, "2648307716", appendParams["checksum"])
		assert.Equal(t, 1.5, appendParams["duration"])
		assert.Equal(t, "neo4j", appendParams["connected_as"])
	})

	t.Run("should roll the transaction back on a dry run", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)
		f.tx.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return(&persistence.CypherResult{Counters: goodCounters}, nil)
		f.tx.On("Rollback", mock.Anything).Return(nil).Once()

		err := f.ledger.Append(context.Background(), testDefinition("0001"), 0, true)

		require.NoError(t, err)
		f.tx.AssertExpectations(t)
		f.tx.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should fail on a lost head race without committing", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)
		// no node created means another writer already moved the head
		f.tx.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return(emptyResult(), nil)

		err := f.ledger.Append(context.Background(), testDefinition("0001"), 0, false)

		assert.ErrorIs(t, err, errs.ErrLedgerIntegrity)
		f.tx.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should store an empty checksum as absent", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)

		var appendParams map[string]any
		f.tx.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				appendParams = args.Get(2).(map[string]any)
			}).
			Return(&persistence.CypherResult{Counters: goodCounters}, nil)
		f.tx.On("Commit", mock.Anything).Return(nil)

		def := testDefinition("0001")
		def.Kind = entity.KindProcedural
		def.Checksum = ""
		err := f.ledger.Append(context.Background(), def, 0, false)

		require.NoError(t, err)
		assert.Nil(t, appendParams["checksum"])
		assert.Equal(t, "PROCEDURAL", appendParams["type"])
	})

	t.Run("should resolve the connected user only once", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		identityLookups := 0
		f.session.On("Query", mock.Anything, cypherContaining("SHOW CURRENT USER"), mock.Anything).
			Run(func(mock.Arguments) { identityLookups++ }).
			Return(&persistence.CypherResult{Records: []persistence.Record{{"user": "neo4j"}}}, nil)
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)
		f.tx.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return(&persistence.CypherResult{Counters: goodCounters}, nil)
		f.tx.On("Commit", mock.Anything).Return(nil)

		require.NoError(t, f.ledger.Append(context.Background(), testDefinition("0001"), 0, false))
		require.NoError(t, f.ledger.Append(context.Background(), testDefinition("0002"), 0, false))

		assert.Equal(t, 1, identityLookups)
	})
}

func TestFetchApplied(t *testing.T) {
	t.Run("should map chain records into ledger entries", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		appliedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		f.session.On("Query", mock.Anything, cypherContaining("MIGRATED_TO*"), mock.Anything).
			Return(&persistence.CypherResult{Records: []persistence.Record{
				{
					"m": map[string]any{
						"version":     "0001",
						"description": "initial migration",
						"type":        "SCRIPT",
						"source":      "V0001__initial_migration.cypher",
						"checksum":    "2648307716",
					},
					"link": map[string]any{
						"at":          appliedAt,
						"in":          250 * time.Millisecond,
						"by":          "deploy",
						"connectedAs": "neo4j",
					},
				},
			}}, nil)

		entries, err := f.ledger.FetchApplied(context.Background())

		require.NoError(t, err)
		require.Len(t, entries, 1)
		entry := entries[0]
		assert.Equal(t, "0001", entry.Version.String())
		assert.Equal(t, "initial migration", entry.Description)
		assert.Equal(t, entity.KindScript, entry.Kind)
		assert.Equal(t, "V0001__initial_migration.cypher", entry.Source)
		assert.Equal(t, "2648307716", entry.Checksum)
		assert.Equal(t, appliedAt, entry.AppliedAt)
		assert.Equal(t, 250*time.Millisecond, entry.Took)
		assert.Equal(t, "deploy", entry.AppliedBy)
		assert.Equal(t, "neo4j", entry.ConnectedAs)
	})

	t.Run("should order entries numerically regardless of store order", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		record := func(version string) persistence.Record {
			return persistence.Record{"m": map[string]any{"version": version, "type": "SCRIPT"}}
		}
		f.session.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return(&persistence.CypherResult{Records: []persistence.Record{
				record("10"), record("9"), record("8.5"),
			}}, nil)

		entries, err := f.ledger.FetchApplied(context.Background())

		require.NoError(t, err)
		versions := make([]string, len(entries))
		for i, entry := range entries {
			versions[i] = entry.Version.String()
		}
		assert.Equal(t, []string{"8.5", "9", "10"}, versions)
	})

	t.Run("should return an empty slice for a fresh chain", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.session.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(emptyResult(), nil)

		entries, err := f.ledger.FetchApplied(context.Background())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should fail on a record with an unparseable version", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.session.On("Query", mock.Anything, mock.Anything, mock.Anything).
			Return(&persistence.CypherResult{Records: []persistence.Record{
				{"m": map[string]any{"version": "not-a-version"}},
			}}, nil)

		_, err := f.ledger.FetchApplied(context.Background())

		assert.ErrorIs(t, err, errs.ErrMalformedVersion)
	})
}

func TestLedgerRemove(t *testing.T) {
	locatedWithNext := &persistence.CypherResult{Records: []persistence.Record{
		{"prev": map[string]any{}, "m": map[string]any{}, "next": map[string]any{}},
	}}
	locatedTail := &persistence.CypherResult{Records: []persistence.Record{
		{"prev": map[string]any{}, "m": map[string]any{}, "next": nil},
	}}
	deletedOne := &persistence.CypherResult{Records: []persistence.Record{{"deleted_count": int64(1)}}}

	t.Run("should relink the chain around a middle entry", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)

		relinks := 0
		f.tx.On("Query", mock.Anything, cypherContaining("RETURN prev, m, next"), mock.Anything).
			Return(locatedWithNext, nil)
		f.tx.On("Query", mock.Anything, cypherContaining("MERGE (prev)-[link:MIGRATED_TO]->(next)"), mock.Anything).
			Run(func(mock.Arguments) { relinks++ }).
			Return(emptyResult(), nil)
		f.tx.On("Query", mock.Anything, cypherContaining("deleted_count"), mock.Anything).
			Return(deletedOne, nil)
		f.tx.On("Commit", mock.Anything).Return(nil).Once()

		err := f.ledger.Remove(context.Background(), entity.MustParseVersion("0002"))

		require.NoError(t, err)
		assert.Equal(t, 1, relinks)
		f.tx.AssertExpectations(t)
	})

	t.Run("should not relink when removing the chain head", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)

		relinks := 0
		f.tx.On("Query", mock.Anything, cypherContaining("RETURN prev, m, next"), mock.Anything).
			Return(locatedTail, nil)
		f.tx.On("Query", mock.Anything, cypherContaining("MERGE (prev)-[link:MIGRATED_TO]->(next)"), mock.Anything).
			Run(func(mock.Arguments) { relinks++ }).
			Return(emptyResult(), nil)
		f.tx.On("Query", mock.Anything, cypherContaining("deleted_count"), mock.Anything).
			Return(deletedOne, nil)
		f.tx.On("Commit", mock.Anything).Return(nil)

		err := f.ledger.Remove(context.Background(), entity.MustParseVersion("0003"))

		require.NoError(t, err)
		assert.Zero(t, relinks)
	})

	t.Run("should fail when the entry is not in the chain", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)
		f.tx.On("Query", mock.Anything, cypherContaining("RETURN prev, m, next"), mock.Anything).
			Return(emptyResult(), nil)

		err := f.ledger.Remove(context.Background(), entity.MustParseVersion("0009"))

		assert.ErrorIs(t, err, errs.ErrNotFound)
		f.tx.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should fail when the delete touches an unexpected node count", func(t *testing.T) {
		f := newLedgerFixture(entity.Scope{})
		f.expectIdentity("neo4j")
		f.session.On("BeginTransaction", mock.Anything).Return(f.tx, nil)
		f.tx.On("Query", mock.Anything, cypherContaining("RETURN prev, m, next"), mock.Anything).
			Return(locatedTail, nil)
		f.tx.On("Query", mock.Anything, cypherContaining("deleted_count"), mock.Anything).
			Return(&persistence.CypherResult{Records: []persistence.Record{{"deleted_count": int64(0)}}}, nil)

		err := f.ledger.Remove(context.Background(), entity.MustParseVersion("0002"))

		assert.ErrorIs(t, err, errs.ErrLedgerIntegrity)
		f.tx.AssertNotCalled(t, "Commit", mock.Anything)
	})
}
