package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
)

// Cypher statements for the migration chain. Absent project and target
// values are normalized to '<default>' inside the queries so that absence
// only ever matches absence, never an explicit value.
const (
	cypherMatchBaseline = `
MATCH (m:__Migration {version: $version})
WHERE coalesce(m.project, '<default>') = coalesce($project, '<default>')
  AND coalesce(m.migrationTarget, '<default>') = coalesce($migration_target, '<default>')
RETURN m`

	cypherCreateBaseline = `
CREATE (:__Migration {version: $version, project: $project, migrationTarget: $migration_target})`

	cypherCreateConstraint = `
CREATE CONSTRAINT unique_version___Migration IF NOT EXISTS
FOR (m:__Migration)
REQUIRE (m.version, m.project, m.migrationTarget) IS UNIQUE`

	// the head match requires a node with no outgoing chain edge; a
	// concurrent append that commits first leaves nothing to match
	cypherAppend = `
MATCH (m1:__Migration)
WHERE coalesce(m1.project, '<default>') = coalesce($project, '<default>')
  AND coalesce(m1.migrationTarget, '<default>') = coalesce($migration_target, '<default>')
  AND NOT (m1)-[:MIGRATED_TO]->(:__Migration)
WITH m1
CREATE (m2:__Migration {
    version: $version_to,
    description: $description,
    type: $type,
    source: $source,
    project: $project,
    migrationTarget: $migration_target,
    checksum: $checksum
})
MERGE (m1)-[link:MIGRATED_TO]->(m2)
SET link.at = datetime(),
    link.in = duration({seconds: $duration}),
    link.by = $migrated_by,
    link.connectedAs = $connected_as`

	cypherFetchApplied = `
MATCH (:__Migration {version: $baseline})-[:MIGRATED_TO*]->(m:__Migration)
WHERE coalesce(m.project, '<default>') = coalesce($project, '<default>')
  AND coalesce(m.migrationTarget, '<default>') = coalesce($migration_target, '<default>')
MATCH (m)<-[link:MIGRATED_TO]-(:__Migration)
WITH m, link, [x IN split(m.version, '.') | toInteger(x)] AS version
RETURN m, link
ORDER BY version`

	cypherMatchRemovable = `
MATCH (prev:__Migration)-[r1:MIGRATED_TO]->(m:__Migration {version: $version})
WHERE coalesce(m.project, '<default>') = coalesce($project, '<default>')
  AND coalesce(m.migrationTarget, '<default>') = coalesce($migration_target, '<default>')
OPTIONAL MATCH (m)-[r2:MIGRATED_TO]->(next:__Migration)
RETURN prev, m, next`

	cypherRelinkChain = `
MATCH (prev:__Migration)-[:MIGRATED_TO]->(m:__Migration {version: $version})-[:MIGRATED_TO]->(next:__Migration)
WHERE coalesce(m.project, '<default>') = coalesce($project, '<default>')
  AND coalesce(m.migrationTarget, '<default>') = coalesce($migration_target, '<default>')
MERGE (prev)-[link:MIGRATED_TO]->(next)
SET link.at = datetime(),
    link.by = $rolled_back_by,
    link.connectedAs = $connected_as`

	cypherDeleteEntry = `
MATCH (prev:__Migration)-[r1:MIGRATED_TO]->(m:__Migration {version: $version})
WHERE coalesce(m.project, '<default>') = coalesce($project, '<default>')
  AND coalesce(m.migrationTarget, '<default>') = coalesce($migration_target, '<default>')
OPTIONAL MATCH (m)-[r2:MIGRATED_TO]->(next:__Migration)
DELETE r1, r2, m
RETURN count(m) AS deleted_count`

	cypherShowCurrentUser = `SHOW CURRENT USER`
)

// MigrationLedger persists the applied migration history of one scope as a
// chain of __Migration nodes linked by MIGRATED_TO edges. Every mutation
// runs in its own transaction on the database holding the chain.
type MigrationLedger struct {
	store    persistence.GraphStore
	logger   coreport.Logger
	scope    entity.Scope
	database string

	mu               sync.Mutex
	identity         string
	identityResolved bool
}

// NewMigrationLedger creates a ledger for one scope. The database names
// where the chain is stored; empty selects the store's default database.
func NewMigrationLedger(
	store persistence.GraphStore,
	logger coreport.Logger,
	scope entity.Scope,
	database string,
) *MigrationLedger {
	return &MigrationLedger{
		store:    store,
		logger:   logger,
		scope:    scope,
		database: database,
	}
}

// scopeParams returns the match parameters for this scope. Empty strings
// become nil so absence matches absence under the coalesce comparisons.
func (l *MigrationLedger) scopeParams() map[string]any {
	return map[string]any{
		"project":          nullable(l.scope.Project),
		"migration_target": nullable(l.scope.Target),
	}
}

// connectedUser resolves the store-side identity of this connection once
// per ledger instance and caches it
func (l *MigrationLedger) connectedUser(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.identityResolved {
		return l.identity, nil
	}

	session := l.store.Session(ctx, l.database)
	defer func() {
		_ = session.Close(ctx)
	}()

	result, err := session.Query(ctx, cypherShowCurrentUser, nil)
	if err != nil {
		return "", err
	}
	if len(result.Records) > 0 {
		if name, ok := result.Records[0]["user"].(string); ok {
			l.identity = name
		}
	}
	l.identityResolved = true
	return l.identity, nil
}

// EnsureBaseline idempotently creates the baseline sentinel for the scope
func (l *MigrationLedger) EnsureBaseline(ctx context.Context) error {
	session := l.store.Session(ctx, l.database)
	defer func() {
		_ = session.Close(ctx)
	}()

	params := l.scopeParams()
	params["version"] = entity.BaselineVersion

	result, err := session.Query(ctx, cypherMatchBaseline, params)
	if err != nil {
		return err
	}
	if len(result.Records) > 0 {
		l.logger.Debug("Baseline already present", map[string]any{
			"project": l.scope.Project,
			"target":  l.scope.Target,
		})
		return nil
	}

	if _, err := session.Query(ctx, cypherCreateBaseline, params); err != nil {
		return err
	}
	l.logger.Info("Baseline created", map[string]any{
		"project": l.scope.Project,
		"target":  l.scope.Target,
	})
	return nil
}

// EnsureUniquenessConstraint idempotently installs the uniqueness constraint
// on (version, project, migrationTarget)
func (l *MigrationLedger) EnsureUniquenessConstraint(ctx context.Context) error {
	session := l.store.Session(ctx, l.database)
	defer func() {
		_ = session.Close(ctx)
	}()

	result, err := session.Query(ctx, cypherCreateConstraint, nil)
	if err != nil {
		return err
	}
	l.logger.Debug("Uniqueness constraint ensured", map[string]any{
		"constraintsAdded": result.Counters.ConstraintsAdded,
	})
	return nil
}

// Append records a migration at the head of the chain. The head is matched
// and linked inside one transaction, so a competing append to the same head
// cannot also commit. With dryRun the transaction is rolled back after the
// write counters confirmed the chain shape.
func (l *MigrationLedger) Append(ctx context.Context, def entity.MigrationDefinition, took coreport.Duration, dryRun bool) error {
	connectedAs, err := l.connectedUser(ctx)
	if err != nil {
		return err
	}

	session := l.store.Session(ctx, l.database)
	defer func() {
		_ = session.Close(ctx)
	}()

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Close(ctx)
	}()

	params := l.scopeParams()
	params["version_to"] = def.Version.String()
	params["description"] = def.Description
	params["type"] = string(def.Kind)
	params["source"] = def.Source
	params["checksum"] = nullable(def.Checksum)
	params["duration"] = took.Seconds()
	params["migrated_by"] = applyingUser()
	params["connected_as"] = nullable(connectedAs)

	result, err := tx.Query(ctx, cypherAppend, params)
	if err != nil {
		return err
	}
	if dryRun {
		if err := tx.Rollback(ctx); err != nil {
			return err
		}
	}
	if result.Counters.NodesCreated != 1 || result.Counters.RelationshipsCreated != 1 {
		l.logger.Error("Chain head match failed", map[string]any{
			"version":              def.Version.String(),
			"nodesCreated":         result.Counters.NodesCreated,
			"relationshipsCreated": result.Counters.RelationshipsCreated,
			"dryRun":               dryRun,
		})
		return errs.NewLedgerIntegrityError("append", result.Counters.NodesCreated, result.Counters.RelationshipsCreated)
	}
	if dryRun {
		l.logger.Debug("Append dry run validated", map[string]any{
			"version": def.Version.String(),
		})
		return nil
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	l.logger.Debug("Migration recorded", map[string]any{
		"version": def.Version.String(),
		"took":    took.Std().String(),
	})
	return nil
}

// FetchApplied returns every applied entry of the scope, baseline excluded,
// ascending by version
func (l *MigrationLedger) FetchApplied(ctx context.Context) ([]entity.LedgerEntry, error) {
	session := l.store.Session(ctx, l.database)
	defer func() {
		_ = session.Close(ctx)
	}()

	params := l.scopeParams()
	params["baseline"] = entity.BaselineVersion

	result, err := session.Query(ctx, cypherFetchApplied, params)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.LedgerEntry, 0, len(result.Records))
	for _, record := range result.Records {
		entry, err := entryFromRecord(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	// the store orders by integer components already; re-sorting on the
	// parsed versions keeps the contract independent of the query
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Version.Less(entries[j].Version)
	})
	return entries, nil
}

// Remove deletes the entry for version and relinks its predecessor to its
// successor inside one transaction, preserving the single path invariant
func (l *MigrationLedger) Remove(ctx context.Context, version entity.Version) error {
	connectedAs, err := l.connectedUser(ctx)
	if err != nil {
		return err
	}

	session := l.store.Session(ctx, l.database)
	defer func() {
		_ = session.Close(ctx)
	}()

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Close(ctx)
	}()

	params := l.scopeParams()
	params["version"] = version.String()

	located, err := tx.Query(ctx, cypherMatchRemovable, params)
	if err != nil {
		return err
	}
	if len(located.Records) == 0 {
		l.logger.Warn("Entry not found in chain", map[string]any{
			"version": version.String(),
		})
		return errs.NewNotFoundError(version.String(), "the migration chain")
	}

	if located.Records[0]["next"] != nil {
		relink := l.scopeParams()
		relink["version"] = version.String()
		relink["rolled_back_by"] = applyingUser()
		relink["connected_as"] = nullable(connectedAs)
		if _, err := tx.Query(ctx, cypherRelinkChain, relink); err != nil {
			return err
		}
	}

	deleted, err := tx.Query(ctx, cypherDeleteEntry, params)
	if err != nil {
		return err
	}
	if count := deletedCount(deleted); count != 1 {
		l.logger.Error("Chain delete affected an unexpected node count", map[string]any{
			"version":      version.String(),
			"deletedCount": count,
		})
		return errs.NewLedgerIntegrityError("remove", count, deleted.Counters.RelationshipsDeleted)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	l.logger.Info("Migration removed from chain", map[string]any{
		"version": version.String(),
	})
	return nil
}
