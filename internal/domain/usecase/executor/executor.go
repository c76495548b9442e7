package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/source"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/usecase/analyzer"
)

// Executor orchestrates analysis, forward migration and rollback for one
// scope. Migrations are always applied strictly one at a time, in version
// order, because each step depends on the chain state left by the previous
// one. Calls on one instance are serialized; racing processes are fenced by
// the ledger's append protocol.
type Executor struct {
	store        persistence.GraphStore
	ledger       persistence.Ledger
	source       source.MigrationSource
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	// database receives the migration bodies; empty selects the store's
	// default database. The chain itself may live elsewhere.
	database string

	mu    sync.Mutex
	phase atomic.Int32
}

// NewExecutor creates a migration executor for one scope
func NewExecutor(
	store persistence.GraphStore,
	ledger persistence.Ledger,
	migrationSource source.MigrationSource,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	database string,
) usecase.MigrationUseCase {
	return &Executor{
		store:        store,
		ledger:       ledger,
		source:       migrationSource,
		timeProvider: timeProvider,
		logger:       logger,
		database:     database,
	}
}

// Phase reports the executor's current state
func (e *Executor) Phase() usecase.Phase {
	return usecase.Phase(e.phase.Load())
}

func (e *Executor) setPhase(p usecase.Phase) {
	e.phase.Store(int32(p))
}

// Analyze reconciles local definitions with the applied chain without
// mutating anything
func (e *Executor) Analyze(ctx context.Context) (entity.AnalyzingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.analyze(ctx)
}

// analyze loads both sides and reconciles them; the caller must hold mu.
// It leaves the phase at ready or blocked so callers can branch on it.
func (e *Executor) analyze(ctx context.Context) (entity.AnalyzingResult, error) {
	e.setPhase(usecase.PhaseAnalyzing)

	local, err := e.source.Load(ctx)
	if err != nil {
		e.setPhase(usecase.PhaseIdle)
		return entity.AnalyzingResult{}, err
	}
	applied, err := e.ledger.FetchApplied(ctx)
	if err != nil {
		e.setPhase(usecase.PhaseIdle)
		return entity.AnalyzingResult{}, err
	}

	result := analyzer.Analyze(local, applied)
	if result.Valid() {
		e.setPhase(usecase.PhaseReady)
	} else {
		e.setPhase(usecase.PhaseBlocked)
	}
	return result, nil
}

// Migrate applies pending migrations in ascending version order. With a non
// empty targetVersion only the pending prefix up to and including it is
// applied. A failing step aborts its own transaction and halts the batch;
// earlier migrations stay committed.
func (e *Executor) Migrate(ctx context.Context, targetVersion string, onApply usecase.MigrationHook) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// every exit except a blocking verification failure returns the
	// machine to idle
	defer func() {
		if e.Phase() != usecase.PhaseBlocked {
			e.setPhase(usecase.PhaseIdle)
		}
	}()

	result, err := e.analyze(ctx)
	if err != nil {
		return err
	}
	if !result.Valid() {
		findings := make([]string, len(result.InvalidVersions))
		for i, invalid := range result.InvalidVersions {
			findings[i] = fmt.Sprintf("%s (%s)", invalid.Version, invalid.Status)
		}
		e.logger.Warn("Migration blocked by invalid versions", map[string]any{
			"invalidVersions": findings,
		})
		return errs.NewValidationError("invalid versions found, run the analyze command for details", findings...)
	}

	if result.LatestApplied == nil {
		if err := e.ledger.EnsureBaseline(ctx); err != nil {
			return err
		}
		if err := e.ledger.EnsureUniquenessConstraint(ctx); err != nil {
			return err
		}
	}

	selected := result.PendingMigrations
	if targetVersion != "" {
		selected, err = pendingThrough(selected, targetVersion)
		if err != nil {
			return err
		}
	}
	if len(selected) == 0 {
		e.logger.Debug("No pending migrations", nil)
		return nil
	}

	e.setPhase(usecase.PhaseApplying)
	for _, migration := range selected {
		if err := e.applyOne(ctx, migration, onApply); err != nil {
			return err
		}
	}
	return nil
}

// pendingThrough cuts pending down to the prefix ending at rawVersion
func pendingThrough(pending []entity.Migration, rawVersion string) ([]entity.Migration, error) {
	target, err := entity.ParseVersion(rawVersion)
	if err != nil {
		return nil, err
	}
	for i, migration := range pending {
		if migration.Definition().Version.Equal(target) {
			return pending[:i+1], nil
		}
	}
	return nil, errs.NewNotFoundError(rawVersion, "pending migrations")
}

// applyOne records, runs and commits a single migration. The dry run append
// validates the chain shape before the body runs; the real append afterwards
// makes the step durable. A conflicting writer can still slip between the
// two, in which case the real append fails and the batch halts.
func (e *Executor) applyOne(ctx context.Context, migration entity.Migration, onApply usecase.MigrationHook) error {
	def := migration.Definition()
	e.logger.Info("Applying migration", map[string]any{
		"version":     def.Version.String(),
		"description": def.Description,
		"source":      def.Source,
	})

	if err := e.ledger.Append(ctx, def, 0, true); err != nil {
		return err
	}

	session := e.store.Session(ctx, e.database)
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

	start := e.timeProvider.Now()
	if err := migration.Apply(ctx, tx); err != nil {
		e.logger.Error("Migration body failed", map[string]any{
			"version": def.Version.String(),
			"error":   err.Error(),
		})
		return err
	}
	took := e.timeProvider.Since(start)

	if onApply != nil {
		if err := onApply(migration); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if err := e.ledger.Append(ctx, def, took, false); err != nil {
		return err
	}
	e.logger.Info("Migration applied", map[string]any{
		"version": def.Version.String(),
		"took":    took.Std().String(),
	})
	return nil
}

// Rollback reverts the most recently applied migration, or with a non empty
// targetVersion every migration applied strictly after it, newest first.
// Earlier entries rolled back in the same call stay rolled back when a later
// step fails.
func (e *Executor) Rollback(ctx context.Context, targetVersion string, onRollback usecase.MigrationHook) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.setPhase(usecase.PhaseIdle)

	applied, err := e.ledger.FetchApplied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return errs.NewValidationError("no migrations to rollback")
	}

	var selected []entity.LedgerEntry
	if targetVersion == "" {
		selected = []entity.LedgerEntry{applied[len(applied)-1]}
	} else {
		target, err := entity.ParseVersion(targetVersion)
		if err != nil {
			return err
		}
		idx := -1
		for i, entry := range applied {
			if entry.Version.Equal(target) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errs.NewNotFoundError(targetVersion, "applied migrations")
		}
		for i := len(applied) - 1; i > idx; i-- {
			selected = append(selected, applied[i])
		}
	}

	local, err := e.source.Load(ctx)
	if err != nil {
		return err
	}

	e.setPhase(usecase.PhaseRollingBack)
	for _, entry := range selected {
		if err := e.rollbackOne(ctx, entry, local, onRollback); err != nil {
			return err
		}
	}
	return nil
}

// rollbackOne reverts a single applied entry using its local definition
func (e *Executor) rollbackOne(ctx context.Context, entry entity.LedgerEntry, local []entity.Migration, onRollback usecase.MigrationHook) error {
	migration := findByVersion(local, entry.Version)
	if migration == nil {
		e.logger.Error("Local migration definition missing", map[string]any{
			"version": entry.Version.String(),
		})
		return errs.NewNotFoundError(entry.Version.String(), "local definitions")
	}
	if !migration.CanRollback() {
		return errs.NewUnsupportedOperationError(entry.Version.String(), "rollback")
	}

	e.logger.Info("Rolling back migration", map[string]any{
		"version":     entry.Version.String(),
		"description": entry.Description,
	})

	session := e.store.Session(ctx, e.database)
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

	if err := migration.Rollback(ctx, tx); err != nil {
		e.logger.Error("Rollback body failed", map[string]any{
			"version": entry.Version.String(),
			"error":   err.Error(),
		})
		return err
	}
	if onRollback != nil {
		if err := onRollback(migration); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if err := e.ledger.Remove(ctx, entry.Version); err != nil {
		return err
	}
	e.logger.Info("Migration rolled back", map[string]any{
		"version": entry.Version.String(),
	})
	return nil
}

// History returns the applied chain for the scope, baseline excluded. It
// does not serialize against running operations; it reflects whatever the
// ledger holds at the moment of the read.
func (e *Executor) History(ctx context.Context) ([]entity.LedgerEntry, error) {
	return e.ledger.FetchApplied(ctx)
}

func findByVersion(local []entity.Migration, version entity.Version) entity.Migration {
	for _, migration := range local {
		if migration.Definition().Version.Equal(version) {
			return migration
		}
	}
	return nil
}
