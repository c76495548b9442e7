package usecase

import (
	"context"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

// Phase is the observable state of the executor state machine
type Phase int32

const (
	// PhaseIdle means no operation is in flight
	PhaseIdle Phase = iota
	// PhaseAnalyzing means local and applied migrations are being reconciled
	PhaseAnalyzing
	// PhaseBlocked means the last analysis found invalid versions
	PhaseBlocked
	// PhaseReady means the last analysis finished with no findings
	PhaseReady
	// PhaseApplying means pending migrations are being applied
	PhaseApplying
	// PhaseRollingBack means applied migrations are being rolled back
	PhaseRollingBack
)

// String returns a human readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseBlocked:
		return "blocked"
	case PhaseReady:
		return "ready"
	case PhaseApplying:
		return "applying"
	case PhaseRollingBack:
		return "rolling back"
	default:
		return "unknown"
	}
}

// MigrationHook is called for each migration inside its transaction, after
// the body succeeded and before the transaction commits. A non nil error
// aborts that transaction and halts the remaining batch.
type MigrationHook func(m entity.Migration) error

// MigrationUseCase drives analysis, forward migration and rollback against
// one (project, target) scope
type MigrationUseCase interface {
	// Analyze reconciles local definitions with the applied chain without
	// mutating anything; safe to call repeatedly
	Analyze(ctx context.Context) (entity.AnalyzingResult, error)

	// Migrate applies pending migrations in ascending version order, up to
	// and including targetVersion when non empty
	Migrate(ctx context.Context, targetVersion string, onApply MigrationHook) error

	// Rollback reverts the most recently applied migration, or with a non
	// empty targetVersion every migration applied strictly after it,
	// newest first
	Rollback(ctx context.Context, targetVersion string, onRollback MigrationHook) error

	// History returns the applied chain for the scope, baseline excluded,
	// ascending by version
	History(ctx context.Context) ([]entity.LedgerEntry, error)

	// Phase reports the executor's current state
	Phase() Phase
}
