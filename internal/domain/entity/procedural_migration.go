package entity

import (
	"context"

	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
)

// MigrationFunc is a migration body expressed in Go. It runs inside one
// transaction on the target store and must not retain the runner.
type MigrationFunc func(ctx context.Context, run StatementRunner) error

// ProceduralMigration is a migration whose bodies are Go functions registered
// at startup. It carries no checksum because a function has no stable
// content identity, so drift detection does not apply to this kind.
type ProceduralMigration struct {
	def      MigrationDefinition
	forward  MigrationFunc
	backward MigrationFunc
}

// NewProceduralMigration builds a forward-only procedural migration
func NewProceduralMigration(version Version, description, source string, forward MigrationFunc) *ProceduralMigration {
	return &ProceduralMigration{
		def: MigrationDefinition{
			Version:     version,
			Description: description,
			Kind:        KindProcedural,
			Source:      source,
		},
		forward: forward,
	}
}

// WithRollback attaches a backward body. Call before the migration is
// handed to the loader; definitions are immutable once loaded.
func (m *ProceduralMigration) WithRollback(backward MigrationFunc) *ProceduralMigration {
	m.backward = backward
	return m
}

// Definition returns the metadata recorded in the migration ledger
func (m *ProceduralMigration) Definition() MigrationDefinition {
	return m.def
}

// Apply runs the forward function
func (m *ProceduralMigration) Apply(ctx context.Context, run StatementRunner) error {
	return m.forward(ctx, run)
}

// Rollback runs the backward function
func (m *ProceduralMigration) Rollback(ctx context.Context, run StatementRunner) error {
	if !m.CanRollback() {
		return errs.NewUnsupportedOperationError(m.def.Version.String(), "rollback")
	}
	return m.backward(ctx, run)
}

// CanRollback reports whether a backward function was registered
func (m *ProceduralMigration) CanRollback() bool {
	return m.backward != nil
}
