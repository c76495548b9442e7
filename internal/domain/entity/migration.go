package entity

import "context"

// MigrationKind discriminates how a migration body is expressed
type MigrationKind string

const (
	// KindScript marks a migration defined by a file of Cypher statements
	KindScript MigrationKind = "SCRIPT"
	// KindProcedural marks a migration defined by a registered Go function
	KindProcedural MigrationKind = "PROCEDURAL"
)

// StatementRunner executes Cypher statements inside an open transaction on
// the target store. It is the only store capability a migration body receives,
// so a body can never commit, roll back or escape its surrounding transaction.
type StatementRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// MigrationDefinition describes one migration independent of how its body
// is expressed. Constructed once by the loader and immutable afterwards.
type MigrationDefinition struct {
	Version     Version
	Description string
	Kind        MigrationKind
	Source      string
	Checksum    string // empty when the kind carries no content identity
}

// Migration is one versioned unit of change against the target store.
type Migration interface {
	// Definition returns the metadata recorded in the migration ledger
	Definition() MigrationDefinition
	// Apply executes the forward body inside the supplied transaction
	Apply(ctx context.Context, run StatementRunner) error
	// Rollback executes the backward body inside the supplied transaction.
	// It fails with ErrUnsupportedOperation when no backward body exists.
	Rollback(ctx context.Context, run StatementRunner) error
	// CanRollback reports whether a backward body is defined
	CanRollback() bool
}

// Scope identifies one independent migration chain inside the store.
// The zero value addresses the unnamed project on the default database.
type Scope struct {
	// Project separates chains sharing one database
	Project string
	// Target is the migrated database when it differs from the database
	// holding the migration chain, empty otherwise
	Target string
}

// ResolveScope computes the chain scope and the database holding it. When
// only the migrated database is named it also stores the chain; the target
// is recorded on entries only when the two databases differ.
func ResolveScope(project, database, schemaDatabase string) (Scope, string) {
	if database != "" && schemaDatabase == "" {
		schemaDatabase = database
	}
	target := ""
	if database != schemaDatabase {
		target = database
	}
	return Scope{Project: project, Target: target}, schemaDatabase
}
