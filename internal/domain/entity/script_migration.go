package entity

import (
	"context"
	"hash/crc32"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
)

// Section markers inside a migration script. A script without markers is
// treated as forward-only.
const (
	upMarker   = "↑UP-MIGRATION"
	downMarker = "// ↓DOWN-MIGRATION"
)

// ScriptMigration is a migration whose bodies are Cypher statements parsed
// from a script. Statements are separated by ";" and run one at a time
// inside the migration transaction.
type ScriptMigration struct {
	def              MigrationDefinition
	forward          []string
	backward         []string
	backwardChecksum string
}

// NewScriptMigration parses the script into forward and backward statement
// sequences and computes their checksums.
func NewScriptMigration(version Version, description, source, script string) *ScriptMigration {
	forwardSection, backwardSection := splitSections(script)
	m := &ScriptMigration{
		forward:  splitStatements(forwardSection),
		backward: splitStatements(backwardSection),
	}
	m.def = MigrationDefinition{
		Version:     version,
		Description: description,
		Kind:        KindScript,
		Source:      source,
		Checksum:    checksumStatements(m.forward),
	}
	m.backwardChecksum = checksumStatements(m.backward)
	return m
}

// splitSections separates the script at its section markers. A script with
// no markers is one forward section; the backward section starts at the
// first down marker.
func splitSections(script string) (forward, backward string) {
	hasUp := strings.Contains(script, upMarker)
	hasDown := strings.Contains(script, downMarker)
	if !hasUp && !hasDown {
		return script, ""
	}
	if hasUp {
		rest := script[strings.Index(script, upMarker)+len(upMarker):]
		if i := strings.Index(rest, downMarker); i >= 0 {
			forward = rest[:i]
		} else {
			forward = rest
		}
	}
	if hasDown {
		backward = script[strings.Index(script, downMarker)+len(downMarker):]
	}
	return forward, backward
}

// splitStatements splits a section on ";" and trims each statement,
// dropping empty ones.
func splitStatements(section string) []string {
	parts := strings.Split(section, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// checksumStatements accumulates a CRC-32 over the statement sequence.
// Identical statements in identical order always yield the same value;
// reordering or editing any statement changes it. Empty sequences have
// no checksum.
func checksumStatements(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	var crc uint32
	for _, statement := range statements {
		crc = crc32.Update(crc, crc32.IEEETable, []byte(statement))
	}
	return strconv.FormatUint(uint64(crc), 10)
}

// Definition returns the metadata recorded in the migration ledger
func (m *ScriptMigration) Definition() MigrationDefinition {
	return m.def
}

// ForwardStatements returns the parsed forward statements in script order
func (m *ScriptMigration) ForwardStatements() []string {
	return m.forward
}

// BackwardStatements returns the parsed backward statements in script order
func (m *ScriptMigration) BackwardStatements() []string {
	return m.backward
}

// BackwardChecksum returns the checksum of the backward statements, empty
// when the script declares no backward section
func (m *ScriptMigration) BackwardChecksum() string {
	return m.backwardChecksum
}

// Apply runs each forward statement in order
func (m *ScriptMigration) Apply(ctx context.Context, run StatementRunner) error {
	for _, statement := range m.forward {
		if err := run.Run(ctx, statement, nil); err != nil {
			return err
		}
	}
	return nil
}

// Rollback runs each backward statement in order
func (m *ScriptMigration) Rollback(ctx context.Context, run StatementRunner) error {
	if !m.CanRollback() {
		return errs.NewUnsupportedOperationError(m.def.Version.String(), "rollback")
	}
	for _, statement := range m.backward {
		if err := run.Run(ctx, statement, nil); err != nil {
			return err
		}
	}
	return nil
}

// CanRollback reports whether the script declared a backward section with
// at least one statement
func (m *ScriptMigration) CanRollback() bool {
	return len(m.backward) > 0
}
