package repository

import (
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
)

// nullable turns an empty string into nil so absence matches absence under
// the coalesce comparisons in the chain queries
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// applyingUser resolves the operating system user recorded on chain edges
func applyingUser() string {
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}
	return os.Getenv("USER")
}

// entryFromRecord converts one chain query row into a ledger entry. The row
// carries the migration node under "m" and its incoming edge under "link".
func entryFromRecord(record persistence.Record) (entity.LedgerEntry, error) {
	props, ok := record["m"].(map[string]any)
	if !ok {
		return entity.LedgerEntry{}, fmt.Errorf("%w: unexpected record shape in chain query", errs.ErrLedgerIntegrity)
	}

	version, err := entity.ParseVersion(stringProp(props, "version"))
	if err != nil {
		return entity.LedgerEntry{}, err
	}
	entry := entity.LedgerEntry{
		Version:     version,
		Description: stringProp(props, "description"),
		Kind:        entity.MigrationKind(stringProp(props, "type")),
		Source:      stringProp(props, "source"),
		Checksum:    stringProp(props, "checksum"),
	}

	if link, ok := record["link"].(map[string]any); ok {
		if at, ok := link["at"].(time.Time); ok {
			entry.AppliedAt = at
		}
		if took, ok := link["in"].(time.Duration); ok {
			entry.Took = took
		}
		entry.AppliedBy = stringProp(link, "by")
		entry.ConnectedAs = stringProp(link, "connectedAs")
	}
	return entry, nil
}

// stringProp reads a string property, tolerating absent and non-string values
func stringProp(props map[string]any, key string) string {
	if value, ok := props[key].(string); ok {
		return value
	}
	return ""
}

// deletedCount reads the deleted_count column of a chain delete result
func deletedCount(result *persistence.CypherResult) int {
	if len(result.Records) == 0 {
		return 0
	}
	switch count := result.Records[0]["deleted_count"].(type) {
	case int64:
		return int(count)
	case int:
		return count
	default:
		return 0
	}
}
