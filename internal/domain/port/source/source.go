package source

import (
	"context"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

// MigrationSource yields the locally defined migrations
type MigrationSource interface {
	// Load returns every local migration ascending by version. It fails
	// with ErrDuplicateVersion when two definitions share a version and
	// with ErrMalformedVersion when a version cannot be parsed.
	Load(ctx context.Context) ([]entity.Migration, error)
}
