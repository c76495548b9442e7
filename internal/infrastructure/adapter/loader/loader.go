package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
)

// namePattern matches migration file names such as
// V0001__initial_migration.cypher and V0_20_0__add_index.cypher.
// Underscores in the version become dots, underscores in the description
// become spaces. Files that do not match are ignored.
var namePattern = regexp.MustCompile(`^V(\d+(?:_\d+)*|\d+(?:\.\d+)*)__([\w ]+)(?:\.(\w+))?`)

// FilesystemSource loads script migrations from one directory and merges in
// the procedural migrations registered in code
type FilesystemSource struct {
	path     string
	registry *Registry
	logger   coreport.Logger
}

// NewFilesystemSource creates a migration source over a directory. The
// registry may be nil when no procedural migrations exist.
func NewFilesystemSource(path string, registry *Registry, logger coreport.Logger) *FilesystemSource {
	return &FilesystemSource{
		path:     path,
		registry: registry,
		logger:   logger,
	}
}

// Load returns every local migration ascending by version
func (s *FilesystemSource) Load(_ context.Context) ([]entity.Migration, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	migrations := make([]entity.Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		migration, ok, err := s.loadFile(entry.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			migrations = append(migrations, migration)
		}
	}

	if s.registry != nil {
		migrations = append(migrations, s.registry.Migrations()...)
	}

	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].Definition().Version.Less(migrations[j].Definition().Version)
	})

	// versions compare numerically, so V1 and V0001 collide even though
	// their file names differ
	for i := 1; i < len(migrations); i++ {
		previous := migrations[i-1].Definition()
		current := migrations[i].Definition()
		if previous.Version.Equal(current.Version) {
			return nil, errs.NewDuplicateVersionError(current.Version.String(), previous.Source, current.Source)
		}
	}

	s.logger.Debug("Local migrations loaded", map[string]any{
		"path":  s.path,
		"count": len(migrations),
	})
	return migrations, nil
}

// loadFile parses one directory entry; ok is false when the file is not a
// migration script
func (s *FilesystemSource) loadFile(name string) (entity.Migration, bool, error) {
	if !strings.HasSuffix(name, ".cypher") {
		return nil, false, nil
	}
	match := namePattern.FindStringSubmatch(name)
	if match == nil || match[3] != "cypher" {
		s.logger.Debug("Skipping file without a migration name", map[string]any{
			"file": name,
		})
		return nil, false, nil
	}

	version, err := entity.ParseVersion(strings.ReplaceAll(match[1], "_", "."))
	if err != nil {
		return nil, false, err
	}
	description := strings.TrimSpace(strings.ReplaceAll(match[2], "_", " "))

	content, err := os.ReadFile(filepath.Join(s.path, name))
	if err != nil {
		return nil, false, fmt.Errorf("reading migration %s: %w", name, err)
	}
	return entity.NewScriptMigration(version, description, name, string(content)), true, nil
}
