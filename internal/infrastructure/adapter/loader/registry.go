package loader

import (
	"sync"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

// Registry collects migrations implemented in code. Applications embedding
// the migrator register their procedural migrations here before loading;
// FilesystemSource merges them with the script migrations on disk.
type Registry struct {
	mu         sync.Mutex
	migrations []entity.Migration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a migration. The migration must not be nil; version
// collisions against other local migrations surface during Load.
func (r *Registry) Register(migration entity.Migration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.migrations = append(r.migrations, migration)
}

// Migrations returns a copy of the registered migrations
func (r *Registry) Migrations() []entity.Migration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}
