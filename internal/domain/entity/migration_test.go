package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveScope(t *testing.T) {
	t.Run("should leave everything empty for the default database", func(t *testing.T) {
		scope, schemaDatabase := ResolveScope("", "", "")

		assert.Equal(t, Scope{}, scope)
		assert.Empty(t, schemaDatabase)
	})

	t.Run("should store the chain in the migrated database by default", func(t *testing.T) {
		scope, schemaDatabase := ResolveScope("", "test", "")

		assert.Equal(t, "test", schemaDatabase)
		assert.Empty(t, scope.Target, "target is only recorded when the databases differ")
	})

	t.Run("should record the target when the chain lives elsewhere", func(t *testing.T) {
		scope, schemaDatabase := ResolveScope("", "test1", "test2")

		assert.Equal(t, "test2", schemaDatabase)
		assert.Equal(t, "test1", scope.Target)
	})

	t.Run("should allow a chain database without a named target", func(t *testing.T) {
		scope, schemaDatabase := ResolveScope("", "", "test2")

		assert.Equal(t, "test2", schemaDatabase)
		assert.Empty(t, scope.Target)
	})

	t.Run("should carry the project into the scope", func(t *testing.T) {
		scope, _ := ResolveScope("billing", "db", "")

		assert.Equal(t, "billing", scope.Project)
	})
}
