package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

func scriptMigration(version, script string) *entity.ScriptMigration {
	return entity.NewScriptMigration(
		entity.MustParseVersion(version), "", "V"+version+"__test.cypher", script)
}

func appliedEntry(version, checksum string) entity.LedgerEntry {
	return entity.LedgerEntry{
		Version:  entity.MustParseVersion(version),
		Kind:     entity.KindScript,
		Checksum: checksum,
	}
}

// appliedFrom records a local migration as if it had been applied unchanged
func appliedFrom(m entity.Migration) entity.LedgerEntry {
	def := m.Definition()
	return entity.LedgerEntry{
		Version:  def.Version,
		Kind:     def.Kind,
		Checksum: def.Checksum,
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("should report nothing for empty inputs", func(t *testing.T) {
		result := Analyze(nil, nil)

		assert.Empty(t, result.PendingMigrations)
		assert.Empty(t, result.InvalidVersions)
		assert.Nil(t, result.LatestApplied)
		assert.True(t, result.Valid())
	})

	t.Run("should mark every local migration pending on a fresh store", func(t *testing.T) {
		local := []entity.Migration{
			scriptMigration("0001", "CREATE (a:X);"),
			scriptMigration("0002", "CREATE (b:Y);"),
		}

		result := Analyze(local, nil)

		require.Len(t, result.PendingMigrations, 2)
		assert.Equal(t, "0001", result.PendingMigrations[0].Definition().Version.String())
		assert.Equal(t, "0002", result.PendingMigrations[1].Definition().Version.String())
		assert.Nil(t, result.LatestApplied)
		assert.True(t, result.Valid())
	})

	t.Run("should report nothing pending when everything is applied", func(t *testing.T) {
		first := scriptMigration("0001", "CREATE (a:X);")
		second := scriptMigration("0002", "CREATE (b:Y);")
		applied := []entity.LedgerEntry{appliedFrom(first), appliedFrom(second)}

		result := Analyze([]entity.Migration{first, second}, applied)

		assert.Empty(t, result.PendingMigrations)
		assert.True(t, result.Valid())
		require.NotNil(t, result.LatestApplied)
		assert.Equal(t, "0002", result.LatestApplied.String())
	})

	t.Run("should report only the unapplied tail as pending", func(t *testing.T) {
		first := scriptMigration("0001", "CREATE (a:X);")
		second := scriptMigration("0002", "CREATE (b:Y);")
		third := scriptMigration("0003", "CREATE (c:Z);")

		result := Analyze(
			[]entity.Migration{first, second, third},
			[]entity.LedgerEntry{appliedFrom(first)},
		)

		require.Len(t, result.PendingMigrations, 2)
		assert.Equal(t, "0002", result.PendingMigrations[0].Definition().Version.String())
		assert.Equal(t, "0003", result.PendingMigrations[1].Definition().Version.String())
		require.NotNil(t, result.LatestApplied)
		assert.Equal(t, "0001", result.LatestApplied.String())
	})

	t.Run("should flag a checksum mismatch as drifted", func(t *testing.T) {
		local := scriptMigration("0001", "CREATE (a:X);")

		result := Analyze(
			[]entity.Migration{local},
			[]entity.LedgerEntry{appliedEntry("0001", "1111111111")},
		)

		assert.False(t, result.Valid())
		require.Len(t, result.InvalidVersions, 1)
		assert.Equal(t, "0001", result.InvalidVersions[0].Version.String())
		assert.Equal(t, entity.StatusDrifted, result.InvalidVersions[0].Status)
		assert.Empty(t, result.PendingMigrations)
	})

	t.Run("should flag an applied version without a local definition", func(t *testing.T) {
		first := scriptMigration("0001", "CREATE (a:X);")
		third := scriptMigration("0003", "CREATE (c:Z);")
		applied := []entity.LedgerEntry{
			appliedFrom(first),
			appliedEntry("0002", "2222222222"),
			appliedFrom(third),
		}

		result := Analyze([]entity.Migration{first, third}, applied)

		assert.False(t, result.Valid())
		require.Len(t, result.InvalidVersions, 1)
		assert.Equal(t, "0002", result.InvalidVersions[0].Version.String())
		assert.Equal(t, entity.StatusMissingLocally, result.InvalidVersions[0].Status)
		assert.Empty(t, result.PendingMigrations)
	})

	t.Run("should flag applied versions beyond the local tail", func(t *testing.T) {
		first := scriptMigration("0001", "CREATE (a:X);")
		applied := []entity.LedgerEntry{
			appliedFrom(first),
			appliedEntry("0002", "2222222222"),
		}

		result := Analyze([]entity.Migration{first}, applied)

		require.Len(t, result.InvalidVersions, 1)
		assert.Equal(t, entity.StatusMissingLocally, result.InvalidVersions[0].Status)
		require.NotNil(t, result.LatestApplied)
		assert.Equal(t, "0002", result.LatestApplied.String())
	})

	t.Run("should match versions numerically regardless of leading zeros", func(t *testing.T) {
		local := scriptMigration("0001", "CREATE (a:X);")
		applied := entity.LedgerEntry{
			Version:  entity.MustParseVersion("1"),
			Kind:     entity.KindScript,
			Checksum: local.Definition().Checksum,
		}

		result := Analyze([]entity.Migration{local}, []entity.LedgerEntry{applied})

		assert.True(t, result.Valid())
		assert.Empty(t, result.PendingMigrations)
	})

	t.Run("should accept procedural migrations without checksums", func(t *testing.T) {
		local := entity.NewProceduralMigration(
			entity.MustParseVersion("0001"), "seed", "seed.go", nil)
		applied := []entity.LedgerEntry{{
			Version: entity.MustParseVersion("0001"),
			Kind:    entity.KindProcedural,
		}}

		result := Analyze([]entity.Migration{local}, applied)

		assert.True(t, result.Valid())
		assert.Empty(t, result.PendingMigrations)
	})
}
