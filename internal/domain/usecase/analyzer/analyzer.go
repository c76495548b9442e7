package analyzer

import (
	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

// Analyze reconciles local migrations with the applied chain. Both inputs
// must be ascending by version: the loader guarantees that for local
// definitions and the ledger for applied entries.
//
// A local version absent from the chain is pending. An applied version
// absent locally is invalid (missing locally). A version present in both
// is compared by checksum; a mismatch is invalid (drifted).
//
// Analyze never mutates the ledger and is safe to call repeatedly and
// concurrently.
func Analyze(local []entity.Migration, applied []entity.LedgerEntry) entity.AnalyzingResult {
	result := entity.AnalyzingResult{}

	i, j := 0, 0
	for i < len(local) && j < len(applied) {
		def := local[i].Definition()
		switch cmp := def.Version.Compare(applied[j].Version); {
		case cmp < 0:
			result.PendingMigrations = append(result.PendingMigrations, local[i])
			i++
		case cmp > 0:
			result.InvalidVersions = append(result.InvalidVersions, entity.InvalidVersion{
				Version: applied[j].Version,
				Status:  entity.StatusMissingLocally,
			})
			j++
		default:
			if def.Checksum != applied[j].Checksum {
				result.InvalidVersions = append(result.InvalidVersions, entity.InvalidVersion{
					Version: applied[j].Version,
					Status:  entity.StatusDrifted,
				})
			}
			i++
			j++
		}
	}
	for ; i < len(local); i++ {
		result.PendingMigrations = append(result.PendingMigrations, local[i])
	}
	for ; j < len(applied); j++ {
		result.InvalidVersions = append(result.InvalidVersions, entity.InvalidVersion{
			Version: applied[j].Version,
			Status:  entity.StatusMissingLocally,
		})
	}

	if len(applied) > 0 {
		latest := applied[len(applied)-1].Version
		result.LatestApplied = &latest
	}
	return result
}
