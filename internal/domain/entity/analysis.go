package entity

// InvalidVersionStatus classifies why an applied entry failed verification
type InvalidVersionStatus int

const (
	// StatusDrifted means the local and applied checksums differ for one version
	StatusDrifted InvalidVersionStatus = iota
	// StatusMissingLocally means an applied version has no local definition
	StatusMissingLocally
)

// String returns a human readable status name
func (s InvalidVersionStatus) String() string {
	switch s {
	case StatusDrifted:
		return "drifted"
	case StatusMissingLocally:
		return "missing locally"
	default:
		return "unknown"
	}
}

// InvalidVersion pairs a version with the reason it failed verification
type InvalidVersion struct {
	Version Version
	Status  InvalidVersionStatus
}

// AnalyzingResult is the outcome of reconciling local definitions with the
// applied migration chain
type AnalyzingResult struct {
	// PendingMigrations are local migrations not yet applied, ascending by version
	PendingMigrations []Migration
	// InvalidVersions are applied entries that drifted or lost their local definition
	InvalidVersions []InvalidVersion
	// LatestApplied is the most recently applied version, nil when the chain
	// holds only the baseline
	LatestApplied *Version
}

// Valid reports whether verification produced no invalid findings
func (r AnalyzingResult) Valid() bool {
	return len(r.InvalidVersions) == 0
}
