package dto

// StatusResponse represents the API response for the migration status endpoint
type StatusResponse struct {
	Phase           string             `json:"phase"`
	LatestApplied   string             `json:"latestApplied,omitempty"`
	PendingCount    int                `json:"pendingCount"`
	InvalidCount    int                `json:"invalidCount"`
	Pending         []PendingMigration `json:"pending,omitempty"`
	InvalidVersions []InvalidVersion   `json:"invalidVersions,omitempty"`
}

// PendingMigration describes one local migration that has not been applied yet
type PendingMigration struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Source      string `json:"source"`
}

// InvalidVersion describes one applied version the analysis flagged
type InvalidVersion struct {
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HistoryResponse represents the API response for the migration history endpoint
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// HistoryEntry represents one applied migration from the ledger
type HistoryEntry struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Source      string `json:"source"`
	Checksum    string `json:"checksum,omitempty"`
	AppliedAt   string `json:"appliedAt"`
	TookMs      int64  `json:"tookMs"`
	AppliedBy   string `json:"appliedBy"`
	ConnectedAs string `json:"connectedAs"`
}

// HealthResponse represents the API response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
