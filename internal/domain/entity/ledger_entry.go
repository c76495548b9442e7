package entity

import "time"

// BaselineVersion is the sentinel version of the permanent head entry of
// every migration chain. The baseline carries no description or checksum
// and is never reported as an applied migration.
const BaselineVersion = "BASELINE"

// LedgerEntry is one applied migration as recorded in the store, together
// with the operator metadata carried on its incoming chain edge.
type LedgerEntry struct {
	Version     Version
	Description string
	Kind        MigrationKind
	Source      string
	Checksum    string

	// Edge metadata, zero valued when the store predates it
	AppliedAt   time.Time
	Took        time.Duration
	AppliedBy   string
	ConnectedAs string
}
