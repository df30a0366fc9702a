package domain

// ListFilter selects a page of stored records. An empty PartyID lists every party.
type ListFilter struct {
	PartyID string
	Offset  int
	Limit   int
}

// RewrapResult summarizes a rewrap run.
type RewrapResult struct {
	// TargetVersion is the master key version every processed record now uses.
	TargetVersion uint
	// Scanned counts records read below TargetVersion.
	Scanned int
	// Rewrapped counts records whose wrapped DEK was replaced and persisted.
	Rewrapped int
}
