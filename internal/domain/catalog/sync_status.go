package catalog

// SyncStatus is the derived review state of a product
type SyncStatus string

const (
	SyncStatusBlocked    SyncStatus = "Blocked"
	SyncStatusIncomplete SyncStatus = "Incomplete"
	SyncStatusSynced     SyncStatus = "Synced"
	SyncStatusUnreviewed SyncStatus = "Unreviewed"
)

// SyncStatusResult is a status with the notes explaining it
type SyncStatusResult struct {
	Status SyncStatus `json:"status"`
	Notes  []string   `json:"notes"`
}

// DeriveSyncStatus evaluates, in priority order: a blocked product is
// Blocked; a product missing title or UPC is Incomplete; an approved
// product is Synced; anything else is Unreviewed.
func DeriveSyncStatus(p *Product) SyncStatusResult {
	if p.Blocked {
		return SyncStatusResult{Status: SyncStatusBlocked, Notes: []string{"Product is manually blocked"}}
	}

	var notes []string
	if p.Title == "" {
		notes = append(notes, "Missing title")
	}
	if p.UPC == "" {
		notes = append(notes, "Missing UPC")
	}
	if len(notes) > 0 {
		return SyncStatusResult{Status: SyncStatusIncomplete, Notes: notes}
	}

	if p.ApprovedForSync {
		return SyncStatusResult{Status: SyncStatusSynced, Notes: []string{"Successfully added to Synced products"}}
	}
	return SyncStatusResult{Status: SyncStatusUnreviewed, Notes: []string{}}
}
