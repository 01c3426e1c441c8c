package domain

import "time"

// AuditEntry is an append-only record of something that happened to a
// phase allocation.
type AuditEntry struct {
	ID                string
	PhaseAllocationID string
	Action            AuditAction
	Detail            string
	CreatedAt         time.Time
}

// ApprovalBatch records the outcome of one batch approval call.
type ApprovalBatch struct {
	ID           string
	Action       WeeklyEvent
	ItemCount    int
	UpdatedCount int
	FailedCount  int
	CreatedAt    time.Time
}
