package storage

import "time"

// Fact validation statuses.
const (
	FactStatusPending  = "pending"
	FactStatusApproved = "approved"
	FactStatusRejected = "rejected"
)

// FactRecord represents an extracted fact saved for human validation.
type FactRecord struct {
	ID            string // UUID
	Content       string // Claim text
	SourceContext string // References the originating query
	Tags          []string
	Confidence    float64 // Extraction confidence in [0,1]
	Status        string  // pending, approved, or rejected
	CreatedAt     time.Time
	ReviewedAt    *time.Time // Set when status leaves pending
}
