package models

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Meeting occupies the half-open interval [StartTime, EndTime) on its
// owner's calendar. Meetings with Done set no longer occupy their slot
// even though the record is kept.
type Meeting struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Priority    string
	Done        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
