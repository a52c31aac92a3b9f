package storage

import (
	"context"
	"errors"
	"time"

	"github.com/procurax/meetings/internal/models"
)

// ErrMeetingNotFound is returned for ids that don't exist as well as for
// ids that belong to another owner, so a caller can't tell the two apart.
var ErrMeetingNotFound = errors.New("meeting not found")

// ListFilter narrows the result of List. The From/To range is applied
// only when both bounds are set.
type ListFilter struct {
	Title string
	From  time.Time
	To    time.Time
	Done  *bool
}

type MeetingStore interface {
	Create(ctx context.Context, meeting *models.Meeting) error

	// GetByID returns ErrMeetingNotFound when the id is unknown
	// or owned by a different owner.
	GetByID(ctx context.Context, ownerID, id string) (*models.Meeting, error)

	// Update rewrites every mutable field of the meeting identified by
	// meeting.ID and meeting.OwnerID.
	Update(ctx context.Context, meeting *models.Meeting) error

	// SetDone marks the meeting done and returns the updated record.
	SetDone(ctx context.Context, ownerID, id string) (*models.Meeting, error)

	Delete(ctx context.Context, ownerID, id string) error

	// FindOverlapping returns the owner's active meetings whose interval
	// intersects [start, end) under the half-open rule, i.e. meetings
	// with start_time < end AND end_time > start. A non-empty excludeID
	// removes that meeting from the candidate set.
	FindOverlapping(ctx context.Context, ownerID string, start, end time.Time, excludeID string) ([]*models.Meeting, error)

	// ListActiveAscending returns the owner's active meetings ordered
	// by start time ascending.
	ListActiveAscending(ctx context.Context, ownerID string) ([]*models.Meeting, error)

	// List returns the owner's meetings matching the filter, ordered by
	// start time ascending.
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Meeting, error)
}
