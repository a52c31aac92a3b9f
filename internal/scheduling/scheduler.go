// Package scheduling guards every meeting write with an interval-overlap
// check and proposes the next free slot when a write is rejected.
package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/storage"
)

// DefaultSlotDuration is the length of a suggested slot when the caller
// doesn't ask for a specific one.
const DefaultSlotDuration = 60 * time.Minute

// Slot is a proposed free interval. It is a best-effort hint: it is not
// re-validated after computation, so a caller that needs a guarantee must
// run FindConflicts on it before committing.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ConflictError reports the active meetings blocking a candidate interval.
// Suggestion is set on the schedule path only; reschedule rejections carry
// the conflicting set alone.
type ConflictError struct {
	Conflicts  []*models.Meeting
	Suggestion *Slot
}

func (e *ConflictError) Error() string {
	return "meeting time conflicts with existing meetings"
}

// Scheduler serializes check-and-write per owner. The conflict check and
// the subsequent store write are separate operations, so without the
// owner lock two concurrent requests could both observe a free interval
// and both commit.
type Scheduler struct {
	logger zerolog.Logger
	store  storage.MeetingStore

	mu     sync.Mutex
	owners map[string]*sync.Mutex
}

func NewScheduler(
	logger zerolog.Logger,
	store storage.MeetingStore,
) *Scheduler {
	return &Scheduler{
		logger: logger,
		store:  store,
		owners: make(map[string]*sync.Mutex),
	}
}

// FindConflicts returns every active meeting of the owner whose interval
// intersects [start, end). Intervals are half-open, so a meeting ending
// exactly at start (or starting exactly at end) is not a conflict. A
// non-empty excludeID keeps the meeting being rescheduled out of the
// candidate set so it never conflicts with itself. Read-only; an empty
// result means the interval is safe to commit.
func (s *Scheduler) FindConflicts(ctx context.Context, ownerID string, start, end time.Time, excludeID string) ([]*models.Meeting, error) {
	return s.store.FindOverlapping(ctx, ownerID, start, end, excludeID)
}

// SuggestSlot computes the earliest interval of the given duration that
// doesn't intersect any of the owner's active meetings, starting the
// search at desiredStart. A duration of zero or less falls back to
// DefaultSlotDuration.
//
// The sweep advances the candidate past every meeting whose end is later
// than the candidate, comparing against the end time only. That is sound
// only because the owner's active meetings are pairwise non-overlapping
// and sorted ascending by start; the input must satisfy both.
func (s *Scheduler) SuggestSlot(ctx context.Context, ownerID string, desiredStart time.Time, duration time.Duration) (Slot, error) {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}

	meetings, err := s.store.ListActiveAscending(ctx, ownerID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to list meetings for slot suggestion")
		return Slot{}, err
	}

	candidate := desiredStart
	for _, m := range meetings {
		if candidate.Before(m.EndTime) {
			candidate = m.EndTime
		}
	}

	slot := Slot{
		Start: candidate,
		End:   candidate.Add(duration),
	}
	s.logger.Debug().
		Str("owner_id", ownerID).
		Time("start", slot.Start).
		Time("end", slot.End).
		Msg("suggested slot")
	return slot, nil
}

// Schedule commits a new meeting, holding the owner's lock across the
// conflict check and the write. On rejection it returns a ConflictError
// carrying the blocking meetings and a suggested alternative.
func (s *Scheduler) Schedule(ctx context.Context, meeting *models.Meeting) error {
	lock := s.ownerLock(meeting.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	conflicts, err := s.FindConflicts(ctx, meeting.OwnerID, meeting.StartTime, meeting.EndTime, "")
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		suggestion, err := s.SuggestSlot(ctx, meeting.OwnerID, meeting.StartTime, DefaultSlotDuration)
		if err != nil {
			return err
		}

		s.logger.Info().
			Str("owner_id", meeting.OwnerID).
			Int("conflicts", len(conflicts)).
			Msg("rejected conflicting meeting")
		return &ConflictError{
			Conflicts:  conflicts,
			Suggestion: &suggestion,
		}
	}

	return s.store.Create(ctx, meeting)
}

// Reschedule commits an interval change to an existing meeting under the
// owner's lock, excluding the meeting itself from the conflict check. No
// suggestion is computed on this path.
func (s *Scheduler) Reschedule(ctx context.Context, meeting *models.Meeting) error {
	lock := s.ownerLock(meeting.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	conflicts, err := s.FindConflicts(ctx, meeting.OwnerID, meeting.StartTime, meeting.EndTime, meeting.ID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		s.logger.Info().
			Str("owner_id", meeting.OwnerID).
			Str("meeting_id", meeting.ID).
			Int("conflicts", len(conflicts)).
			Msg("rejected conflicting reschedule")
		return &ConflictError{Conflicts: conflicts}
	}

	return s.store.Update(ctx, meeting)
}

func (s *Scheduler) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.owners[ownerID]
	if !ok {
		lock = new(sync.Mutex)
		s.owners[ownerID] = lock
	}
	return lock
}
