// Package memory holds an in-process MeetingStore keeping each owner's
// meetings ordered by start time. It backs the engine and service tests,
// where spinning up postgres would be overkill.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/storage"
)

type meetingStoreImpl struct {
	mu      sync.RWMutex
	byOwner map[string][]*models.Meeting
}

func NewMeetingStore() storage.MeetingStore {
	return &meetingStoreImpl{
		byOwner: make(map[string][]*models.Meeting),
	}
}

func (s *meetingStoreImpl) Create(_ context.Context, meeting *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *meeting
	s.byOwner[meeting.OwnerID] = append(s.byOwner[meeting.OwnerID], &clone)
	s.sortOwnerLocked(meeting.OwnerID)
	return nil
}

func (s *meetingStoreImpl) GetByID(_ context.Context, ownerID, id string) (*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meeting := s.findLocked(ownerID, id)
	if meeting == nil {
		return nil, storage.ErrMeetingNotFound
	}

	clone := *meeting
	return &clone, nil
}

func (s *meetingStoreImpl) Update(_ context.Context, meeting *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.findLocked(meeting.OwnerID, meeting.ID)
	if stored == nil {
		return storage.ErrMeetingNotFound
	}

	stored.Title = meeting.Title
	stored.Description = meeting.Description
	stored.Location = meeting.Location
	stored.StartTime = meeting.StartTime
	stored.EndTime = meeting.EndTime
	stored.Priority = meeting.Priority
	stored.UpdatedAt = meeting.UpdatedAt
	s.sortOwnerLocked(meeting.OwnerID)
	return nil
}

func (s *meetingStoreImpl) SetDone(_ context.Context, ownerID, id string) (*models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.findLocked(ownerID, id)
	if stored == nil {
		return nil, storage.ErrMeetingNotFound
	}

	stored.Done = true
	stored.UpdatedAt = time.Now()

	clone := *stored
	return &clone, nil
}

func (s *meetingStoreImpl) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meetings := s.byOwner[ownerID]
	for i, m := range meetings {
		if m.ID == id {
			s.byOwner[ownerID] = append(meetings[:i], meetings[i+1:]...)
			return nil
		}
	}
	return storage.ErrMeetingNotFound
}

func (s *meetingStoreImpl) FindOverlapping(_ context.Context, ownerID string, start, end time.Time, excludeID string) ([]*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlapping := make([]*models.Meeting, 0)
	for _, m := range s.byOwner[ownerID] {
		if m.Done || m.ID == excludeID {
			continue
		}
		// Half-open rule: touching intervals do not overlap.
		if m.StartTime.Before(end) && start.Before(m.EndTime) {
			clone := *m
			overlapping = append(overlapping, &clone)
		}
	}
	return overlapping, nil
}

func (s *meetingStoreImpl) ListActiveAscending(_ context.Context, ownerID string) ([]*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]*models.Meeting, 0)
	for _, m := range s.byOwner[ownerID] {
		if m.Done {
			continue
		}
		clone := *m
		active = append(active, &clone)
	}
	return active, nil
}

func (s *meetingStoreImpl) List(_ context.Context, ownerID string, filter storage.ListFilter) ([]*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meetings := make([]*models.Meeting, 0)
	for _, m := range s.byOwner[ownerID] {
		if filter.Title != "" &&
			!strings.Contains(strings.ToLower(m.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if !filter.From.IsZero() && !filter.To.IsZero() {
			if m.StartTime.Before(filter.From) || m.EndTime.After(filter.To) {
				continue
			}
		}
		if filter.Done != nil && m.Done != *filter.Done {
			continue
		}
		clone := *m
		meetings = append(meetings, &clone)
	}
	return meetings, nil
}

func (s *meetingStoreImpl) findLocked(ownerID, id string) *models.Meeting {
	for _, m := range s.byOwner[ownerID] {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *meetingStoreImpl) sortOwnerLocked(ownerID string) {
	meetings := s.byOwner[ownerID]
	sort.Slice(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})
}
