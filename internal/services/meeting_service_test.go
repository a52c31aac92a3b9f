package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/scheduling"
	"github.com/procurax/meetings/internal/services"
	"github.com/procurax/meetings/internal/storage/memory"
)

var baseTime = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func newService() services.MeetingService {
	store := memory.NewMeetingStore()
	scheduler := scheduling.NewScheduler(zerolog.Nop(), store)
	return services.NewMeetingService(zerolog.Nop(), store, scheduler)
}

func createParams(ownerID string, start, end time.Time) services.CreateMeetingParams {
	return services.CreateMeetingParams{
		OwnerID:   ownerID,
		Title:     "standup",
		StartTime: start,
		EndTime:   end,
	}
}

func TestCreateAssignsDefaults(t *testing.T) {
	service := newService()

	meeting, err := service.Create(context.Background(), createParams("owner-1", at(0), at(60)))
	require.NoError(t, err)
	assert.NotEmpty(t, meeting.ID)
	assert.Equal(t, models.PriorityMedium, meeting.Priority)
	assert.False(t, meeting.Done)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	service := newService()
	ctx := context.Background()

	// start == end
	_, err := service.Create(ctx, createParams("owner-1", at(0), at(0)))
	assert.ErrorIs(t, err, services.ErrInvalidInterval)

	// start > end
	_, err = service.Create(ctx, createParams("owner-1", at(60), at(0)))
	assert.ErrorIs(t, err, services.ErrInvalidInterval)

	params := createParams("owner-1", at(0), at(60))
	params.Priority = "urgent"
	_, err = service.Create(ctx, params)
	assert.ErrorIs(t, err, services.ErrInvalidPriority)
}

func TestCreateConflictCarriesSuggestion(t *testing.T) {
	service := newService()
	ctx := context.Background()

	_, err := service.Create(ctx, createParams("owner-1", at(0), at(60)))
	require.NoError(t, err)

	_, err = service.Create(ctx, createParams("owner-1", at(30), at(90)))

	var conflictErr *scheduling.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	require.NotNil(t, conflictErr.Suggestion)
	assert.True(t, conflictErr.Suggestion.Start.Equal(at(60)))
	assert.True(t, conflictErr.Suggestion.End.Equal(at(120)))
}

func TestRescheduleFallsBackToStoredFields(t *testing.T) {
	service := newService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams("owner-1", at(0), at(60)))
	require.NoError(t, err)

	// Only the end moves; start and title come from the stored record.
	newEnd := at(90)
	updated, err := service.Reschedule(ctx, services.RescheduleMeetingParams{
		OwnerID: "owner-1",
		ID:      created.ID,
		EndTime: &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, "standup", updated.Title)
	assert.True(t, updated.StartTime.Equal(at(0)))
	assert.True(t, updated.EndTime.Equal(at(90)))
}

func TestRescheduleValidatesResolvedInterval(t *testing.T) {
	service := newService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams("owner-1", at(0), at(60)))
	require.NoError(t, err)

	// The new start collides with the existing end after fallback.
	newStart := at(60)
	_, err = service.Reschedule(ctx, services.RescheduleMeetingParams{
		OwnerID:   "owner-1",
		ID:        created.ID,
		StartTime: &newStart,
	})
	assert.ErrorIs(t, err, services.ErrInvalidInterval)
}

func TestRescheduleUnknownMeeting(t *testing.T) {
	service := newService()

	_, err := service.Reschedule(context.Background(), services.RescheduleMeetingParams{
		OwnerID: "owner-1",
		ID:      "missing",
	})
	assert.ErrorIs(t, err, services.ErrMeetingNotFound)
}

func TestRescheduleConflictHasNoSuggestion(t *testing.T) {
	service := newService()
	ctx := context.Background()

	_, err := service.Create(ctx, createParams("owner-1", at(0), at(60)))
	require.NoError(t, err)
	created, err := service.Create(ctx, createParams("owner-1", at(120), at(180)))
	require.NoError(t, err)

	newStart, newEnd := at(30), at(90)
	_, err = service.Reschedule(ctx, services.RescheduleMeetingParams{
		OwnerID:   "owner-1",
		ID:        created.ID,
		StartTime: &newStart,
		EndTime:   &newEnd,
	})

	var conflictErr *scheduling.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Nil(t, conflictErr.Suggestion)
}

func TestMarkDoneFreesTheSlot(t *testing.T) {
	service := newService()
	ctx := context.Background()

	created, err := service.Create(ctx, createParams("owner-1", at(0), at(60)))
	require.NoError(t, err)

	meeting, err := service.MarkDone(ctx, "owner-1", created.ID)
	require.NoError(t, err)
	assert.True(t, meeting.Done)

	// The vacated interval is schedulable again.
	_, err = service.Create(ctx, createParams("owner-1", at(30), at(90)))
	require.NoError(t, err)
}

func TestNotFoundOutcomes(t *testing.T) {
	service := newService()
	ctx := context.Background()

	_, err := service.GetByID(ctx, "owner-1", "missing")
	assert.ErrorIs(t, err, services.ErrMeetingNotFound)

	_, err = service.MarkDone(ctx, "owner-1", "missing")
	assert.ErrorIs(t, err, services.ErrMeetingNotFound)

	err = service.Delete(ctx, "owner-1", "missing")
	assert.ErrorIs(t, err, services.ErrMeetingNotFound)
}
