package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/scheduling"
	"github.com/procurax/meetings/internal/storage"
)

type meetingServiceImpl struct {
	logger    zerolog.Logger
	store     storage.MeetingStore
	scheduler *scheduling.Scheduler
}

func NewMeetingService(
	logger zerolog.Logger,
	store storage.MeetingStore,
	scheduler *scheduling.Scheduler,
) MeetingService {
	return &meetingServiceImpl{
		logger:    logger,
		store:     store,
		scheduler: scheduler,
	}
}

func (s *meetingServiceImpl) Create(ctx context.Context, params CreateMeetingParams) (*models.Meeting, error) {
	if !params.StartTime.Before(params.EndTime) {
		s.logger.Warn().
			Str("owner_id", params.OwnerID).
			Time("start", params.StartTime).
			Time("end", params.EndTime).
			Msg("invalid meeting interval")
		return nil, ErrInvalidInterval
	}

	priority := params.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if priority != models.PriorityLow &&
		priority != models.PriorityMedium &&
		priority != models.PriorityHigh {
		return nil, ErrInvalidPriority
	}

	meetingUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate meeting uuid")
		return nil, err
	}

	now := time.Now()
	meeting := &models.Meeting{
		ID:          meetingUUID.String(),
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.scheduler.Schedule(ctx, meeting)
	if err != nil {
		var conflictErr *scheduling.ConflictError
		if errors.As(err, &conflictErr) {
			s.logger.Info().
				Str("owner_id", meeting.OwnerID).
				Int("conflicts", len(conflictErr.Conflicts)).
				Msg("meeting creation rejected")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Str("owner_id", meeting.OwnerID).
			Msg("failed to schedule meeting")
		return nil, err
	}

	s.logger.Info().
		Str("meeting_id", meeting.ID).
		Str("owner_id", meeting.OwnerID).
		Msg("created meeting")
	return meeting, nil
}

func (s *meetingServiceImpl) List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*models.Meeting, error) {
	meetings, err := s.store.List(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to list meetings")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(meetings)).
		Str("owner_id", ownerID).
		Msg("listed meetings")
	return meetings, nil
}

func (s *meetingServiceImpl) GetByID(ctx context.Context, ownerID, id string) (*models.Meeting, error) {
	meeting, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			return nil, ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", id).
			Msg("failed to get meeting")
		return nil, err
	}
	return meeting, nil
}

func (s *meetingServiceImpl) Reschedule(ctx context.Context, params RescheduleMeetingParams) (*models.Meeting, error) {
	meeting, err := s.store.GetByID(ctx, params.OwnerID, params.ID)
	if err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			return nil, ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", params.ID).
			Msg("failed to load meeting for reschedule")
		return nil, err
	}

	if params.Title != nil {
		meeting.Title = *params.Title
	}
	if params.Description != nil {
		meeting.Description = *params.Description
	}
	if params.Location != nil {
		meeting.Location = *params.Location
	}
	if params.Priority != nil {
		if *params.Priority != models.PriorityLow &&
			*params.Priority != models.PriorityMedium &&
			*params.Priority != models.PriorityHigh {
			return nil, ErrInvalidPriority
		}
		meeting.Priority = *params.Priority
	}
	if params.StartTime != nil {
		meeting.StartTime = *params.StartTime
	}
	if params.EndTime != nil {
		meeting.EndTime = *params.EndTime
	}

	if !meeting.StartTime.Before(meeting.EndTime) {
		s.logger.Warn().
			Str("meeting_id", meeting.ID).
			Time("start", meeting.StartTime).
			Time("end", meeting.EndTime).
			Msg("invalid meeting interval")
		return nil, ErrInvalidInterval
	}

	meeting.UpdatedAt = time.Now()

	err = s.scheduler.Reschedule(ctx, meeting)
	if err != nil {
		var conflictErr *scheduling.ConflictError
		if errors.As(err, &conflictErr) {
			s.logger.Info().
				Str("meeting_id", meeting.ID).
				Int("conflicts", len(conflictErr.Conflicts)).
				Msg("reschedule rejected")
			return nil, err
		}
		if errors.Is(err, storage.ErrMeetingNotFound) {
			return nil, ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", meeting.ID).
			Msg("failed to reschedule meeting")
		return nil, err
	}

	s.logger.Info().
		Str("meeting_id", meeting.ID).
		Str("owner_id", meeting.OwnerID).
		Msg("rescheduled meeting")
	return meeting, nil
}

func (s *meetingServiceImpl) MarkDone(ctx context.Context, ownerID, id string) (*models.Meeting, error) {
	meeting, err := s.store.SetDone(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			return nil, ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", id).
			Msg("failed to mark meeting done")
		return nil, err
	}

	s.logger.Info().
		Str("meeting_id", id).
		Str("owner_id", ownerID).
		Msg("marked meeting done")
	return meeting, nil
}

func (s *meetingServiceImpl) Delete(ctx context.Context, ownerID, id string) error {
	err := s.store.Delete(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			return ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", id).
			Msg("failed to delete meeting")
		return err
	}

	s.logger.Info().
		Str("meeting_id", id).
		Str("owner_id", ownerID).
		Msg("deleted meeting")
	return nil
}
