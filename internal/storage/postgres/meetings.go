package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/storage"
)

type meetingStoreImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewMeetingStore(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) storage.MeetingStore {
	return &meetingStoreImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *meetingStoreImpl) Create(ctx context.Context, meeting *models.Meeting) error {
	const insertMeetingQuery = `
INSERT INTO meetings (id,
                      owner_id,
                      title,
                      description,
                      location,
                      start_time,
                      end_time,
                      priority,
                      done,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertMeetingQuery,
		meeting.ID,
		meeting.OwnerID,
		meeting.Title,
		meeting.Description,
		meeting.Location,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Priority,
		meeting.Done,
		meeting.CreatedAt,
		meeting.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("meeting_id", meeting.ID).
			Msg("failed to insert meeting")
		return err
	}
	s.logger.Debug().
		Str("meeting_id", meeting.ID).
		Msg("inserted meeting")
	return nil
}

func (s *meetingStoreImpl) GetByID(ctx context.Context, ownerID, id string) (*models.Meeting, error) {
	meeting := &models.Meeting{
		ID:      id,
		OwnerID: ownerID,
	}

	const selectMeetingByIDQuery = `
SELECT title,
       description,
       location,
       start_time,
       end_time,
       priority,
       done,
       created_at,
       updated_at
FROM meetings
WHERE id = $1 AND owner_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectMeetingByIDQuery,
		meeting.ID,
		meeting.OwnerID,
	).Scan(
		&meeting.Title,
		&meeting.Description,
		&meeting.Location,
		&meeting.StartTime,
		&meeting.EndTime,
		&meeting.Priority,
		&meeting.Done,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("meeting_id", meeting.ID).
				Msg("meeting not found")
			return nil, storage.ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", meeting.ID).
			Msg("failed to select meeting by id")
		return nil, err
	}
	return meeting, nil
}

func (s *meetingStoreImpl) Update(ctx context.Context, meeting *models.Meeting) error {
	const updateMeetingQuery = `
UPDATE meetings
SET title = $1,
    description = $2,
    location = $3,
    start_time = $4,
    end_time = $5,
    priority = $6,
    updated_at = $7
WHERE id = $8 AND owner_id = $9
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateMeetingQuery,
		meeting.Title,
		meeting.Description,
		meeting.Location,
		meeting.StartTime,
		meeting.EndTime,
		meeting.Priority,
		meeting.UpdatedAt,
		meeting.ID,
		meeting.OwnerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("meeting_id", meeting.ID).
			Msg("failed to update meeting")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("meeting_id", meeting.ID).
			Msg("meeting not found")
		return storage.ErrMeetingNotFound
	}
	s.logger.Debug().
		Str("meeting_id", meeting.ID).
		Msg("updated meeting")
	return nil
}

func (s *meetingStoreImpl) SetDone(ctx context.Context, ownerID, id string) (*models.Meeting, error) {
	meeting := &models.Meeting{
		ID:      id,
		OwnerID: ownerID,
		Done:    true,
	}

	const updateMeetingDoneQuery = `
UPDATE meetings
SET done = TRUE,
    updated_at = $1
WHERE id = $2 AND owner_id = $3
RETURNING title, description, location, start_time, end_time, priority, created_at, updated_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateMeetingDoneQuery,
		time.Now(),
		meeting.ID,
		meeting.OwnerID,
	).Scan(
		&meeting.Title,
		&meeting.Description,
		&meeting.Location,
		&meeting.StartTime,
		&meeting.EndTime,
		&meeting.Priority,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("meeting_id", meeting.ID).
				Msg("meeting not found")
			return nil, storage.ErrMeetingNotFound
		}

		s.logger.Error().
			Err(err).
			Str("meeting_id", meeting.ID).
			Msg("failed to mark meeting done")
		return nil, err
	}
	s.logger.Debug().
		Str("meeting_id", meeting.ID).
		Msg("marked meeting done")
	return meeting, nil
}

func (s *meetingStoreImpl) Delete(ctx context.Context, ownerID, id string) error {
	const deleteMeetingQuery = `
DELETE FROM meetings
WHERE id = $1 AND owner_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteMeetingQuery,
		id,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("meeting_id", id).
			Msg("failed to delete meeting")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("meeting_id", id).
			Msg("meeting not found")
		return storage.ErrMeetingNotFound
	}
	s.logger.Debug().
		Str("meeting_id", id).
		Msg("deleted meeting")
	return nil
}

func (s *meetingStoreImpl) FindOverlapping(ctx context.Context, ownerID string, start, end time.Time, excludeID string) ([]*models.Meeting, error) {
	// Half-open overlap: [s1, e1) and [s2, e2) intersect
	// iff s1 < e2 AND s2 < e1.
	query := `
SELECT id,
       title,
       description,
       location,
       start_time,
       end_time,
       priority,
       created_at,
       updated_at
FROM meetings
WHERE owner_id = $1
  AND done = FALSE
  AND start_time < $3
  AND end_time > $2
`
	args := []any{ownerID, start, end}
	if excludeID != "" {
		query += "  AND id <> $4\n"
		args = append(args, excludeID)
	}
	query += "ORDER BY start_time"

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to select overlapping meetings")
		return nil, err
	}
	defer rows.Close()

	return s.scanMeetings(rows, ownerID)
}

func (s *meetingStoreImpl) ListActiveAscending(ctx context.Context, ownerID string) ([]*models.Meeting, error) {
	const selectActiveMeetingsQuery = `
SELECT id,
       title,
       description,
       location,
       start_time,
       end_time,
       priority,
       created_at,
       updated_at
FROM meetings
WHERE owner_id = $1 AND done = FALSE
ORDER BY start_time
`
	rows, err := s.pgPool.Query(
		ctx,
		selectActiveMeetingsQuery,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to select active meetings")
		return nil, err
	}
	defer rows.Close()

	return s.scanMeetings(rows, ownerID)
}

func (s *meetingStoreImpl) List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*models.Meeting, error) {
	query := `
SELECT id,
       title,
       description,
       location,
       start_time,
       end_time,
       priority,
       done,
       created_at,
       updated_at
FROM meetings
WHERE owner_id = $1
`
	args := []any{ownerID}
	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		query += "  AND title ILIKE $" + strconv.Itoa(len(args)) + "\n"
	}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		args = append(args, filter.From)
		query += "  AND start_time >= $" + strconv.Itoa(len(args)) + "\n"
		args = append(args, filter.To)
		query += "  AND end_time <= $" + strconv.Itoa(len(args)) + "\n"
	}
	if filter.Done != nil {
		args = append(args, *filter.Done)
		query += "  AND done = $" + strconv.Itoa(len(args)) + "\n"
	}
	query += "ORDER BY start_time"

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("owner_id", ownerID).
			Msg("failed to select meetings")
		return nil, err
	}
	defer rows.Close()

	meetings := make([]*models.Meeting, 0)
	for rows.Next() {
		meeting := &models.Meeting{OwnerID: ownerID}
		err = rows.Scan(
			&meeting.ID,
			&meeting.Title,
			&meeting.Description,
			&meeting.Location,
			&meeting.StartTime,
			&meeting.EndTime,
			&meeting.Priority,
			&meeting.Done,
			&meeting.CreatedAt,
			&meeting.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan meeting")
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return meetings, nil
}

// scanMeetings collects rows produced by the active-meeting queries,
// which select every column except done (always FALSE there).
func (s *meetingStoreImpl) scanMeetings(rows pgx.Rows, ownerID string) ([]*models.Meeting, error) {
	meetings := make([]*models.Meeting, 0)
	for rows.Next() {
		meeting := &models.Meeting{OwnerID: ownerID}
		err := rows.Scan(
			&meeting.ID,
			&meeting.Title,
			&meeting.Description,
			&meeting.Location,
			&meeting.StartTime,
			&meeting.EndTime,
			&meeting.Priority,
			&meeting.CreatedAt,
			&meeting.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan meeting")
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	err := rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return meetings, nil
}
