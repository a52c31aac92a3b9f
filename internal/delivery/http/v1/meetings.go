package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/scheduling"
	"github.com/procurax/meetings/internal/services"
	"github.com/procurax/meetings/internal/storage"
)

type meetingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Priority    string    `json:"priority"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newMeetingResponse(meeting *models.Meeting) meetingResponse {
	return meetingResponse{
		ID:          meeting.ID,
		Title:       meeting.Title,
		Description: meeting.Description,
		Location:    meeting.Location,
		StartTime:   meeting.StartTime,
		EndTime:     meeting.EndTime,
		Priority:    meeting.Priority,
		Done:        meeting.Done,
		CreatedAt:   meeting.CreatedAt,
		UpdatedAt:   meeting.UpdatedAt,
	}
}

func newMeetingResponses(meetings []*models.Meeting) []meetingResponse {
	responses := make([]meetingResponse, len(meetings))
	for i, meeting := range meetings {
		responses[i] = newMeetingResponse(meeting)
	}
	return responses
}

type conflictResponse struct {
	Message    string            `json:"message"`
	Conflicts  []meetingResponse `json:"conflicts"`
	Suggestion *scheduling.Slot  `json:"suggestion,omitempty"`
}

func abortConflict(c *gin.Context, message string, conflictErr *scheduling.ConflictError) {
	c.AbortWithStatusJSON(http.StatusConflict, conflictResponse{
		Message:    message,
		Conflicts:  newMeetingResponses(conflictErr.Conflicts),
		Suggestion: conflictErr.Suggestion,
	})
}

type createMeetingRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

func (h *handlerImpl) HandleCreateMeeting(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req createMeetingRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateMeetingParams{
		OwnerID:   ownerID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Location != nil {
		params.Location = *req.Location
	}
	if req.Priority != nil {
		params.Priority = *req.Priority
	}

	meeting, err := h.meetings.Create(c, params)
	if err != nil {
		var conflictErr *scheduling.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			abortConflict(c, "meeting time conflicts with existing meetings", conflictErr)
		case errors.Is(err, services.ErrInvalidInterval),
			errors.Is(err, services.ErrInvalidPriority):
			abort(c, newBadRequestError(err.Error()))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to create meeting")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusCreated, newMeetingResponse(meeting))
}

func (h *handlerImpl) HandleGetMeetings(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	filter := storage.ListFilter{
		Title: c.Query("title"),
	}

	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			abort(c, newBadRequestError("invalid from timestamp"))
			return
		}
		filter.From = parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			abort(c, newBadRequestError("invalid to timestamp"))
			return
		}
		filter.To = parsed
	}
	if done := c.Query("done"); done != "" {
		parsed, err := strconv.ParseBool(done)
		if err != nil {
			abort(c, newBadRequestError("invalid done filter"))
			return
		}
		filter.Done = &parsed
	}

	meetings, err := h.meetings.List(c, ownerID, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list meetings")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newMeetingResponses(meetings))
}

func (h *handlerImpl) HandleGetMeeting(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	meeting, err := h.meetings.GetByID(c, ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrMeetingNotFound) {
			abort(c, newNotFoundError(services.ErrMeetingNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to get meeting")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newMeetingResponse(meeting))
}

type updateMeetingRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

func (h *handlerImpl) HandleUpdateMeeting(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var req updateMeetingRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	meeting, err := h.meetings.Reschedule(c, services.RescheduleMeetingParams{
		OwnerID:     ownerID,
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		var conflictErr *scheduling.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			abortConflict(c, "reschedule conflict detected", conflictErr)
		case errors.Is(err, services.ErrInvalidInterval),
			errors.Is(err, services.ErrInvalidPriority):
			abort(c, newBadRequestError(err.Error()))
		case errors.Is(err, services.ErrMeetingNotFound):
			abort(c, newNotFoundError(services.ErrMeetingNotFound.Error()))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to update meeting")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newMeetingResponse(meeting))
}

func (h *handlerImpl) HandleMarkMeetingDone(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	meeting, err := h.meetings.MarkDone(c, ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrMeetingNotFound) {
			abort(c, newNotFoundError(services.ErrMeetingNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to mark meeting done")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newMeetingResponse(meeting))
}

func (h *handlerImpl) HandleDeleteMeeting(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	err := h.meetings.Delete(c, ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrMeetingNotFound) {
			abort(c, newNotFoundError(services.ErrMeetingNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to delete meeting")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "meeting deleted"})
}
