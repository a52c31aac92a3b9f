package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/procurax/meetings/internal/models"
	"github.com/procurax/meetings/internal/storage"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrInvalidInterval      = errors.New("meeting must start before it ends")
	ErrInvalidPriority      = errors.New("invalid meeting priority")
)

type MeetingService interface {
	// Create validates the interval and commits the meeting unless it
	// overlaps an active meeting of the same owner.
	//
	// It returns ErrInvalidInterval if start is not before end,
	// ErrInvalidPriority for a priority outside low/medium/high, or a
	// *scheduling.ConflictError carrying the blocking meetings and a
	// suggested alternative slot.
	Create(ctx context.Context, params CreateMeetingParams) (*models.Meeting, error)

	// List returns the owner's meetings matching the filter,
	// ordered by start time ascending.
	List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*models.Meeting, error)

	// GetByID returns ErrMeetingNotFound for unknown ids and for ids
	// owned by a different owner alike.
	GetByID(ctx context.Context, ownerID, id string) (*models.Meeting, error)

	// Reschedule updates an existing meeting, falling back to the stored
	// values for fields the params leave unset, and re-validates the
	// resulting interval with the meeting itself excluded from the
	// conflict check.
	//
	// It returns ErrMeetingNotFound, ErrInvalidInterval,
	// ErrInvalidPriority, or a *scheduling.ConflictError without a
	// suggestion.
	Reschedule(ctx context.Context, params RescheduleMeetingParams) (*models.Meeting, error)

	// MarkDone sets done unconditionally, vacating the meeting's slot
	// without touching its interval.
	MarkDone(ctx context.Context, ownerID, id string) (*models.Meeting, error)

	// Delete removes the meeting permanently.
	Delete(ctx context.Context, ownerID, id string) error
}

type AuthService interface {
	// Register creates a user with a hashed password and issues
	// a bearer token.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// Login authenticates the user by email and password and issues
	// a bearer token.
	//
	// It returns ErrUserNotFound if the email is unknown or
	// ErrUserPasswordMismatch if the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// ParseToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseToken(token string) (*jwt.RegisteredClaims, error)
}

type CreateMeetingParams struct {
	OwnerID     string
	Title       string
	Description string
	Location    string
	Priority    string
	StartTime   time.Time
	EndTime     time.Time
}

type RescheduleMeetingParams struct {
	OwnerID     string
	ID          string
	Title       *string
	Description *string
	Location    *string
	Priority    *string
	StartTime   *time.Time
	EndTime     *time.Time
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	UserID    string
	Name      string
	Email     string
	Token     string
	ExpiresAt time.Time
}
