package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/procurax/meetings/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateMeeting(c *gin.Context)
	HandleGetMeetings(c *gin.Context)
	HandleGetMeeting(c *gin.Context)
	HandleUpdateMeeting(c *gin.Context)
	HandleMarkMeetingDone(c *gin.Context)
	HandleDeleteMeeting(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	meetings services.MeetingService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	meetingService services.MeetingService,
) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     authService,
		meetings: meetingService,
	}
}
