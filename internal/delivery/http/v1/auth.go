package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/procurax/meetings/internal/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type registerRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	loginRequest
}

type authResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newAuthResponse(result *services.AuthResult) authResponse {
	return authResponse{
		ID:        result.UserID,
		Name:      result.Name,
		Email:     result.Email,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Register(c, services.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register")
		if errors.Is(err, services.ErrUserAlreadyExists) {
			abort(c, newBadRequestError(services.ErrUserAlreadyExists.Error()))
		} else {
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(result))
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		switch {
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrUserPasswordMismatch):
			// One message for both, so login can't probe which
			// emails exist.
			abort(c, newUnauthorizedError("invalid credentials"))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}
