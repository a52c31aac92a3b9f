package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDCtxKey = "user_id"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Warn().Msg("authorization header required")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("invalid authorization header")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ParseToken(parts[1])
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to parse token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if claims.Subject == "" {
		h.logger.Warn().Msg("token has no subject")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(userIDCtxKey, claims.Subject)
	c.Next()
}

// ownerID pulls the authenticated user id set by the auth middleware.
// Every meeting route is scoped to this id; it never comes from the
// request itself.
func (h *handlerImpl) ownerID(c *gin.Context) (string, bool) {
	userIDValue, exists := c.Get(userIDCtxKey)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return "", false
	}
	userID, _ := userIDValue.(string)
	return userID, true
}
