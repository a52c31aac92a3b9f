package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/procurax/meetings/internal/delivery/http/v1"
	"github.com/procurax/meetings/internal/scheduling"
	"github.com/procurax/meetings/internal/services"
	"github.com/procurax/meetings/internal/storage/memory"
)

var baseTime = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

// stubAuthService accepts tokens of the form "token-<user id>" and
// rejects everything else. Register and Login are never reached by the
// meeting routes.
type stubAuthService struct{}

func (stubAuthService) Register(context.Context, services.RegisterParams) (*services.AuthResult, error) {
	return nil, errors.New("not implemented")
}

func (stubAuthService) Login(context.Context, services.LoginParams) (*services.AuthResult, error) {
	return nil, errors.New("not implemented")
}

func (stubAuthService) ParseToken(token string) (*jwt.RegisteredClaims, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return nil, errors.New("invalid token")
	}
	return &jwt.RegisteredClaims{Subject: token[len(prefix):]}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := memory.NewMeetingStore()
	scheduler := scheduling.NewScheduler(zerolog.Nop(), store)
	meetingService := services.NewMeetingService(zerolog.Nop(), store, scheduler)
	handler := v1.New(zerolog.Nop(), stubAuthService{}, meetingService)

	router := gin.New()
	meetingsRouter := router.Group("/api/v1/meetings", handler.HandleAuthMiddleware)
	meetingsRouter.POST("", handler.HandleCreateMeeting)
	meetingsRouter.GET("", handler.HandleGetMeetings)
	meetingsRouter.GET("/:id", handler.HandleGetMeeting)
	meetingsRouter.PUT("/:id", handler.HandleUpdateMeeting)
	meetingsRouter.PATCH("/:id/done", handler.HandleMarkMeetingDone)
	meetingsRouter.DELETE("/:id", handler.HandleDeleteMeeting)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func createBody(start, end time.Time) gin.H {
	return gin.H{
		"title":      "standup",
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/meetings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/api/v1/meetings", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateMeeting(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(0), at(60)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		ID       string `json:"id"`
		Priority string `json:"priority"`
		Done     bool   `json:"done"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "medium", created.Priority)
	assert.False(t, created.Done)
}

func TestCreateMeetingValidation(t *testing.T) {
	router := newTestRouter()

	// Missing required fields.
	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		gin.H{"title": "standup"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// start >= end
	recorder = doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(60), at(0)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateMeetingConflict(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(0), at(60)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(30), at(90)))
	require.Equal(t, http.StatusConflict, recorder.Code)

	var conflict struct {
		Message   string `json:"message"`
		Conflicts []struct {
			Title string `json:"title"`
		} `json:"conflicts"`
		Suggestion *struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &conflict))
	require.Len(t, conflict.Conflicts, 1)
	require.NotNil(t, conflict.Suggestion)
	assert.True(t, conflict.Suggestion.Start.Equal(at(60)))
	assert.True(t, conflict.Suggestion.End.Equal(at(120)))
}

func TestCreateMeetingOwnerIsolation(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(0), at(60)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	// Same interval, different owner: no conflict.
	recorder = doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-2",
		createBody(at(0), at(60)))
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestUpdateMeetingConflictHasNoSuggestion(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(0), at(60)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(120), at(180)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = doRequest(t, router, http.MethodPut, "/api/v1/meetings/"+created.ID, "token-owner-1",
		gin.H{
			"start_time": at(30).Format(time.RFC3339),
			"end_time":   at(90).Format(time.RFC3339),
		})
	require.Equal(t, http.StatusConflict, recorder.Code)

	var conflict map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &conflict))
	assert.Contains(t, conflict, "conflicts")
	assert.NotContains(t, conflict, "suggestion")
}

func TestGetMeetingNotFound(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/meetings/missing", "token-owner-1", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestForeignMeetingReportedAsNotFound(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(0), at(60)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = doRequest(t, router, http.MethodGet, "/api/v1/meetings/"+created.ID, "token-owner-2", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doRequest(t, router, http.MethodDelete, "/api/v1/meetings/"+created.ID, "token-owner-2", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListMeetingsFilterValidation(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/meetings?done=maybe", "token-owner-1", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/api/v1/meetings?from=yesterday", "token-owner-1", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMarkDoneAndDelete(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/meetings", "token-owner-1",
		createBody(at(0), at(60)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = doRequest(t, router, http.MethodPatch, "/api/v1/meetings/"+created.ID+"/done", "token-owner-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var done struct {
		Done bool `json:"done"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &done))
	assert.True(t, done.Done)

	recorder = doRequest(t, router, http.MethodDelete, "/api/v1/meetings/"+created.ID, "token-owner-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/api/v1/meetings/"+created.ID, "token-owner-1", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
