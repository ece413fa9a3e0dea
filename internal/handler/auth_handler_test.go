package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/service"
)

func newAuthTestHandler() *AuthHandler {
	svc := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerLoginRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	postJSON(c, "/auth/login", `{`)

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerMeRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Email: "jane@example.com", Role: models.RoleStudent})

	handler.Me(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "user-1", envelope.Data.ID)
	assert.Equal(t, "jane@example.com", envelope.Data.Email)
}

func TestAuthHandlerLogoutRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	postJSON(c, "/auth/logout", `{"refresh_token":"abc"}`)

	handler.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
