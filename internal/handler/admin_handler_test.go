package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/middleware"
	"github.com/noah-isme/schedulifyx-api/internal/models"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
)

type adminAuthMock struct {
	registered  models.RegisterRequest
	registerErr error
	loginErr    error
	logoutReq   models.LogoutRequest
	logoutBy    *models.JWTClaims
}

func (m *adminAuthMock) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	m.registered = req
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &models.UserInfo{ID: "admin-1", Email: req.Email, Name: req.Name, Role: models.RoleAdmin}, nil
}

func (m *adminAuthMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *adminAuthMock) Logout(ctx context.Context, claims *models.JWTClaims, req models.LogoutRequest) error {
	m.logoutBy = claims
	m.logoutReq = req
	return nil
}

func newJSONContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestAdminRegisterCreated(t *testing.T) {
	svc := &adminAuthMock{}
	handler := NewAdminHandler(svc)
	c, w := newJSONContext(http.MethodPost, "/register", `{"name":"Ayu","email":"ayu@example.com","password":"Valid1Pass!"}`)

	require.NoError(t, handler.Register(c))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Admin registered successfully")
	assert.Equal(t, "ayu@example.com", svc.registered.Email)
}

func TestAdminRegisterMalformedBody(t *testing.T) {
	handler := NewAdminHandler(&adminAuthMock{})
	c, _ := newJSONContext(http.MethodPost, "/register", `{"name":`)

	err := handler.Register(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestAdminRegisterPassesServiceError(t *testing.T) {
	handler := NewAdminHandler(&adminAuthMock{registerErr: appErrors.ErrEmailTaken})
	c, _ := newJSONContext(http.MethodPost, "/register", `{"name":"Ayu","email":"ayu@example.com","password":"Valid1Pass!"}`)

	assert.ErrorIs(t, handler.Register(c), appErrors.ErrEmailTaken)
}

func TestAdminLogin(t *testing.T) {
	handler := NewAdminHandler(&adminAuthMock{})
	c, w := newJSONContext(http.MethodPost, "/login", `{"email":"ayu@example.com","password":"Valid1Pass!"}`)

	require.NoError(t, handler.Login(c))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"access"`)
}

func TestAdminLogoutWithoutBody(t *testing.T) {
	svc := &adminAuthMock{}
	handler := NewAdminHandler(svc)
	c, w := newJSONContext(http.MethodPost, "/logout", "")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1"})

	require.NoError(t, handler.Logout(c))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out successfully")
	require.NotNil(t, svc.logoutBy)
	assert.Equal(t, "admin-1", svc.logoutBy.UserID)
	assert.Empty(t, svc.logoutReq.RefreshToken)
}

func TestAdminLogoutRequiresClaims(t *testing.T) {
	handler := NewAdminHandler(&adminAuthMock{})
	c, _ := newJSONContext(http.MethodPost, "/logout", `{"refresh_token":"r"}`)

	assert.ErrorIs(t, handler.Logout(c), appErrors.ErrUnauthorized)
}
