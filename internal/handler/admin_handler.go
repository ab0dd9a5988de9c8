package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/response"
)

type adminAuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *models.JWTClaims, req models.LogoutRequest) error
}

// AdminHandler exposes admin registration and session endpoints.
type AdminHandler struct {
	service adminAuthService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc adminAuthService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// Register godoc
// @Summary Register admin
// @Description Create an administrator account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /register [post]
func (h *AdminHandler) Register(c *gin.Context) error {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload")
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		return err
	}
	response.Created(c, "Admin registered successfully", user)
	return nil
}

// Login godoc
// @Summary Authenticate admin
// @Description Authenticate by email and password
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /login [post]
func (h *AdminHandler) Login(c *gin.Context) error {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload")
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		return err
	}
	response.JSON(c, http.StatusOK, "Login successful", res)
	return nil
}

// Logout godoc
// @Summary Logout admin
// @Description Revoke the current access token and, optionally, a refresh token
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /logout [post]
func (h *AdminHandler) Logout(c *gin.Context) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}

	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid logout payload")
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	if err := h.service.Logout(c.Request.Context(), claims, req); err != nil {
		return err
	}
	response.JSON(c, http.StatusOK, "Logged out successfully", nil)
	return nil
}
