package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/service"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/response"
)

type subjectCreator interface {
	Create(ctx context.Context, req service.CreateSubjectRequest, createdBy string) (*models.Subject, error)
}

// SubjectHandler handles subject endpoints.
type SubjectHandler struct {
	service subjectCreator
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc subjectCreator) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// Create godoc
// @Summary Add subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /add-subject [post]
func (h *SubjectHandler) Create(c *gin.Context) error {
	var req service.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject payload")
	}
	subject, err := h.service.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	response.Created(c, "Subject added successfully", subject)
	return nil
}
