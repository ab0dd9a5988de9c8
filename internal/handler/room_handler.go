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

type roomCreator interface {
	Create(ctx context.Context, req service.CreateRoomRequest, createdBy string) (*models.Room, error)
}

// RoomHandler handles room and venue endpoints.
type RoomHandler struct {
	service roomCreator
}

// NewRoomHandler constructs a room handler.
func NewRoomHandler(svc roomCreator) *RoomHandler {
	return &RoomHandler{service: svc}
}

// Create godoc
// @Summary Add room or venue
// @Tags Rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /add-room-venue [post]
func (h *RoomHandler) Create(c *gin.Context) error {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload")
	}
	room, err := h.service.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	response.Created(c, "Room added successfully", room)
	return nil
}
