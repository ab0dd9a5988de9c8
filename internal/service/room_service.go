package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/repository"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/validation"
)

type roomRepository interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	List(ctx context.Context) ([]models.Room, error)
}

// CreateRoomRequest captures fields for registering a room or venue.
type CreateRoomRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Capacity int             `json:"capacity" validate:"required,min=1"`
	RoomType models.RoomType `json:"room_type" validate:"omitempty,oneof=lecture lab"`
}

// RoomService handles room workflows.
type RoomService struct {
	repo      roomRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService creates a new room service.
func NewRoomService(repo roomRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Create registers a room. Names are unique regardless of case.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest, createdBy string) (*models.Room, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.RoomType = models.RoomType(strings.ToLower(strings.TrimSpace(string(req.RoomType))))
	if req.RoomType == "" {
		req.RoomType = models.RoomTypeLecture
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.FirstMessage(err, "invalid room payload"))
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room already exists")
	}

	room := &models.Room{Name: req.Name, Capacity: req.Capacity, RoomType: req.RoomType}
	if createdBy != "" {
		room.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}

	_ = s.cache.Invalidate(ctx, timetableCacheKey)
	s.logger.Info("room created", zap.String("room_id", room.ID))
	return room, nil
}
