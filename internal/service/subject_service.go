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

type subjectRepository interface {
	ExistsByCode(ctx context.Context, section, code string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	List(ctx context.Context, sections []string) ([]models.Subject, error)
}

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	Code          string          `json:"code" validate:"required,max=32"`
	Name          string          `json:"name" validate:"required,max=120"`
	Teacher       string          `json:"teacher" validate:"required,max=120"`
	Section       string          `json:"section" validate:"required,max=64"`
	WeeklyPeriods int             `json:"weekly_periods" validate:"required,min=1,max=20"`
	RoomType      models.RoomType `json:"room_type" validate:"omitempty,oneof=lecture lab"`
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Create adds a new subject ensuring its code is unique within the section.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest, createdBy string) (*models.Subject, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	req.Teacher = strings.TrimSpace(req.Teacher)
	req.Section = strings.TrimSpace(req.Section)
	req.RoomType = models.RoomType(strings.ToLower(strings.TrimSpace(string(req.RoomType))))
	if req.RoomType == "" {
		req.RoomType = models.RoomTypeLecture
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.FirstMessage(err, "invalid subject payload"))
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Section, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists for this section")
	}

	subject := &models.Subject{
		Code:          req.Code,
		Name:          req.Name,
		Teacher:       req.Teacher,
		Section:       req.Section,
		WeeklyPeriods: req.WeeklyPeriods,
		RoomType:      req.RoomType,
	}
	if createdBy != "" {
		subject.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists for this section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	_ = s.cache.Invalidate(ctx, timetableCacheKey)
	s.logger.Info("subject created", zap.String("subject_id", subject.ID), zap.String("section", subject.Section))
	return subject, nil
}
