package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/repository"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
)

type subjectRepoMock struct {
	exists    bool
	createErr error
	created   []*models.Subject
	checked   [2]string
}

func (m *subjectRepoMock) ExistsByCode(ctx context.Context, section, code string) (bool, error) {
	m.checked = [2]string{section, code}
	return m.exists, nil
}

func (m *subjectRepoMock) Create(ctx context.Context, subject *models.Subject) error {
	if m.createErr != nil {
		return m.createErr
	}
	subject.ID = "subject-1"
	m.created = append(m.created, subject)
	return nil
}

func (m *subjectRepoMock) List(ctx context.Context, sections []string) ([]models.Subject, error) {
	return nil, nil
}

func TestSubjectServiceCreateNormalisesAndInvalidates(t *testing.T) {
	repo := &subjectRepoMock{}
	cacheRepo := newMemoryCacheRepo()
	cacheRepo.items[timetableCacheKey] = []byte(`{}`)
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewSubjectService(repo, cache, nil, zap.NewNop())

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{
		Code:          " math ",
		Name:          "Mathematics",
		Teacher:       "Budi",
		Section:       " X-A ",
		WeeklyPeriods: 4,
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, "MATH", subject.Code)
	assert.Equal(t, "X-A", subject.Section)
	assert.Equal(t, models.RoomTypeLecture, subject.RoomType)
	require.NotNil(t, subject.CreatedBy)
	assert.Equal(t, "admin-1", *subject.CreatedBy)
	assert.Equal(t, [2]string{"X-A", "MATH"}, repo.checked)
	assert.NotContains(t, cacheRepo.items, timetableCacheKey)
}

func TestSubjectServiceCreateValidation(t *testing.T) {
	svc := NewSubjectService(&subjectRepoMock{}, nil, nil, zap.NewNop())

	cases := []struct {
		name string
		req  CreateSubjectRequest
		msg  string
	}{
		{name: "missing teacher", req: CreateSubjectRequest{Code: "MATH", Name: "Math", Section: "X-A", WeeklyPeriods: 2}, msg: "teacher is required"},
		{name: "too many periods", req: CreateSubjectRequest{Code: "MATH", Name: "Math", Teacher: "Budi", Section: "X-A", WeeklyPeriods: 21}, msg: "weekly_periods must be at most 20"},
		{name: "bad room type", req: CreateSubjectRequest{Code: "MATH", Name: "Math", Teacher: "Budi", Section: "X-A", WeeklyPeriods: 2, RoomType: "gym"}, msg: "room_type must be one of: lecture lab"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req, "")
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}
}

func TestSubjectServiceCreateDuplicate(t *testing.T) {
	req := CreateSubjectRequest{Code: "MATH", Name: "Math", Teacher: "Budi", Section: "X-A", WeeklyPeriods: 2}

	svc := NewSubjectService(&subjectRepoMock{exists: true}, nil, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), req, "")
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	svc = NewSubjectService(&subjectRepoMock{createErr: repository.ErrDuplicate}, nil, nil, zap.NewNop())
	_, err = svc.Create(context.Background(), req, "")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}
