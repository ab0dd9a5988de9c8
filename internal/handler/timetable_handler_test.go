package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	"github.com/noah-isme/schedulifyx-api/internal/middleware"
	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/service"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
)

type timetableServiceMock struct {
	generated   dto.GenerateTimetableRequest
	generatedBy string
	section     string
	resultErr   error
	hit         bool
}

func (m *timetableServiceMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest, generatedBy string) (*dto.TimetableResponse, error) {
	m.generated = req
	m.generatedBy = generatedBy
	return &dto.TimetableResponse{ID: "tt-1"}, nil
}

func (m *timetableServiceMock) ResultCached(ctx context.Context, section string) (*dto.TimetableResponse, bool, error) {
	m.section = section
	if m.resultErr != nil {
		return nil, false, m.resultErr
	}
	return &dto.TimetableResponse{ID: "tt-1", GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, m.hit, nil
}

type subjectCreatorMock struct {
	createdBy string
}

func (m *subjectCreatorMock) Create(ctx context.Context, req service.CreateSubjectRequest, createdBy string) (*models.Subject, error) {
	m.createdBy = createdBy
	return &models.Subject{ID: "s-1", Code: req.Code}, nil
}

type roomCreatorMock struct{}

func (roomCreatorMock) Create(ctx context.Context, req service.CreateRoomRequest, createdBy string) (*models.Room, error) {
	return &models.Room{ID: "r-1", Name: req.Name}, nil
}

func TestTimetableGenerateUsesCaller(t *testing.T) {
	svc := &timetableServiceMock{}
	handler := NewTimetableHandler(svc, service.NewExportService(service.ExportConfig{}, nil, nil, nil, nil))
	c, w := newJSONContext(http.MethodPost, "/generate-time-table", `{"periods_per_day":5}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1"})

	require.NoError(t, handler.Generate(c))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 5, svc.generated.PeriodsPerDay)
	assert.Equal(t, "admin-1", svc.generatedBy)
}

func TestTimetableGenerateAcceptsEmptyBody(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{}, nil)
	c, w := newJSONContext(http.MethodPost, "/generate-time-table", "")

	require.NoError(t, handler.Generate(c))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTimetableResultJSONWithSection(t *testing.T) {
	svc := &timetableServiceMock{hit: true}
	handler := NewTimetableHandler(svc, nil)
	c, w := newJSONContext(http.MethodGet, "/result-time-table?section=X-A", "")

	require.NoError(t, handler.Result(c))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "X-A", svc.section)
	assert.Contains(t, w.Body.String(), `"id":"tt-1"`)
}

func TestTimetableResultExportsCSV(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{}, service.NewExportService(service.ExportConfig{}, nil, nil, nil, nil))
	c, w := newJSONContext(http.MethodGet, "/result-time-table?format=csv", "")

	require.NoError(t, handler.Result(c))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable-20240101-000000.csv")
}

func TestTimetableResultRejectsUnknownFormat(t *testing.T) {
	svc := &timetableServiceMock{}
	handler := NewTimetableHandler(svc, nil)
	c, _ := newJSONContext(http.MethodGet, "/result-time-table?format=xlsx", "")

	assert.ErrorIs(t, handler.Result(c), appErrors.ErrValidation)
	assert.Empty(t, svc.section)
}

func TestTimetableResultNotFound(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{resultErr: appErrors.Clone(appErrors.ErrNotFound, "No timetable generated yet")}, nil)
	c, _ := newJSONContext(http.MethodGet, "/result-time-table", "")

	err := handler.Result(c)
	require.Error(t, err)
	assert.Equal(t, "No timetable generated yet", appErrors.FromError(err).Message)
}

func TestSubjectAndRoomCreate(t *testing.T) {
	subjects := &subjectCreatorMock{}
	c, w := newJSONContext(http.MethodPost, "/add-subject", `{"code":"math","name":"Math","teacher":"Budi","section":"X-A","weekly_periods":3}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, NewSubjectHandler(subjects).Create(c))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin-1", subjects.createdBy)

	c, w = newJSONContext(http.MethodPost, "/add-room-venue", `{"name":"Lab 1","capacity":20,"room_type":"lab"}`)
	require.NoError(t, NewRoomHandler(roomCreatorMock{}).Create(c))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Room added successfully")

	c, _ = newJSONContext(http.MethodPost, "/add-room-venue", `{"capacity":"many"}`)
	assert.ErrorIs(t, NewRoomHandler(roomCreatorMock{}).Create(c), appErrors.ErrValidation)
}
