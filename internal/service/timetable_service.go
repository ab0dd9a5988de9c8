package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	"github.com/noah-isme/schedulifyx-api/internal/models"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/validation"
)

const (
	timetableCacheKey = "timetable:latest"

	// EventTimetableGenerated is broadcast after a timetable is stored.
	EventTimetableGenerated = "timetable.generated"
)

type timetableSubjectReader interface {
	List(ctx context.Context, sections []string) ([]models.Subject, error)
}

type timetableRoomReader interface {
	List(ctx context.Context) ([]models.Room, error)
}

type timetableRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	InsertEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
	Latest(ctx context.Context) (*models.Timetable, error)
	ListEntries(ctx context.Context, timetableID string) ([]models.TimetableEntry, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetablePublisher fans generation events out to realtime subscribers.
type TimetablePublisher interface {
	Publish(event dto.TimetableEvent)
}

// TimetableConfig carries generator defaults.
type TimetableConfig struct {
	Days          []int
	PeriodsPerDay int
	CacheTTL      time.Duration
}

// TimetableService generates, stores and serves timetables.
type TimetableService struct {
	subjects  timetableSubjectReader
	rooms     timetableRoomReader
	repo      timetableRepository
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	publisher TimetablePublisher
	validator *validator.Validate
	logger    *zap.Logger
	config    TimetableConfig
	now       func() time.Time
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	subjects timetableSubjectReader,
	rooms timetableRoomReader,
	repo timetableRepository,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	publisher TimetablePublisher,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Days = normalizeDays(cfg.Days)
	if len(cfg.Days) == 0 {
		cfg.Days = []int{1, 2, 3, 4, 5}
	}
	if cfg.PeriodsPerDay <= 0 {
		cfg.PeriodsPerDay = 6
	}
	return &TimetableService{
		subjects:  subjects,
		rooms:     rooms,
		repo:      repo,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		publisher: publisher,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Generate builds a new timetable from every stored subject and room,
// persists it and makes it the latest result.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest, generatedBy string) (resp *dto.TimetableResponse, err error) {
	start := s.now()
	defer func() {
		if err != nil {
			s.metrics.ObserveGeneration("failed", s.now().Sub(start), 0, 0)
		}
	}()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.FirstMessage(err, "invalid timetable payload"))
	}

	days := normalizeDays(req.Days)
	if len(days) == 0 {
		days = s.config.Days
	}
	periods := req.PeriodsPerDay
	if periods <= 0 {
		periods = s.config.PeriodsPerDay
	}

	subjects, err := s.subjects.List(ctx, req.Sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "add at least one subject before generating a timetable")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "add at least one room before generating a timetable")
	}

	out := generateTimetable(timetableInput{Days: days, PeriodsPerDay: periods, Subjects: subjects, Rooms: rooms})

	resp = &dto.TimetableResponse{
		ID:            uuid.NewString(),
		GeneratedAt:   s.now().UTC(),
		GeneratedBy:   generatedBy,
		Days:          days,
		PeriodsPerDay: periods,
		Score:         out.Score,
		Stats:         out.Stats,
		Sections:      sectionsOf(subjects),
		Slots:         out.Slots,
		Conflicts:     out.Conflicts,
	}

	if err := s.persist(ctx, resp); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, timetableCacheKey, resp, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache timetable", zap.String("timetable_id", resp.ID), zap.Error(err))
	}

	s.metrics.ObserveGeneration("success", s.now().Sub(start), resp.Score, len(resp.Conflicts))
	if s.publisher != nil {
		s.publisher.Publish(dto.TimetableEvent{
			Type:        EventTimetableGenerated,
			TimetableID: resp.ID,
			Score:       resp.Score,
			Conflicts:   len(resp.Conflicts),
			GeneratedAt: resp.GeneratedAt,
		})
	}

	s.logger.Info("timetable generated",
		zap.String("timetable_id", resp.ID),
		zap.Int("slots", len(resp.Slots)),
		zap.Int("conflicts", len(resp.Conflicts)),
		zap.Float64("score", resp.Score),
	)
	return resp, nil
}

func (s *TimetableService) persist(ctx context.Context, resp *dto.TimetableResponse) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	daysJSON, err := json.Marshal(resp.Days)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable days")
	}
	statsJSON, err := json.Marshal(resp.Stats)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable stats")
	}
	conflictsJSON, err := json.Marshal(resp.Conflicts)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable conflicts")
	}

	header := &models.Timetable{
		ID:            resp.ID,
		Days:          types.JSONText(daysJSON),
		PeriodsPerDay: resp.PeriodsPerDay,
		Score:         resp.Score,
		Stats:         types.JSONText(statsJSON),
		Conflicts:     types.JSONText(conflictsJSON),
		CreatedAt:     resp.GeneratedAt,
	}
	if resp.GeneratedBy != "" {
		generatedBy := resp.GeneratedBy
		header.GeneratedBy = &generatedBy
	}

	entries := make([]models.TimetableEntry, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		entries = append(entries, models.TimetableEntry{
			TimetableID: resp.ID,
			Section:     slot.Section,
			DayOfWeek:   slot.DayOfWeek,
			Period:      slot.Period,
			SubjectID:   slot.SubjectID,
			SubjectCode: slot.SubjectCode,
			SubjectName: slot.SubjectName,
			Teacher:     slot.Teacher,
			RoomID:      slot.RoomID,
			RoomName:    slot.RoomName,
		})
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.Create(ctx, tx, header); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}
	if err = s.repo.InsertEntries(ctx, tx, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable entries")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}
	return nil
}

// Result returns the most recent timetable, optionally narrowed to one section.
func (s *TimetableService) Result(ctx context.Context, section string) (*dto.TimetableResponse, error) {
	resp, _, err := s.ResultCached(ctx, section)
	return resp, err
}

// ResultCached is Result that also reports whether the cache served it.
func (s *TimetableService) ResultCached(ctx context.Context, section string) (*dto.TimetableResponse, bool, error) {
	var cached dto.TimetableResponse
	if hit, _ := s.cache.Get(ctx, timetableCacheKey, &cached); hit {
		return filterSection(&cached, section), true, nil
	}

	header, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "No timetable generated yet")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	entries, err := s.repo.ListEntries(ctx, header.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}

	resp, err := timetableFromModels(header, entries)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode timetable")
	}
	if err := s.cache.Set(ctx, timetableCacheKey, resp, s.config.CacheTTL); err != nil {
		s.logger.Warn("failed to cache timetable", zap.String("timetable_id", resp.ID), zap.Error(err))
	}
	return filterSection(resp, section), false, nil
}

func timetableFromModels(header *models.Timetable, entries []models.TimetableEntry) (*dto.TimetableResponse, error) {
	resp := &dto.TimetableResponse{
		ID:            header.ID,
		GeneratedAt:   header.CreatedAt,
		PeriodsPerDay: header.PeriodsPerDay,
		Score:         header.Score,
		Slots:         make([]dto.TimetableSlot, 0, len(entries)),
		Conflicts:     []dto.TimetableConflict{},
	}
	if header.GeneratedBy != nil {
		resp.GeneratedBy = *header.GeneratedBy
	}
	if len(header.Days) > 0 {
		if err := header.Days.Unmarshal(&resp.Days); err != nil {
			return nil, err
		}
	}
	if len(header.Stats) > 0 {
		if err := header.Stats.Unmarshal(&resp.Stats); err != nil {
			return nil, err
		}
	}
	if len(header.Conflicts) > 0 {
		if err := header.Conflicts.Unmarshal(&resp.Conflicts); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		resp.Slots = append(resp.Slots, dto.TimetableSlot{
			Section:     entry.Section,
			DayOfWeek:   entry.DayOfWeek,
			Day:         dayName(entry.DayOfWeek),
			Period:      entry.Period,
			SubjectID:   entry.SubjectID,
			SubjectCode: entry.SubjectCode,
			SubjectName: entry.SubjectName,
			Teacher:     entry.Teacher,
			RoomID:      entry.RoomID,
			RoomName:    entry.RoomName,
		})
		if _, ok := seen[entry.Section]; !ok {
			seen[entry.Section] = struct{}{}
			resp.Sections = append(resp.Sections, entry.Section)
		}
	}
	sortSlots(resp.Slots)
	sort.Strings(resp.Sections)
	return resp, nil
}

// filterSection returns a copy holding only the given section's slots.
func filterSection(resp *dto.TimetableResponse, section string) *dto.TimetableResponse {
	section = strings.TrimSpace(section)
	if section == "" {
		return resp
	}
	filtered := *resp
	filtered.Slots = make([]dto.TimetableSlot, 0)
	for _, slot := range resp.Slots {
		if strings.EqualFold(slot.Section, section) {
			filtered.Slots = append(filtered.Slots, slot)
		}
	}
	filtered.Sections = []string{section}
	for _, name := range resp.Sections {
		if strings.EqualFold(name, section) {
			filtered.Sections = []string{name}
		}
	}
	return &filtered
}

func sectionsOf(subjects []models.Subject) []string {
	seen := make(map[string]struct{})
	var sections []string
	for _, subject := range subjects {
		if _, ok := seen[subject.Section]; ok {
			continue
		}
		seen[subject.Section] = struct{}{}
		sections = append(sections, subject.Section)
	}
	sort.Strings(sections)
	return sections
}
