package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	"github.com/noah-isme/schedulifyx-api/internal/middleware"
	"github.com/noah-isme/schedulifyx-api/internal/service"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest, generatedBy string) (*dto.TimetableResponse, error)
	ResultCached(ctx context.Context, section string) (*dto.TimetableResponse, bool, error)
}

type timetableExporter interface {
	Render(timetable *dto.TimetableResponse, format string) (*service.ExportFile, error)
}

// TimetableHandler serves timetable generation and results.
type TimetableHandler struct {
	service  timetableService
	exporter timetableExporter
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc timetableService, exporter timetableExporter) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate timetable
// @Description Build a clash-free timetable from the stored subjects and rooms
// @Tags Timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateTimetableRequest false "Generation options"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /generate-time-table [post]
func (h *TimetableHandler) Generate(c *gin.Context) error {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload")
	}
	timetable, err := h.service.Generate(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		return err
	}
	response.Created(c, "Timetable generated successfully", timetable)
	return nil
}

// Result godoc
// @Summary Latest timetable
// @Description Return the most recent timetable as JSON or as a CSV, PDF or iCalendar download
// @Tags Timetable
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Produce text/calendar
// @Param section query string false "Only this section"
// @Param format query string false "json, csv, pdf or ics"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} map[string]string
// @Router /result-time-table [get]
func (h *TimetableHandler) Result(c *gin.Context) error {
	var query dto.TimetableResultQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query")
	}
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format != "" && format != service.ExportFormatJSON && !service.IsExportFormat(format) {
		return appErrors.Clone(appErrors.ErrValidation, "format must be one of: json csv pdf ics")
	}

	timetable, hit, err := h.service.ResultCached(c.Request.Context(), query.Section)
	if err != nil {
		return err
	}

	if service.IsExportFormat(format) {
		file, err := h.exporter.Render(timetable, format)
		if err != nil {
			return err
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Body)
		return nil
	}

	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, "", timetable, middleware.ExtractMeta(c))
	return nil
}
