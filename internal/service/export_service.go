package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
	"github.com/noah-isme/schedulifyx-api/pkg/export"
)

// Supported timetable export formats.
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatICS  = "ics"
)

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type icsRenderer interface {
	Render(name string, events []export.CalendarEvent) ([]byte, error)
}

// ExportConfig places periods on the wall clock for calendar exports.
type ExportConfig struct {
	Timezone         string
	FirstPeriodStart string
	PeriodLength     time.Duration
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders timetables as CSV, PDF or iCalendar files.
type ExportService struct {
	csv      csvRenderer
	pdf      pdfRenderer
	ics      icsRenderer
	location *time.Location
	start    time.Duration
	length   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, ics icsRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		if cfg.Timezone != "" {
			logger.Warn("unknown timetable timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
		location = time.UTC
	}
	start, ok := parseClock(cfg.FirstPeriodStart)
	if !ok {
		start = 8 * time.Hour
	}
	if cfg.PeriodLength <= 0 {
		cfg.PeriodLength = 45 * time.Minute
	}

	return &ExportService{
		csv:      csv,
		pdf:      pdf,
		ics:      ics,
		location: location,
		start:    start,
		length:   cfg.PeriodLength,
		logger:   logger,
		now:      time.Now,
	}
}

// IsExportFormat reports whether format names a file export rather than JSON.
func IsExportFormat(format string) bool {
	switch strings.ToLower(format) {
	case ExportFormatCSV, ExportFormatPDF, ExportFormatICS:
		return true
	}
	return false
}

// Render produces the requested export of the timetable.
func (s *ExportService) Render(timetable *dto.TimetableResponse, format string) (*ExportFile, error) {
	if timetable == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No timetable generated yet")
	}
	base := "timetable-" + timetable.GeneratedAt.UTC().Format("20060102-150405")
	if len(timetable.Sections) == 1 {
		base += "-" + slugify(timetable.Sections[0])
	}

	var (
		body []byte
		err  error
		file = &ExportFile{}
	)
	switch strings.ToLower(format) {
	case ExportFormatCSV:
		body, err = s.csv.Render(s.table(timetable))
		file.Filename, file.ContentType = base+".csv", "text/csv; charset=utf-8"
	case ExportFormatPDF:
		body, err = s.pdf.Render(s.table(timetable))
		file.Filename, file.ContentType = base+".pdf", "application/pdf"
	case ExportFormatICS:
		body, err = s.ics.Render(strings.Join(timetable.Sections, ", "), s.events(timetable))
		file.Filename, file.ContentType = base+".ics", "text/calendar; charset=utf-8"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("timetable export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}
	file.Body = body
	return file, nil
}

func (s *ExportService) table(timetable *dto.TimetableResponse) export.Table {
	rows := make([][]string, 0, len(timetable.Slots))
	for _, slot := range timetable.Slots {
		begin := s.start + time.Duration(slot.Period-1)*s.length
		rows = append(rows, []string{
			slot.Section,
			slot.Day,
			strconv.Itoa(slot.Period),
			formatClock(begin) + "-" + formatClock(begin+s.length),
			slot.SubjectCode,
			slot.SubjectName,
			slot.Teacher,
			slot.RoomName,
		})
	}
	return export.Table{
		Title:    "Timetable",
		Subtitle: fmt.Sprintf("Generated %s, score %.0f, %d conflict(s)", timetable.GeneratedAt.In(s.location).Format("2006-01-02 15:04"), timetable.Score, len(timetable.Conflicts)),
		Headers:  []string{"Section", "Day", "Period", "Time", "Code", "Subject", "Teacher", "Room"},
		Rows:     rows,
	}
}

// events anchors each slot on its next weekday occurrence from now.
func (s *ExportService) events(timetable *dto.TimetableResponse) []export.CalendarEvent {
	today := s.now().In(s.location)
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location)

	events := make([]export.CalendarEvent, 0, len(timetable.Slots))
	for _, slot := range timetable.Slots {
		offset := (isoWeekday(slot.DayOfWeek) - int(midnight.Weekday()) + 7) % 7
		day := midnight.AddDate(0, 0, offset)
		begin := day.Add(s.start + time.Duration(slot.Period-1)*s.length)
		events = append(events, export.CalendarEvent{
			UID:         fmt.Sprintf("%s-%s-%d-%d@schedulifyx", timetable.ID, slugify(slot.Section), slot.DayOfWeek, slot.Period),
			Summary:     fmt.Sprintf("%s %s (%s)", slot.SubjectCode, slot.SubjectName, slot.Section),
			Location:    slot.RoomName,
			Description: "Teacher: " + slot.Teacher,
			Start:       begin,
			End:         begin.Add(s.length),
		})
	}
	return events
}

// isoWeekday maps 1=Monday..7=Sunday onto time.Weekday numbering.
func isoWeekday(day int) int {
	return day % 7
}

func parseClock(raw string) (time.Duration, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}

func formatClock(d time.Duration) string {
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}

func slugify(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}
