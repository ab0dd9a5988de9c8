package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/schedulifyx-api/internal/models"
)

// TimetableRepository persists generated timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a timetable header.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if len(timetable.Days) == 0 {
		timetable.Days = types.JSONText(`[]`)
	}
	if len(timetable.Stats) == 0 {
		timetable.Stats = types.JSONText(`{}`)
	}
	if len(timetable.Conflicts) == 0 {
		timetable.Conflicts = types.JSONText(`[]`)
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO timetables (id, generated_by, days, periods_per_day, score, stats, conflicts, created_at)
VALUES (:id, :generated_by, :days, :periods_per_day, :score, :stats, :conflicts, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// InsertEntries stores the placed lessons of a timetable in one statement.
func (r *TimetableRepository) InsertEntries(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const columns = 11
	placeholders := make([]string, 0, len(entries))
	args := make([]interface{}, 0, len(entries)*columns)
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		base := i * columns
		holders := make([]string, columns)
		for j := 0; j < columns; j++ {
			holders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(holders, ", ")+")")
		args = append(args,
			entry.ID, entry.TimetableID, entry.Section, entry.DayOfWeek, entry.Period,
			entry.SubjectID, entry.SubjectCode, entry.SubjectName, entry.Teacher,
			entry.RoomID, entry.RoomName,
		)
	}

	query := `INSERT INTO timetable_entries (id, timetable_id, section, day_of_week, period, subject_id, subject_code, subject_name, teacher, room_id, room_name) VALUES ` +
		strings.Join(placeholders, ", ")
	if _, err := r.exec(exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert timetable entries: %w", err)
	}
	return nil
}

// Latest returns the most recently generated timetable header.
func (r *TimetableRepository) Latest(ctx context.Context) (*models.Timetable, error) {
	const query = `SELECT id, generated_by, days, periods_per_day, score, stats, conflicts, created_at
FROM timetables ORDER BY created_at DESC LIMIT 1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListEntries returns the placed lessons of a timetable ordered for display.
func (r *TimetableRepository) ListEntries(ctx context.Context, timetableID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, timetable_id, section, day_of_week, period, subject_id, subject_code, subject_name, teacher, room_id, room_name
FROM timetable_entries WHERE timetable_id = $1 ORDER BY section ASC, day_of_week ASC, period ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
