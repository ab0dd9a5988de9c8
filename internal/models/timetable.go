package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Timetable is the header row of one generation run.
type Timetable struct {
	ID            string         `db:"id" json:"id"`
	GeneratedBy   *string        `db:"generated_by" json:"generated_by,omitempty"`
	Days          types.JSONText `db:"days" json:"days"`
	PeriodsPerDay int            `db:"periods_per_day" json:"periods_per_day"`
	Score         float64        `db:"score" json:"score"`
	Stats         types.JSONText `db:"stats" json:"stats"`
	Conflicts     types.JSONText `db:"conflicts" json:"conflicts"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// TimetableEntry places one lesson of a section in a day/period/room cell.
type TimetableEntry struct {
	ID          string `db:"id" json:"id"`
	TimetableID string `db:"timetable_id" json:"timetable_id"`
	Section     string `db:"section" json:"section"`
	DayOfWeek   int    `db:"day_of_week" json:"day_of_week"`
	Period      int    `db:"period" json:"period"`
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	Teacher     string `db:"teacher" json:"teacher"`
	RoomID      string `db:"room_id" json:"room_id"`
	RoomName    string `db:"room_name" json:"room_name"`
}
