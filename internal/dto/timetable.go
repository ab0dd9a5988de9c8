package dto

import "time"

// GenerateTimetableRequest tunes a generation run. Empty fields fall back to
// the configured defaults and all sections are scheduled.
type GenerateTimetableRequest struct {
	Days          []int    `json:"days" validate:"omitempty,max=7,dive,min=1,max=7"`
	PeriodsPerDay int      `json:"periods_per_day" validate:"omitempty,min=1,max=16"`
	Sections      []string `json:"sections" validate:"omitempty,dive,required"`
}

// TimetableSlot is one placed lesson.
type TimetableSlot struct {
	Section     string `json:"section"`
	DayOfWeek   int    `json:"day_of_week"`
	Day         string `json:"day"`
	Period      int    `json:"period"`
	SubjectID   string `json:"subject_id"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	Teacher     string `json:"teacher"`
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name"`
}

// TimetableConflict records demand the generator could not satisfy.
type TimetableConflict struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// TimetableStats summarises a generation run.
type TimetableStats struct {
	RequestedLessons int     `json:"requested_lessons"`
	PlacedLessons    int     `json:"placed_lessons"`
	RepairIterations int     `json:"repair_iterations"`
	GapPenalty       float64 `json:"gap_penalty"`
}

// TimetableResponse is the generated or stored timetable returned to clients.
type TimetableResponse struct {
	ID            string              `json:"id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	GeneratedBy   string              `json:"generated_by,omitempty"`
	Days          []int               `json:"days"`
	PeriodsPerDay int                 `json:"periods_per_day"`
	Score         float64             `json:"score"`
	Stats         TimetableStats      `json:"stats"`
	Sections      []string            `json:"sections"`
	Slots         []TimetableSlot     `json:"slots"`
	Conflicts     []TimetableConflict `json:"conflicts"`
}

// TimetableResultQuery filters and formats the latest timetable.
type TimetableResultQuery struct {
	Section string `form:"section"`
	Format  string `form:"format"`
}

// TimetableEvent is pushed to realtime subscribers after a generation run.
type TimetableEvent struct {
	Type        string    `json:"type"`
	TimetableID string    `json:"timetable_id"`
	Score       float64   `json:"score"`
	Conflicts   int       `json:"conflicts"`
	GeneratedAt time.Time `json:"generated_at"`
}
