package models

import "time"

// RoomType classifies both rooms and the kind of room a subject needs.
type RoomType string

const (
	RoomTypeLecture RoomType = "lecture"
	RoomTypeLab     RoomType = "lab"
)

// Subject is a course taught to one section for a number of periods per week.
type Subject struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	Teacher       string    `db:"teacher" json:"teacher"`
	Section       string    `db:"section" json:"section"`
	WeeklyPeriods int       `db:"weekly_periods" json:"weekly_periods"`
	RoomType      RoomType  `db:"room_type" json:"room_type"`
	CreatedBy     *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
