package models

import "time"

// Level is a cohort that anchors a shared calendar start date. Every
// week-number to calendar-date conversion for its groups starts here.
type Level struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	AcademicYearID *int64    `db:"academic_year_id" json:"academic_year_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Group is a class section within a level with its own weekly meeting pattern.
type Group struct {
	ID        int64     `db:"id" json:"id"`
	LevelID   int64     `db:"level_id" json:"level_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScheduleSlot is a recurring weekday/time window for a group.
// Weekday is an offset from the level start date (0 = the start weekday).
type ScheduleSlot struct {
	ID        int64   `db:"id" json:"id"`
	GroupID   int64   `db:"group_id" json:"group_id"`
	Weekday   int     `db:"weekday" json:"weekday"`
	StartTime string  `db:"start_time" json:"start_time"`
	EndTime   *string `db:"end_time" json:"end_time,omitempty"`
}
