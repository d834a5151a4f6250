package models

import "time"

// Class lifecycle statuses. Status is free text beyond these.
const (
	ClassStatusScheduled   = "scheduled"
	ClassStatusRescheduled = "rescheduled"
	ClassStatusCancelled   = "cancelled"
)

// Class is a concrete generated session. Rows with ManualOverride set are
// never deleted or overwritten by the generator.
type Class struct {
	ID             int64     `db:"id" json:"id"`
	GroupID        int64     `db:"group_id" json:"group_id"`
	AcademicYearID *int64    `db:"academic_year_id" json:"academic_year_id,omitempty"`
	WeekNumber     int       `db:"week_number" json:"week_number"`
	Date           time.Time `db:"date" json:"date"`
	StartTime      string    `db:"start_time" json:"start_time"`
	EndTime        *string   `db:"end_time" json:"end_time,omitempty"`
	Topic          string    `db:"topic" json:"topic"`
	TrimesterColor *string   `db:"trimester_color" json:"trimester_color,omitempty"`
	Status         string    `db:"status" json:"status"`
	ManualOverride bool      `db:"manual_override" json:"manual_override"`
}

// ClassDetail is a class joined with its group name and suggestions.
type ClassDetail struct {
	Class
	GroupName   string                   `db:"group_name" json:"group_name"`
	Suggestions []ReschedulingSuggestion `json:"suggestions"`
}

// ReschedulingSuggestion is an advisory note linking a class to an
// overlapping holiday. Rows are fully regenerated on holiday create/update.
type ReschedulingSuggestion struct {
	ID         int64  `db:"id" json:"id"`
	ClassID    int64  `db:"class_id" json:"class_id"`
	HolidayID  int64  `db:"holiday_id" json:"holiday_id"`
	Suggestion string `db:"suggestion" json:"suggestion"`
}

// SuggestionDetail carries the joined class topic and date for API output.
type SuggestionDetail struct {
	ReschedulingSuggestion
	ClassTopic    *string    `db:"class_topic" json:"class_topic,omitempty"`
	ScheduledDate *time.Time `db:"scheduled_date" json:"scheduled_date,omitempty"`
}
