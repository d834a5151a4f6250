package models

import "time"

// NoClassDay is a process-wide blackout date: the generator never
// materialises a class session on one of these dates.
type NoClassDay struct {
	ID     int64     `db:"id" json:"id"`
	Date   time.Time `db:"date" json:"date"`
	Reason *string   `db:"reason" json:"reason,omitempty"`
}

// AcademicYear groups classes and holidays for listing and reporting.
type AcademicYear struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// Holiday is a date range owned by an academic year. Creating or moving
// one triggers rescheduling-suggestion recomputation for overlapping classes.
type Holiday struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	AcademicYearID int64     `db:"academic_year_id" json:"academic_year_id"`
}
