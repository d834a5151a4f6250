package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// AcademicYearRepository persists academic years.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository constructs an academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// Create inserts an academic year and fills in its generated ID.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	const query = `INSERT INTO academic_years (name, start_date, end_date)
VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, year.Name, year.StartDate, year.EndDate).
		Scan(&year.ID); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// FindByID fetches an academic year.
func (r *AcademicYearRepository) FindByID(ctx context.Context, id int64) (*models.AcademicYear, error) {
	const query = `SELECT id, name, start_date, end_date FROM academic_years WHERE id = $1`
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// List returns all academic years ordered by start date.
func (r *AcademicYearRepository) List(ctx context.Context) ([]models.AcademicYear, error) {
	const query = `SELECT id, name, start_date, end_date FROM academic_years ORDER BY start_date`
	years := []models.AcademicYear{}
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}
