package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// LevelRepository persists levels.
type LevelRepository struct {
	db *sqlx.DB
}

// NewLevelRepository constructs a level repository.
func NewLevelRepository(db *sqlx.DB) *LevelRepository {
	return &LevelRepository{db: db}
}

// Create inserts a level and fills in its generated ID.
func (r *LevelRepository) Create(ctx context.Context, level *models.Level) error {
	const query = `INSERT INTO levels (name, start_date, academic_year_id)
VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, level.Name, level.StartDate, level.AcademicYearID).
		Scan(&level.ID, &level.CreatedAt); err != nil {
		return fmt.Errorf("create level: %w", err)
	}
	return nil
}

// FindByID fetches a level.
func (r *LevelRepository) FindByID(ctx context.Context, id int64) (*models.Level, error) {
	const query = `SELECT id, name, start_date, academic_year_id, created_at FROM levels WHERE id = $1`
	var level models.Level
	if err := r.db.GetContext(ctx, &level, query, id); err != nil {
		return nil, err
	}
	return &level, nil
}
