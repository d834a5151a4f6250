package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// BlackoutRepository persists blackout (no-class) days.
type BlackoutRepository struct {
	db *sqlx.DB
}

// NewBlackoutRepository constructs a blackout repository.
func NewBlackoutRepository(db *sqlx.DB) *BlackoutRepository {
	return &BlackoutRepository{db: db}
}

// Create inserts a blackout day and fills in its generated ID.
func (r *BlackoutRepository) Create(ctx context.Context, day *models.NoClassDay) error {
	const query = `INSERT INTO no_class_days (date, reason) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, day.Date, day.Reason).Scan(&day.ID); err != nil {
		return fmt.Errorf("create no-class day: %w", err)
	}
	return nil
}

// List returns all blackout days ordered by date.
func (r *BlackoutRepository) List(ctx context.Context) ([]models.NoClassDay, error) {
	const query = `SELECT id, date, reason FROM no_class_days ORDER BY date`
	days := []models.NoClassDay{}
	if err := r.db.SelectContext(ctx, &days, query); err != nil {
		return nil, fmt.Errorf("list no-class days: %w", err)
	}
	return days, nil
}

// Delete removes a blackout day. Returns sql.ErrNoRows when the ID is unknown.
func (r *BlackoutRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM no_class_days WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete no-class day: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete no-class day: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DateSet returns the blackout dates collapsed to midnight UTC, for overlap
// checks during class generation.
func (r *BlackoutRepository) DateSet(ctx context.Context) (map[time.Time]struct{}, error) {
	days, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		y, m, day := d.Date.Date()
		set[time.Date(y, m, day, 0, 0, 0, 0, time.UTC)] = struct{}{}
	}
	return set, nil
}
