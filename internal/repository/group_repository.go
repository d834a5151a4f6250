package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lessonforge/planner-api/internal/models"
)

// GroupRepository persists teaching groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group and fills in its generated ID.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	const query = `INSERT INTO groups (level_id, name)
VALUES ($1, $2) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, group.LevelID, group.Name).
		Scan(&group.ID, &group.CreatedAt); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// FindByID fetches a group.
func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	const query = `SELECT id, level_id, name, created_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByLevel returns all groups that belong to a level.
func (r *GroupRepository) ListByLevel(ctx context.Context, levelID int64) ([]models.Group, error) {
	const query = `SELECT id, level_id, name, created_at FROM groups WHERE level_id = $1 ORDER BY name`
	groups := []models.Group{}
	if err := r.db.SelectContext(ctx, &groups, query, levelID); err != nil {
		return nil, fmt.Errorf("list groups by level: %w", err)
	}
	return groups, nil
}
