package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// ActivityRepository stores the admin activity feed.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity row.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activities (id, action, item, type, user_id, created_at)
		VALUES (:id, :action, :item, :type, :user_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// ListRecent returns the newest activities first.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, action, item, type, user_id, created_at FROM activities ORDER BY created_at DESC LIMIT $1`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, limit); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}
