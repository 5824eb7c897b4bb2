package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const substitutionColumns = `fs.id, fs.batch_id, fs.original_faculty_id, fs.substitute_faculty_id, fs.start_date, fs.end_date, fs.notes, fs.created_at, fs.updated_at`

const substitutionDetailSelect = `SELECT ` + substitutionColumns + `,
b.name AS batch_name, b.start_time::text AS batch_start_time, b.end_time::text AS batch_end_time, b.days_of_week AS batch_days_of_week,
ofac.name AS original_faculty_name, sfac.name AS substitute_faculty_name
FROM faculty_substitutions fs
JOIN batches b ON b.id = fs.batch_id
LEFT JOIN faculty ofac ON ofac.id = fs.original_faculty_id
LEFT JOIN faculty sfac ON sfac.id = fs.substitute_faculty_id`

// SubstitutionRepository manages temporary faculty substitutions.
type SubstitutionRepository struct {
	db *sqlx.DB
}

// NewSubstitutionRepository constructs a SubstitutionRepository.
func NewSubstitutionRepository(db *sqlx.DB) *SubstitutionRepository {
	return &SubstitutionRepository{db: db}
}

// ListCurrent returns substitutions that are active or upcoming on today.
func (r *SubstitutionRepository) ListCurrent(ctx context.Context, today time.Time) ([]models.SubstitutionDetail, error) {
	query := substitutionDetailSelect + " WHERE fs.end_date >= $1 ORDER BY fs.start_date ASC"
	var subs []models.SubstitutionDetail
	if err := r.db.SelectContext(ctx, &subs, query, today); err != nil {
		return nil, fmt.Errorf("list substitutions: %w", err)
	}
	return subs, nil
}

// FindByID fetches one substitution with its batch schedule.
func (r *SubstitutionRepository) FindByID(ctx context.Context, id string) (*models.SubstitutionDetail, error) {
	query := substitutionDetailSelect + " WHERE fs.id = $1"
	var sub models.SubstitutionDetail
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListBySubstitute returns substitutions a faculty covers that end on or after today.
func (r *SubstitutionRepository) ListBySubstitute(ctx context.Context, facultyID string, today time.Time) ([]models.SubstitutionDetail, error) {
	query := substitutionDetailSelect + " WHERE fs.substitute_faculty_id = $1 AND fs.end_date >= $2"
	var subs []models.SubstitutionDetail
	if err := r.db.SelectContext(ctx, &subs, query, facultyID, today); err != nil {
		return nil, fmt.Errorf("list substitutions by substitute: %w", err)
	}
	return subs, nil
}

// ListInRange returns every substitution intersecting [start, end].
func (r *SubstitutionRepository) ListInRange(ctx context.Context, start, end time.Time) ([]models.FacultySubstitution, error) {
	query := "SELECT " + substitutionColumns + " FROM faculty_substitutions fs WHERE fs.start_date <= $2 AND fs.end_date >= $1"
	var subs []models.FacultySubstitution
	if err := r.db.SelectContext(ctx, &subs, query, start, end); err != nil {
		return nil, fmt.Errorf("list substitutions in range: %w", err)
	}
	return subs, nil
}

// ListByBatch returns substitutions of one batch intersecting [start, end].
func (r *SubstitutionRepository) ListByBatch(ctx context.Context, batchID string, start, end time.Time) ([]models.FacultySubstitution, error) {
	query := "SELECT " + substitutionColumns + " FROM faculty_substitutions fs WHERE fs.batch_id = $1 AND fs.start_date <= $3 AND fs.end_date >= $2 ORDER BY fs.start_date"
	var subs []models.FacultySubstitution
	if err := r.db.SelectContext(ctx, &subs, query, batchID, start, end); err != nil {
		return nil, fmt.Errorf("list batch substitutions: %w", err)
	}
	return subs, nil
}

// HasOverlap reports whether the batch already has a substitution intersecting [start, end].
func (r *SubstitutionRepository) HasOverlap(ctx context.Context, batchID string, start, end time.Time, excludeID string) (bool, error) {
	query := "SELECT 1 FROM faculty_substitutions WHERE batch_id = $1 AND start_date <= $3 AND end_date >= $2"
	args := []interface{}{batchID, start, end}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check substitution overlap: %w", err)
	}
	return true, nil
}

// Create inserts a substitution.
func (r *SubstitutionRepository) Create(ctx context.Context, sub *models.FacultySubstitution) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	const query = `INSERT INTO faculty_substitutions (id, batch_id, original_faculty_id, substitute_faculty_id, start_date, end_date, notes, created_at, updated_at)
		VALUES (:id, :batch_id, :original_faculty_id, :substitute_faculty_id, :start_date, :end_date, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create substitution: %w", err)
	}
	return nil
}

// Update modifies the substitute, dates and notes of a substitution.
func (r *SubstitutionRepository) Update(ctx context.Context, sub *models.FacultySubstitution) error {
	sub.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculty_substitutions SET substitute_faculty_id = :substitute_faculty_id, start_date = :start_date,
		end_date = :end_date, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("update substitution: %w", err)
	}
	return nil
}

// Delete hard deletes a substitution, returning the batch to its owner.
func (r *SubstitutionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM faculty_substitutions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete substitution: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete substitution rows: %w", err)
	}
	return affected > 0, nil
}
