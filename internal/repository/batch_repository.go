package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// TIME columns are cast to text so they scan into "HH:MM:SS" strings.
const batchColumns = `b.id, b.name, b.description, b.faculty_id, b.skill_id, b.start_date, b.end_date,
b.start_time::text AS start_time, b.end_time::text AS end_time, b.days_of_week, b.max_students, b.created_at, b.updated_at`

const batchDetailSelect = `SELECT ` + batchColumns + `, f.name AS faculty_name, s.name AS skill_name,
(SELECT COUNT(*) FROM batch_students bs WHERE bs.batch_id = b.id) AS student_count
FROM batches b
LEFT JOIN faculty f ON f.id = b.faculty_id
LEFT JOIN skills s ON s.id = b.skill_id`

// BatchRepository manages persistence for batches and their enrolments.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// List returns batch details ordered by start date.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.BatchDetail, error) {
	where, args := batchConditions(filter)
	query := batchDetailSelect + where + " ORDER BY b.start_date DESC, b.name ASC"
	var batches []models.BatchDetail
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// FindByID fetches a single batch detail.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.BatchDetail, error) {
	query := batchDetailSelect + " WHERE b.id = $1"
	var batch models.BatchDetail
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListSchedules returns bare batch rows used by the scheduling checks.
func (r *BatchRepository) ListSchedules(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	where, args := batchConditions(filter)
	query := "SELECT " + batchColumns + " FROM batches b" + where + " ORDER BY b.start_time ASC"
	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batch schedules: %w", err)
	}
	return batches, nil
}

// ListByStudent returns the batches a student is enrolled in.
func (r *BatchRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BatchDetail, error) {
	query := batchDetailSelect + ` JOIN batch_students enr ON enr.batch_id = b.id WHERE enr.student_id = $1 ORDER BY b.start_date DESC`
	var batches []models.BatchDetail
	if err := r.db.SelectContext(ctx, &batches, query, studentID); err != nil {
		return nil, fmt.Errorf("list student batches: %w", err)
	}
	return batches, nil
}

func batchConditions(filter models.BatchFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		conditions = append(conditions, fmt.Sprintf("b.faculty_id = $%d", len(args)))
	}
	if filter.EndOnOrFrom != nil {
		args = append(args, *filter.EndOnOrFrom)
		conditions = append(conditions, fmt.Sprintf("b.end_date >= $%d", len(args)))
	}
	if filter.StartBefore != nil {
		args = append(args, *filter.StartBefore)
		conditions = append(conditions, fmt.Sprintf("b.start_date <= $%d", len(args)))
	}
	if filter.ExcludeID != "" {
		args = append(args, filter.ExcludeID)
		conditions = append(conditions, fmt.Sprintf("b.id <> $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Create inserts a batch and enrols the given students in one transaction.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch, studentIDs []string) (err error) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO batches (id, name, description, faculty_id, skill_id, start_date, end_date, start_time, end_time, days_of_week, max_students, created_at, updated_at)
		VALUES (:id, :name, :description, :faculty_id, :skill_id, :start_date, :end_date, :start_time, :end_time, :days_of_week, :max_students, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	if err = enrolStudents(ctx, tx, batch.ID, studentIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create batch: %w", err)
	}
	return nil
}

// Update modifies a batch. A non-nil studentIDs replaces the enrolment list.
func (r *BatchRepository) Update(ctx context.Context, batch *models.Batch, studentIDs []string) (err error) {
	batch.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE batches SET name = :name, description = :description, faculty_id = :faculty_id, skill_id = :skill_id,
		start_date = :start_date, end_date = :end_date, start_time = :start_time, end_time = :end_time,
		days_of_week = :days_of_week, max_students = :max_students, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if studentIDs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM batch_students WHERE batch_id = $1`, batch.ID); err != nil {
			return fmt.Errorf("clear batch students: %w", err)
		}
		if err = enrolStudents(ctx, tx, batch.ID, studentIDs); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update batch: %w", err)
	}
	return nil
}

func enrolStudents(ctx context.Context, tx *sqlx.Tx, batchID string, studentIDs []string) error {
	const query = `INSERT INTO batch_students (batch_id, student_id) VALUES ($1, $2) ON CONFLICT (batch_id, student_id) DO NOTHING`
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, query, batchID, studentID); err != nil {
			return fmt.Errorf("enrol student: %w", err)
		}
	}
	return nil
}

// UpdateFaculty permanently reassigns a batch to another faculty.
func (r *BatchRepository) UpdateFaculty(ctx context.Context, batchID, facultyID string) error {
	const query = `UPDATE batches SET faculty_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, batchID, facultyID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reassign batch faculty: %w", err)
	}
	return nil
}

// Delete removes a batch; enrolments, attendance and substitutions cascade.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// ListStudents returns students enrolled in a batch.
func (r *BatchRepository) ListStudents(ctx context.Context, batchID string) ([]models.Student, error) {
	const query = `SELECT s.id, s.name, s.admission_number, s.phone_number, s.remarks, s.created_at, s.updated_at
FROM students s JOIN batch_students bs ON bs.student_id = s.id
WHERE bs.batch_id = $1 ORDER BY s.name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch students: %w", err)
	}
	return students, nil
}

// CountActiveStudents counts distinct students enrolled in batches running on today.
func (r *BatchRepository) CountActiveStudents(ctx context.Context, today time.Time) (int, error) {
	const query = `SELECT COUNT(DISTINCT bs.student_id) FROM batch_students bs
JOIN batches b ON b.id = bs.batch_id
WHERE b.start_date <= $1 AND b.end_date >= $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, today); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return total, nil
}

// Merge moves every enrolment of source into target and deletes source.
// Both steps share one transaction so a failure leaves both batches untouched.
func (r *BatchRepository) Merge(ctx context.Context, sourceID, targetID string) (moved int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin merge batches: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const moveQuery = `INSERT INTO batch_students (batch_id, student_id)
SELECT $2, student_id FROM batch_students WHERE batch_id = $1
ON CONFLICT (batch_id, student_id) DO NOTHING`
	result, err := tx.ExecContext(ctx, moveQuery, sourceID, targetID)
	if err != nil {
		return 0, fmt.Errorf("move batch students: %w", err)
	}
	if moved, err = result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("count moved students: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, sourceID); err != nil {
		return 0, fmt.Errorf("delete merged batch: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge batches: %w", err)
	}
	return moved, nil
}
