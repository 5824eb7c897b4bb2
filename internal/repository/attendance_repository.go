package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AttendanceRepository persists per-session student attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes all marks of one sheet atomically keyed on (batch, student, date).
func (r *AttendanceRepository) Upsert(ctx context.Context, records []models.StudentAttendance) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO student_attendance (batch_id, student_id, date, is_present)
VALUES ($1, $2, $3, $4)
ON CONFLICT (batch_id, student_id, date) DO UPDATE SET is_present = EXCLUDED.is_present`
	for _, rec := range records {
		if _, err = tx.ExecContext(ctx, query, rec.BatchID, rec.StudentID, rec.Date, rec.IsPresent); err != nil {
			return fmt.Errorf("upsert attendance: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance: %w", err)
	}
	return nil
}

// ListByBatchDate returns the marks of one batch on one date with student names.
func (r *AttendanceRepository) ListByBatchDate(ctx context.Context, batchID string, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT a.batch_id, a.student_id, a.date, a.is_present, s.name AS student_name, s.admission_number
FROM student_attendance a JOIN students s ON s.id = a.student_id
WHERE a.batch_id = $1 AND a.date = $2 ORDER BY s.name ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, batchID, date); err != nil {
		return nil, fmt.Errorf("list daily attendance: %w", err)
	}
	return records, nil
}

// ListByBatches returns marks of the given batches between start and end inclusive.
func (r *AttendanceRepository) ListByBatches(ctx context.Context, batchIDs []string, start, end time.Time) ([]models.StudentAttendance, error) {
	if len(batchIDs) == 0 {
		return []models.StudentAttendance{}, nil
	}
	const query = `SELECT batch_id, student_id, date, is_present FROM student_attendance
WHERE batch_id = ANY($1) AND date BETWEEN $2 AND $3 ORDER BY date ASC, batch_id`
	var records []models.StudentAttendance
	if err := r.db.SelectContext(ctx, &records, query, pq.Array(batchIDs), start, end); err != nil {
		return nil, fmt.Errorf("list attendance range: %w", err)
	}
	return records, nil
}

// ListInRange returns every mark between start and end inclusive.
func (r *AttendanceRepository) ListInRange(ctx context.Context, start, end time.Time) ([]models.StudentAttendance, error) {
	const query = `SELECT batch_id, student_id, date, is_present FROM student_attendance WHERE date BETWEEN $1 AND $2 ORDER BY date ASC`
	var records []models.StudentAttendance
	if err := r.db.SelectContext(ctx, &records, query, start, end); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
