package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE 1=1 AND (LOWER(s.name) LIKE $1 OR LOWER(s.admission_number) LIKE $1) AND NOT EXISTS (SELECT 1 FROM batch_students bs WHERE bs.student_id = s.id) ORDER BY s.name ASC LIMIT 10 OFFSET 10")).
		WithArgs("%ria%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "admission_number", "phone_number", "remarks", "created_at", "updated_at"}).
			AddRow("s1", "Ria", "ADM-1", nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE 1=1")).
		WithArgs("%ria%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Ria", Unassigned: true, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByAdmissionNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE admission_number = $1 AND id <> $2 LIMIT 1")).
		WithArgs("ADM-1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsByAdmissionNumber(context.Background(), "ADM-1", "s1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (batch_id, student_id, date) DO UPDATE SET is_present = EXCLUDED.is_present")).
		WithArgs("b1", "s1", date, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_attendance").
		WithArgs("b1", "s2", date, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), []models.StudentAttendance{
		{BatchID: "b1", StudentID: "s1", Date: date, IsPresent: true},
		{BatchID: "b1", StudentID: "s2", Date: date, IsPresent: false},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListRecentClampsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activities ORDER BY created_at DESC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "item", "type", "user_id", "created_at"}).
			AddRow("a1", "created", "Math101", "batch", nil, time.Now()))

	activities, err := repo.ListRecent(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, activities, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
