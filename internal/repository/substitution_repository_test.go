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

func TestSubstitutionRepositoryHasOverlap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM faculty_substitutions WHERE batch_id = $1 AND start_date <= $3 AND end_date >= $2 AND id <> $4 LIMIT 1")).
		WithArgs("b1", start, end, "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.HasOverlap(context.Background(), "b1", start, end, "s1")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM faculty_substitutions WHERE batch_id = $1 AND start_date <= $3 AND end_date >= $2 LIMIT 1")).
		WithArgs("b1", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err = repo.HasOverlap(context.Background(), "b1", start, end, "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryListBySubstituteScansBatchSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "batch_id", "original_faculty_id", "substitute_faculty_id", "start_date", "end_date", "notes", "created_at", "updated_at",
		"batch_name", "batch_start_time", "batch_end_time", "batch_days_of_week", "original_faculty_name", "substitute_faculty_name",
	}).AddRow("s1", "b1", "f1", "f2", today, today.AddDate(0, 0, 9), nil, today, today,
		"Physics", "14:00:00", "15:00:00", "{Wednesday}", "Asha", "Ben")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE fs.substitute_faculty_id = $1 AND fs.end_date >= $2")).
		WithArgs("f2", today).
		WillReturnRows(rows)

	subs, err := repo.ListBySubstitute(context.Background(), "f2", today)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Physics", subs[0].BatchName)
	assert.Equal(t, []string{"Wednesday"}, []string(subs[0].BatchDaysOfWeek))
	assert.Equal(t, "f2", subs[0].SubstituteFacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec("INSERT INTO faculty_substitutions").WillReturnResult(sqlmock.NewResult(1, 1))
	sub := &models.FacultySubstitution{BatchID: "b1", OriginalFacultyID: "f1", SubstituteFacultyID: "f2"}
	require.NoError(t, repo.Create(context.Background(), sub))
	assert.NotEmpty(t, sub.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculty_substitutions WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	deleted, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
