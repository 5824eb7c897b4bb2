package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "role", "faculty_id", "created_at", "updated_at"}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM users\s+WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("admin@center.test").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u1", "admin", "admin@center.test", "hash", "admin", nil, now, now))

	user, err := repo.FindByEmail(context.Background(), "admin@center.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Nil(t, user.FacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.FindByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND role = $1 AND (LOWER(username) LIKE $2 OR LOWER(email) LIKE $2) ORDER BY username ASC LIMIT 10 OFFSET 10")).
		WithArgs("faculty", "%asha%").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow("u2", "asha", "asha@center.test", "hash", "faculty", "f1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1")).
		WithArgs("faculty", "%asha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: models.RoleFaculty, Search: "Asha", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].FacultyID)
	assert.Equal(t, "f1", *users[0].FacultyID)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListDefaultsPaging(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY username ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	users, total, err := repo.List(context.Background(), models.UserFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, username, email, password_hash, role, faculty_id, created_at, updated_at)")).
		WithArgs("u3", "ben", "ben@center.test", "hash", "faculty", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	facultyID := "f2"
	user := &models.User{ID: "u3", Username: "ben", Email: "ben@center.test", PasswordHash: "hash", Role: models.RoleFaculty, FacultyID: &facultyID}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateRole(t *testing.T) {
	t.Run("updates role and link", func(t *testing.T) {
		db, mock, cleanup := newRepoMock(t)
		defer cleanup()
		repo := NewUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $2, faculty_id = $3")).
			WithArgs("u1", "admin", nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateRole(context.Background(), "u1", models.RoleAdmin, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock, cleanup := newRepoMock(t)
		defer cleanup()
		repo := NewUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateRole(context.Background(), "gone", models.RoleAdmin, nil)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
