package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

func TestClassRepositoryListDefaultsToNameAsc(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "level", "instructor", "schedule", "price", "max_students", "created_at", "updated_at"}).
		AddRow("class-1", "Ballet", "Classic ballet", "beginner", "Anna", "Tue 17:00", 50.0, 12, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC LIMIT 6 OFFSET 6")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dance_classes WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Page: 2, PageSize: 6})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, 13, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListFiltersByLevel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "level", "instructor", "schedule", "price", "max_students", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("level = $1")).
		WithArgs(models.LevelAdvanced).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(models.LevelAdvanced).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Level: models.LevelAdvanced})
	require.NoError(t, err)
	require.Empty(t, classes)
	require.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM dance_classes WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListAvailableForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "level", "instructor", "schedule", "price", "max_students", "created_at", "updated_at"}).
		AddRow("class-2", "Tango", "Argentine tango", "intermediate", "Carlos", "Wed 19:00", 60.0, 10, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE NOT EXISTS")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	classes, err := repo.ListAvailableForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, "Tango", classes[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
