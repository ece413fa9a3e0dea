package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "dance_class_id", "enrolled_at", "is_active"}).
		AddRow("enr-1", "stu-1", "class-1", time.Now(), true)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT ON CONSTRAINT enrollments_student_class_key")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "class-1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	enrollment, err := repo.Upsert(context.Background(), "stu-1", "class-1")
	require.NoError(t, err)
	require.True(t, enrollment.IsActive)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCancel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET is_active = FALSE WHERE id = $1 AND student_id = $2")).
		WithArgs("enr-1", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), "enr-1", "stu-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCancelNotOwned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET is_active = FALSE WHERE id = $1 AND student_id = $2")).
		WithArgs("enr-1", "other-student").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), "enr-1", "other-student")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActiveByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "dance_class_id", "enrolled_at", "is_active", "class_name", "class_level", "class_instructor", "class_schedule", "student_name"}).
		AddRow("enr-1", "stu-1", "class-1", time.Now(), true, "Salsa", "beginner", "Maria", "Mon 18:00", "Jane Doe")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1 AND e.is_active")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, "Salsa", enrollments[0].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActiveByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "dance_class_id", "enrolled_at", "is_active", "class_name", "class_level", "class_instructor", "class_schedule", "student_name"}).
		AddRow("enr-1", "stu-1", "class-1", time.Now(), true, "Salsa", "beginner", "Maria", "Mon 18:00", "Jane Doe").
		AddRow("enr-2", "stu-2", "class-1", time.Now(), true, "Salsa", "beginner", "Maria", "Mon 18:00", "John Smith")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.dance_class_id = $1 AND e.is_active")).
		WithArgs("class-1").
		WillReturnRows(rows)

	roster, err := repo.ListActiveByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListFiltersByActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "dance_class_id", "enrolled_at", "is_active", "class_name", "class_level", "class_instructor", "class_schedule", "student_name"}).
		AddRow("enr-1", "stu-1", "class-1", time.Now(), true, "Salsa", "beginner", "Maria", "Mon 18:00", "Jane Doe")
	mock.ExpectQuery(regexp.QuoteMeta("e.is_active = $1")).
		WithArgs(true).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := true
	enrollments, total, err := repo.List(context.Background(), models.EnrollmentFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
