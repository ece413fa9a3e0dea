package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

type mockStudentRepo struct {
	byUserID map[string]*models.Student
	created  *models.Student
	updated  bool
	listed   []models.StudentDetail
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	if s, ok := m.byUserID[userID]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "new-student"
	}
	if m.byUserID == nil {
		m.byUserID = make(map[string]*models.Student)
	}
	m.byUserID[student.UserID] = student
	m.created = student
	return nil
}

func (m *mockStudentRepo) UpdateProfile(ctx context.Context, id, phone string, birthDate time.Time) error {
	m.updated = true
	return nil
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	return m.listed, len(m.listed), nil
}

type mockUserReader struct {
	users map[string]*models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentReader struct {
	enrollments []models.EnrollmentDetail
}

func (m *mockEnrollmentReader) ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return m.enrollments, nil
}

type mockAvailableReader struct {
	classes []models.DanceClass
}

func (m *mockAvailableReader) ListAvailableForStudent(ctx context.Context, studentID string) ([]models.DanceClass, error) {
	return m.classes, nil
}

func TestStudentServiceEnsureProfileCreatesMissing(t *testing.T) {
	joined := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	repo := &mockStudentRepo{}
	users := &mockUserReader{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "jane@example.com", CreatedAt: joined},
	}}
	svc := NewStudentService(repo, users, &mockEnrollmentReader{}, &mockAvailableReader{}, validator.New(), zap.NewNop())

	student, err := svc.EnsureProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "user-1", student.UserID)
	assert.Equal(t, "not provided", student.Phone)
	assert.Equal(t, joined.Truncate(24*time.Hour), student.BirthDate)
}

func TestStudentServiceEnsureProfileReturnsExisting(t *testing.T) {
	existing := &models.Student{ID: "stu-1", UserID: "user-1", Phone: "555-0101"}
	repo := &mockStudentRepo{byUserID: map[string]*models.Student{"user-1": existing}}
	svc := NewStudentService(repo, &mockUserReader{}, &mockEnrollmentReader{}, &mockAvailableReader{}, validator.New(), zap.NewNop())

	student, err := svc.EnsureProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", student.ID)
	assert.Nil(t, repo.created)
}

func TestStudentServiceGetProfileAssemblesDashboard(t *testing.T) {
	existing := &models.Student{ID: "stu-1", UserID: "user-1"}
	repo := &mockStudentRepo{byUserID: map[string]*models.Student{"user-1": existing}}
	enrollments := &mockEnrollmentReader{enrollments: []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{ID: "enr-1", StudentID: "stu-1"}, ClassName: "Salsa"},
	}}
	available := &mockAvailableReader{classes: []models.DanceClass{{ID: "class-2", Name: "Tango"}}}
	svc := NewStudentService(repo, &mockUserReader{}, enrollments, available, validator.New(), zap.NewNop())

	profile, err := svc.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", profile.Student.ID)
	require.Len(t, profile.Enrollments, 1)
	assert.Equal(t, "Salsa", profile.Enrollments[0].ClassName)
	require.Len(t, profile.AvailableClasses, 1)
	assert.Equal(t, "Tango", profile.AvailableClasses[0].Name)
}

func TestStudentServiceUpdateProfile(t *testing.T) {
	existing := &models.Student{ID: "stu-1", UserID: "user-1", Phone: "not provided"}
	repo := &mockStudentRepo{byUserID: map[string]*models.Student{"user-1": existing}}
	svc := NewStudentService(repo, &mockUserReader{}, &mockEnrollmentReader{}, &mockAvailableReader{}, validator.New(), zap.NewNop())

	student, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileRequest{Phone: "555-0202", BirthDate: "1995-04-12"})
	require.NoError(t, err)
	assert.True(t, repo.updated)
	assert.Equal(t, "555-0202", student.Phone)
	assert.Equal(t, time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC), student.BirthDate)
}

func TestStudentServiceUpdateProfileRejectsBadDate(t *testing.T) {
	repo := &mockStudentRepo{byUserID: map[string]*models.Student{"user-1": {ID: "stu-1"}}}
	svc := NewStudentService(repo, &mockUserReader{}, &mockEnrollmentReader{}, &mockAvailableReader{}, validator.New(), zap.NewNop())

	_, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileRequest{Phone: "555-0202", BirthDate: "April 12"})
	require.Error(t, err)
	assert.False(t, repo.updated)
}
