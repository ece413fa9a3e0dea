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
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	rows      map[string]*models.Enrollment
	upserts   int
	cancelled []string
}

func pairKey(studentID, classID string) string {
	return studentID + "|" + classID
}

func (m *mockEnrollmentRepo) Upsert(ctx context.Context, studentID, classID string) (*models.Enrollment, error) {
	if m.rows == nil {
		m.rows = make(map[string]*models.Enrollment)
	}
	m.upserts++
	key := pairKey(studentID, classID)
	if e, ok := m.rows[key]; ok {
		e.IsActive = true
		return e, nil
	}
	e := &models.Enrollment{ID: "enr-1", StudentID: studentID, DanceClassID: classID, EnrolledAt: time.Now().UTC(), IsActive: true}
	m.rows[key] = e
	return e, nil
}

func (m *mockEnrollmentRepo) Cancel(ctx context.Context, id, studentID string) error {
	for _, e := range m.rows {
		if e.ID == id && e.StudentID == studentID {
			e.IsActive = false
			m.cancelled = append(m.cancelled, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.rows {
		if e.StudentID == studentID && e.IsActive {
			list = append(list, models.EnrollmentDetail{Enrollment: *e})
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.rows {
		list = append(list, models.EnrollmentDetail{Enrollment: *e})
	}
	return list, len(list), nil
}

type mockClassFinder struct {
	classes map[string]*models.DanceClass
}

func (m *mockClassFinder) FindByID(ctx context.Context, id string) (*models.DanceClass, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockProfileEnsurer struct {
	student *models.Student
}

func (m *mockProfileEnsurer) EnsureProfile(ctx context.Context, userID string) (*models.Student, error) {
	return m.student, nil
}

type mockAvailableLister struct {
	classes []models.DanceClass
}

func (m *mockAvailableLister) ListAvailableForStudent(ctx context.Context, studentID string) ([]models.DanceClass, error) {
	return m.classes, nil
}

const enrollClassID = "5f8e1a3a-9c47-4f11-a1f1-2d3b4c5d6e7f"

func newEnrollmentTestService(repo *mockEnrollmentRepo) *EnrollmentService {
	classes := &mockClassFinder{classes: map[string]*models.DanceClass{enrollClassID: {ID: enrollClassID, Name: "Salsa"}}}
	students := &mockProfileEnsurer{student: &models.Student{ID: "stu-1", UserID: "user-1"}}
	return NewEnrollmentService(repo, classes, students, &mockAvailableLister{}, validator.New(), zap.NewNop())
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentTestService(repo)

	enrollment, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{DanceClassID: enrollClassID})
	require.NoError(t, err)
	assert.True(t, enrollment.IsActive)
	assert.Equal(t, "stu-1", enrollment.StudentID)
}

func TestEnrollmentServiceEnrollUnknownClass(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentTestService(repo)

	_, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{DanceClassID: "0b0d8e9f-1234-4abc-9def-567890abcdef"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Zero(t, repo.upserts)
}

func TestEnrollmentServiceReenrollReactivates(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentTestService(repo)

	first, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{DanceClassID: enrollClassID})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), "user-1", first.ID))
	assert.False(t, repo.rows[pairKey("stu-1", enrollClassID)].IsActive)

	second, err := svc.Enroll(context.Background(), "user-1", EnrollRequest{DanceClassID: enrollClassID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsActive)
	assert.Equal(t, 2, repo.upserts)
}

func TestEnrollmentServiceCancelForeignRowIsNotFound(t *testing.T) {
	repo := &mockEnrollmentRepo{rows: map[string]*models.Enrollment{
		pairKey("stu-2", enrollClassID): {ID: "enr-9", StudentID: "stu-2", DanceClassID: enrollClassID, IsActive: true},
	}}
	svc := newEnrollmentTestService(repo)

	err := svc.Cancel(context.Background(), "user-1", "enr-9")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.True(t, repo.rows[pairKey("stu-2", enrollClassID)].IsActive)
}

func TestEnrollmentServiceMyEnrollmentsSkipsCancelled(t *testing.T) {
	repo := &mockEnrollmentRepo{rows: map[string]*models.Enrollment{
		pairKey("stu-1", "c1"): {ID: "enr-1", StudentID: "stu-1", DanceClassID: "c1", IsActive: true},
		pairKey("stu-1", "c2"): {ID: "enr-2", StudentID: "stu-1", DanceClassID: "c2", IsActive: false},
	}}
	svc := newEnrollmentTestService(repo)

	enrollments, err := svc.MyEnrollments(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "enr-1", enrollments[0].ID)
}
