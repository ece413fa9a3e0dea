package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type enrollmentRepository interface {
	Upsert(ctx context.Context, studentID, classID string) (*models.Enrollment, error)
	Cancel(ctx context.Context, id, studentID string) error
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.DanceClass, error)
}

type profileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) (*models.Student, error)
}

// EnrollRequest selects the class the caller wants to join.
type EnrollRequest struct {
	DanceClassID string `json:"dance_class_id" validate:"required,uuid4"`
}

// EnrollmentService orchestrates enrollment workflows for the caller's
// own student profile.
type EnrollmentService struct {
	repo      enrollmentRepository
	classes   classReader
	students  profileEnsurer
	available availableClassReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, classes classReader, students profileEnsurer, available availableClassReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, classes: classes, students: students, available: available, validator: validate, logger: logger}
}

// Enroll joins the caller to a class. Enrolling in a class with a
// cancelled row reactivates it; enrolling twice is a no-op reactivate.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.classes.FindByID(ctx, req.DanceClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	student, err := s.students.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Upsert(ctx, student.ID, req.DanceClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}

	s.logger.Info("enrollment active",
		zap.String("student_id", student.ID),
		zap.String("dance_class_id", req.DanceClassID))
	return enrollment, nil
}

// Cancel soft-deletes the caller's enrollment. Rows owned by other
// students are indistinguishable from missing ones.
func (s *EnrollmentService) Cancel(ctx context.Context, userID, enrollmentID string) error {
	student, err := s.students.EnsureProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Cancel(ctx, enrollmentID, student.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
	}
	return nil
}

// MyEnrollments lists the caller's active enrollments.
func (s *EnrollmentService) MyEnrollments(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	student, err := s.students.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.ListActiveByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// AvailableClasses lists the classes the caller can still enroll in.
func (s *EnrollmentService) AvailableClasses(ctx context.Context, userID string) ([]models.DanceClass, error) {
	student, err := s.students.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	classes, err := s.available.ListAvailableForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available classes")
	}
	return classes, nil
}

// List returns enrollments with filters for staff views.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}
