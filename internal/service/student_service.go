package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

// placeholderPhone is stored when the profile is auto-created and the
// student has not supplied a number yet.
const placeholderPhone = "not provided"

type studentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateProfile(ctx context.Context, id, phone string, birthDate time.Time) error
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type studentEnrollmentReader interface {
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

type availableClassReader interface {
	ListAvailableForStudent(ctx context.Context, studentID string) ([]models.DanceClass, error)
}

// UpdateProfileRequest carries the mutable student profile fields.
type UpdateProfileRequest struct {
	Phone     string `json:"phone" validate:"required,max=15"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
}

// Profile is the assembled personal dashboard: the student row, current
// active enrollments, and the classes still open for them to join.
type Profile struct {
	Student          models.Student            `json:"student"`
	Enrollments      []models.EnrollmentDetail `json:"enrollments"`
	AvailableClasses []models.DanceClass       `json:"available_classes"`
}

// StudentService orchestrates profile workflows.
type StudentService struct {
	repo        studentRepository
	users       userReader
	enrollments studentEnrollmentReader
	classes     availableClassReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, users userReader, enrollments studentEnrollmentReader, classes availableClassReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, users: users, enrollments: enrollments, classes: classes, validator: validate, logger: logger}
}

// EnsureProfile returns the caller's student row, creating it when missing.
// The auto-created row uses a placeholder phone and the account's join date
// as birth date, so every authenticated caller ends up with exactly one.
func (s *StudentService) EnsureProfile(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	student = &models.Student{
		UserID:    userID,
		Phone:     placeholderPhone,
		BirthDate: user.CreatedAt.Truncate(24 * time.Hour),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	s.logger.Info("student profile auto-created", zap.String("user_id", userID))
	return student, nil
}

// GetProfile assembles the profile page data for the caller.
func (s *StudentService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	student, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListActiveByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	available, err := s.classes.ListAvailableForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load available classes")
	}

	return &Profile{Student: *student, Enrollments: enrollments, AvailableClasses: available}, nil
}

// UpdateProfile overwrites the caller's phone and birth date.
func (s *StudentService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth date")
	}

	student, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, student.ID, req.Phone, birthDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	student.Phone = req.Phone
	student.BirthDate = birthDate
	return student, nil
}

// List returns student profiles for staff browsing.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}
