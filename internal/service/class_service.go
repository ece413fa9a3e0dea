package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

const catalogCachePrefix = "catalog:"

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.DanceClass, int, error)
	FindByID(ctx context.Context, id string) (*models.DanceClass, error)
	Create(ctx context.Context, class *models.DanceClass) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string)
}

// CreateClassRequest mirrors the dance class schema.
type CreateClassRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"required"`
	Level       string  `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Instructor  string  `json:"instructor" validate:"required,max=100"`
	Schedule    string  `json:"schedule" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	MaxStudents int     `json:"max_students" validate:"required,gt=0"`
}

// CatalogOptions tunes course pagination and optional caching.
type CatalogOptions struct {
	CoursePageSize int
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// ClassService serves the public catalog and staff class management.
type ClassService struct {
	repo      classRepository
	cache     catalogCache
	opts      CatalogOptions
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, cache catalogCache, opts CatalogOptions, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CoursePageSize <= 0 {
		opts.CoursePageSize = 6
	}
	return &ClassService{repo: repo, cache: cache, opts: opts, validator: validate, logger: logger}
}

// List returns classes for the index page, optionally filtered.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.DanceClass, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
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
	return classes, pagination, nil
}

// Courses returns the fixed-size course catalog page ordered by name.
// Pages past the end come back empty; the total count in the pagination
// metadata lets clients clamp.
func (s *ClassService) Courses(ctx context.Context, page int) ([]models.DanceClass, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	filter := models.ClassFilter{Page: page, PageSize: s.opts.CoursePageSize, SortBy: "name", SortOrder: "ASC"}

	cacheKey := fmt.Sprintf("%scourses:%d", catalogCachePrefix, page)
	if s.opts.CacheEnabled && s.cache != nil {
		var cached struct {
			Classes    []models.DanceClass `json:"classes"`
			Pagination models.Pagination   `json:"pagination"`
		}
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached.Classes, &cached.Pagination, nil
		}
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	pagination := &models.Pagination{Page: page, PageSize: s.opts.CoursePageSize, TotalCount: total}

	if s.opts.CacheEnabled && s.cache != nil {
		payload := struct {
			Classes    []models.DanceClass `json:"classes"`
			Pagination models.Pagination   `json:"pagination"`
		}{Classes: classes, Pagination: *pagination}
		if err := s.cache.Set(ctx, cacheKey, payload, s.opts.CacheTTL); err != nil {
			s.logger.Warn("failed to cache course page", zap.Error(err))
		}
	}

	return classes, pagination, nil
}

// Get returns one class or not-found.
func (s *ClassService) Get(ctx context.Context, id string) (*models.DanceClass, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create adds a class to the catalog. Staff only; the guard lives in the
// route table.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.DanceClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := &models.DanceClass{
		Name:        req.Name,
		Description: req.Description,
		Level:       models.ClassLevel(req.Level),
		Instructor:  req.Instructor,
		Schedule:    req.Schedule,
		Price:       req.Price,
		MaxStudents: req.MaxStudents,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	if s.opts.CacheEnabled && s.cache != nil {
		s.cache.InvalidatePrefix(ctx, catalogCachePrefix)
	}

	s.logger.Info("dance class created", zap.String("class_id", class.ID), zap.String("name", class.Name))
	return class, nil
}
