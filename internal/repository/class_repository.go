package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dance-studio-api/internal/models"
)

// ClassRepository manages persistence for the dance class catalog.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = "id, name, description, level, instructor, schedule, price, max_students, created_at, updated_at"

// List returns classes matching the filter, paginated and ordered by name.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.DanceClass, int, error) {
	base := "FROM dance_classes"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d OR LOWER(instructor) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", classColumns, base, column, order, size, offset)

	var classes []models.DanceClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a single class.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.DanceClass, error) {
	query := fmt.Sprintf("SELECT %s FROM dance_classes WHERE id = $1 LIMIT 1", classColumns)
	var class models.DanceClass
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// Create inserts a new dance class.
func (r *ClassRepository) Create(ctx context.Context, class *models.DanceClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now
	const query = `INSERT INTO dance_classes (id, name, description, level, instructor, schedule, price, max_students, created_at, updated_at)
        VALUES (:id, :name, :description, :level, :instructor, :schedule, :price, :max_students, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// ListAvailableForStudent returns classes the student has no active
// enrollment in, ordered by name. Cancelled classes show up again here.
func (r *ClassRepository) ListAvailableForStudent(ctx context.Context, studentID string) ([]models.DanceClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM dance_classes c
        WHERE NOT EXISTS (
            SELECT 1 FROM enrollments e
            WHERE e.dance_class_id = c.id AND e.student_id = $1 AND e.is_active
        )
        ORDER BY c.name ASC`, prefixColumns("c", classColumns))
	var classes []models.DanceClass
	if err := r.db.SelectContext(ctx, &classes, query, studentID); err != nil {
		return nil, fmt.Errorf("list available classes: %w", err)
	}
	return classes, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
