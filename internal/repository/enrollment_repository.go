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

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Upsert enrolls a student into a class. If a row for the pair already
// exists (active or cancelled) it is reactivated in place, so the unique
// constraint resolves the duplicate-enrollment race inside the database.
func (r *EnrollmentRepository) Upsert(ctx context.Context, studentID, classID string) (*models.Enrollment, error) {
	const query = `INSERT INTO enrollments (id, student_id, dance_class_id, enrolled_at, is_active)
        VALUES ($1, $2, $3, $4, TRUE)
        ON CONFLICT ON CONSTRAINT enrollments_student_class_key
        DO UPDATE SET is_active = TRUE
        RETURNING id, student_id, dance_class_id, enrolled_at, is_active`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, uuid.NewString(), studentID, classID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert enrollment: %w", err)
	}
	return &enrollment, nil
}

// Cancel soft-deletes an enrollment scoped to its owner. Returns
// sql.ErrNoRows when the enrollment does not exist or belongs to someone
// else, so callers can surface a not-found.
func (r *EnrollmentRepository) Cancel(ctx context.Context, id, studentID string) error {
	const query = `UPDATE enrollments SET is_active = FALSE WHERE id = $1 AND student_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, studentID)
	if err != nil {
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActiveByStudent returns the student's active enrollments with class info.
func (r *EnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.dance_class_id, e.enrolled_at, e.is_active,
        c.name AS class_name, c.level AS class_level, c.instructor AS class_instructor, c.schedule AS class_schedule,
        u.first_name || ' ' || u.last_name AS student_name
        FROM enrollments e
        JOIN dance_classes c ON c.id = e.dance_class_id
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        WHERE e.student_id = $1 AND e.is_active
        ORDER BY e.enrolled_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// List returns enrollments filtered by the provided criteria for staff views.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
JOIN dance_classes c ON c.id = e.dance_class_id
JOIN students s ON s.id = e.student_id
JOIN users u ON u.id = s.user_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("e.dance_class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("e.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"class_name":   "c.name",
		"student_name": "u.last_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.dance_class_id, e.enrolled_at, e.is_active,
        c.name AS class_name, c.level AS class_level, c.instructor AS class_instructor, c.schedule AS class_schedule,
        u.first_name || ' ' || u.last_name AS student_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListActiveByClass returns the active roster for a class.
func (r *EnrollmentRepository) ListActiveByClass(ctx context.Context, classID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.dance_class_id, e.enrolled_at, e.is_active,
        c.name AS class_name, c.level AS class_level, c.instructor AS class_instructor, c.schedule AS class_schedule,
        u.first_name || ' ' || u.last_name AS student_name
        FROM enrollments e
        JOIN dance_classes c ON c.id = e.dance_class_id
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        WHERE e.dance_class_id = $1 AND e.is_active
        ORDER BY u.last_name ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return enrollments, nil
}
