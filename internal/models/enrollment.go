package models

import "time"

// Enrollment joins a student to a dance class. At most one row exists per
// (student, dance_class) pair; cancellation flips is_active instead of
// deleting, and re-enrollment reactivates the same row.
type Enrollment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	DanceClassID string    `db:"dance_class_id" json:"dance_class_id"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

// EnrollmentDetail enriches Enrollment with class and student context.
type EnrollmentDetail struct {
	Enrollment
	ClassName       string     `db:"class_name" json:"class_name"`
	ClassLevel      ClassLevel `db:"class_level" json:"class_level"`
	ClassInstructor string     `db:"class_instructor" json:"class_instructor"`
	ClassSchedule   string     `db:"class_schedule" json:"class_schedule"`
	StudentName     string     `db:"student_name" json:"student_name"`
}

// EnrollmentFilter provides filters for staff enrollment listings.
type EnrollmentFilter struct {
	StudentID string
	ClassID   string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
