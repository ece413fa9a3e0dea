package models

import "time"

// ClassLevel enumerates the difficulty levels a class can be offered at.
type ClassLevel string

const (
	LevelBeginner     ClassLevel = "beginner"
	LevelIntermediate ClassLevel = "intermediate"
	LevelAdvanced     ClassLevel = "advanced"
)

// DanceClass represents a course offering in the studio catalog.
type DanceClass struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Level       ClassLevel `db:"level" json:"level"`
	Instructor  string     `db:"instructor" json:"instructor"`
	Schedule    string     `db:"schedule" json:"schedule"`
	Price       float64    `db:"price" json:"price"`
	MaxStudents int        `db:"max_students" json:"max_students"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Level     ClassLevel
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
