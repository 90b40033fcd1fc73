package domain

import "time"

// Enrollment links a student to an approved course. One row per pair.
type Enrollment struct {
	ID        string
	CourseID  string
	StudentID string
	CreatedAt time.Time
}
