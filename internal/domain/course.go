package domain

import "time"

// CourseStatus tracks a course through the admin approval workflow.
type CourseStatus string

const (
	CourseStatusPending  CourseStatus = "PENDING"
	CourseStatusApproved CourseStatus = "APPROVED"
	CourseStatusRejected CourseStatus = "REJECTED"
)

// Course is created by an instructor and becomes visible to students only
// after an admin approves it.
type Course struct {
	ID           string
	Title        string
	Description  string
	InstructorID string
	Status       CourseStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
