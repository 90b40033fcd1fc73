package dto

import (
	"time"

	"github.com/jeswin28/lms-backend/internal/domain"
)

// CourseCreateRequest payload for instructor course submission.
type CourseCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CourseModerateRequest payload for the admin approval decision.
type CourseModerateRequest struct {
	Approve bool `json:"approve"`
}

// CourseResponse is the public view of a course.
type CourseResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	InstructorID string              `json:"instructorId"`
	Status       domain.CourseStatus `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// NewCourseResponse maps a domain course to its public view.
func NewCourseResponse(course *domain.Course) CourseResponse {
	return CourseResponse{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		InstructorID: course.InstructorID,
		Status:       course.Status,
		CreatedAt:    course.CreatedAt,
	}
}

// EnrollmentResponse is the public view of an enrollment.
type EnrollmentResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	StudentID string    `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}
