package events

import (
	"time"

	"github.com/jeswin28/lms-backend/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCourseSubmitted EventType = "course_submitted"
	EventCourseApproved  EventType = "course_approved"
	EventCourseRejected  EventType = "course_rejected"
	EventCourseEnrolled  EventType = "course_enrolled"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CourseID  string      `json:"course_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CourseSubmittedPayload payload.
type CourseSubmittedPayload struct {
	Title        string `json:"title"`
	InstructorID string `json:"instructor_id"`
}

// CourseModeratedPayload payload for approval and rejection.
type CourseModeratedPayload struct {
	Title        string              `json:"title"`
	InstructorID string              `json:"instructor_id"`
	NewStatus    domain.CourseStatus `json:"new_status"`
}

// CourseEnrolledPayload payload.
type CourseEnrolledPayload struct {
	Title        string `json:"title"`
	InstructorID string `json:"instructor_id"`
	StudentID    string `json:"student_id"`
}
