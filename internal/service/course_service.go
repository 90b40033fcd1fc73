package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jeswin28/lms-backend/internal/domain"
	"github.com/jeswin28/lms-backend/internal/events"
	"github.com/jeswin28/lms-backend/internal/persistence"
	"github.com/jeswin28/lms-backend/internal/repository"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// CourseService owns the course approval workflow and enrollment. Role
// membership is enforced at the route level; the service re-checks ownership
// and state transitions.
type CourseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	cache       *persistence.CatalogCache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// NewCourseService builds the service.
func NewCourseService(
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	cache *persistence.CatalogCache,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		cache:       cache,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Submit creates a pending course owned by the instructor.
func (s *CourseService) Submit(ctx context.Context, instructor *domain.User, title, description string) (*domain.Course, error) {
	course := &domain.Course{
		Title:        title,
		Description:  description,
		InstructorID: instructor.ID,
		Status:       domain.CourseStatusPending,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCourseSubmitted,
		CourseID:  course.ID,
		ActorID:   instructor.ID,
		Timestamp: time.Now(),
		Payload: events.CourseSubmittedPayload{
			Title:        course.Title,
			InstructorID: course.InstructorID,
		},
	})
	return course, nil
}

// Moderate transitions a pending course to approved or rejected.
func (s *CourseService) Moderate(ctx context.Context, admin *domain.User, courseID string, approve bool) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", nil)
		}
		return nil, err
	}
	if course.Status != domain.CourseStatusPending {
		return nil, apperrors.NewConflict("course is not pending approval", nil)
	}

	status := domain.CourseStatusRejected
	eventType := events.EventCourseRejected
	if approve {
		status = domain.CourseStatusApproved
		eventType = events.EventCourseApproved
	}
	if err := s.courses.UpdateStatus(ctx, course.ID, status); err != nil {
		return nil, err
	}
	course.Status = status

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CourseID:  course.ID,
		ActorID:   admin.ID,
		Timestamp: time.Now(),
		Payload: events.CourseModeratedPayload{
			Title:        course.Title,
			InstructorID: course.InstructorID,
			NewStatus:    status,
		},
	})
	return course, nil
}

// Catalog lists approved courses, served from the cache when warm.
func (s *CourseService) Catalog(ctx context.Context) ([]domain.Course, error) {
	if cached, err := s.cache.Get(ctx); err == nil {
		return cached, nil
	} else if !errors.Is(err, persistence.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}

	courses, err := s.courses.ListByStatus(ctx, domain.CourseStatusApproved)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, courses); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	return courses, nil
}

// Enroll registers a student on an approved course.
func (s *CourseService) Enroll(ctx context.Context, student *domain.User, courseID string) (*domain.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", nil)
		}
		return nil, err
	}
	if course.Status != domain.CourseStatusApproved {
		return nil, apperrors.NewValidationError("course is not open for enrollment", nil)
	}

	exists, err := s.enrollments.Exists(ctx, course.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("already enrolled", nil)
	}

	enrollment := &domain.Enrollment{CourseID: course.ID, StudentID: student.ID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCourseEnrolled,
		CourseID:  course.ID,
		ActorID:   student.ID,
		Timestamp: time.Now(),
		Payload: events.CourseEnrolledPayload{
			Title:        course.Title,
			InstructorID: course.InstructorID,
			StudentID:    student.ID,
		},
	})
	return enrollment, nil
}

func (s *CourseService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
