package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeswin28/lms-backend/internal/config"
	"github.com/jeswin28/lms-backend/internal/domain"
	"github.com/jeswin28/lms-backend/internal/events"
	"github.com/jeswin28/lms-backend/internal/repository"
)

// NotificationService turns domain events into persisted in-app notifications.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(
	dispatcher events.Dispatcher,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	logger *zap.Logger,
	cfg config.NotificationConfig,
) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		users:         users,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCourseSubmitted, n.handleCourseSubmitted)
	n.dispatcher.Subscribe(events.EventCourseApproved, n.handleCourseModerated)
	n.dispatcher.Subscribe(events.EventCourseRejected, n.handleCourseModerated)
	n.dispatcher.Subscribe(events.EventCourseEnrolled, n.handleCourseEnrolled)
}

// ListForUser returns recent notifications for the given user.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return n.notifications.ListByUser(ctx, userID, limit)
}

// MarkRead flags a notification as read for its owner.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return n.notifications.MarkRead(ctx, id, userID)
}

func (n *NotificationService) handleCourseSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CourseSubmittedPayload)
	if !ok {
		return nil
	}
	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		n.logger.Warn("list admins for notification", zap.Error(err))
		return err
	}
	message := fmt.Sprintf("Course %q is waiting for approval", payload.Title)
	for i := range admins {
		n.store(ctx, admins[i].ID, string(event.Type), message)
	}
	return nil
}

func (n *NotificationService) handleCourseModerated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CourseModeratedPayload)
	if !ok {
		return nil
	}
	verb := "approved"
	if payload.NewStatus == domain.CourseStatusRejected {
		verb = "rejected"
	}
	n.store(ctx, payload.InstructorID, string(event.Type),
		fmt.Sprintf("Your course %q was %s", payload.Title, verb))
	n.sendEmailStub(payload.InstructorID, event)
	return nil
}

func (n *NotificationService) handleCourseEnrolled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CourseEnrolledPayload)
	if !ok {
		return nil
	}
	n.store(ctx, payload.InstructorID, string(event.Type),
		fmt.Sprintf("A student enrolled in %q", payload.Title))
	return nil
}

func (n *NotificationService) store(ctx context.Context, userID, eventType, message string) {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    eventType,
		Message: message,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("persist notification failed",
			zap.String("user_id", userID),
			zap.String("type", eventType),
			zap.Error(err))
	}
}

func (n *NotificationService) sendEmailStub(userID string, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", userID),
		zap.String("event_type", string(event.Type)))
}
