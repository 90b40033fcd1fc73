package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jeswin28/lms-backend/internal/api/dto"
	"github.com/jeswin28/lms-backend/internal/auth"
	"github.com/jeswin28/lms-backend/internal/service"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// NotificationsHandler exposes in-app notifications for the caller.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// List handles GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	limit := parseIntQuery(c, "limit", 50)
	notifications, err := h.notifications.ListForUser(c.Context(), user.ID, limit)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, dto.NewNotificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{"success": true, "notifications": resp})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.notifications.MarkRead(c.Context(), c.Params("id"), user.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
