package dto

import (
	"time"

	"github.com/jeswin28/lms-backend/internal/domain"
)

// AdminUserUpdateRequest carries optional admin edits to a user.
type AdminUserUpdateRequest struct {
	Name   *string            `json:"name"`
	Role   *domain.Role       `json:"role"`
	Status *domain.UserStatus `json:"status"`
}

// AdminUserResponse is the admin view of a user, including status.
type AdminUserResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewAdminUserResponse maps a domain user to its admin view.
func NewAdminUserResponse(user *domain.User) AdminUserResponse {
	return AdminUserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}

// NotificationResponse is the public view of a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotificationResponse maps a domain notification to its public view.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
