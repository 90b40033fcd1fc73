package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jeswin28/lms-backend/internal/domain"
	"github.com/jeswin28/lms-backend/internal/repository"
	apperrors "github.com/jeswin28/lms-backend/pkg/util"
)

// UserService covers the admin-only user management surface. Role and status
// changes happen here and nowhere else.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, page, pageSize int) ([]domain.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return s.users.List(ctx, pageSize, (page-1)*pageSize)
}

// UserUpdate carries optional admin edits; nil fields stay untouched.
type UserUpdate struct {
	Name   *string
	Role   *domain.Role
	Status *domain.UserStatus
}

// Update applies an admin edit to a user record.
func (s *UserService) Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if update.Name != nil && *update.Name != "" {
		user.Name = *update.Name
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *update.Role})
		}
		user.Role = *update.Role
	}
	if update.Status != nil {
		user.Status = *update.Status
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
