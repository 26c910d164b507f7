package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	RegisterFn     func(ctx context.Context, username, email, password string) (*domain.User, error)
	AuthenticateFn func(ctx context.Context, username, password string) (*domain.User, error)
	GetUserFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// Register implements the UserService interface
func (m *MockUserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if m.RegisterFn == nil {
		return nil, errNotConfigured
	}
	return m.RegisterFn(ctx, username, email, password)
}

// Authenticate implements the UserService interface
func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if m.AuthenticateFn == nil {
		return nil, errNotConfigured
	}
	return m.AuthenticateFn(ctx, username, password)
}

// GetUser implements the UserService interface
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn == nil {
		return nil, errNotConfigured
	}
	return m.GetUserFn(ctx, userID)
}
