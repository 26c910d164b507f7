package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// MockTagService implements service.TagService for testing
type MockTagService struct {
	CreateFn func(ctx context.Context, name string) (*domain.Tag, error)
	GetFn    func(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	ListFn   func(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error)
	DeleteFn func(ctx context.Context, id uuid.UUID) error
}

// Create implements the TagService interface
func (m *MockTagService) Create(ctx context.Context, name string) (*domain.Tag, error) {
	if m.CreateFn == nil {
		return nil, errNotConfigured
	}
	return m.CreateFn(ctx, name)
}

// Get implements the TagService interface
func (m *MockTagService) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	if m.GetFn == nil {
		return nil, errNotConfigured
	}
	return m.GetFn(ctx, id)
}

// List implements the TagService interface
func (m *MockTagService) List(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error) {
	if m.ListFn == nil {
		return nil, errNotConfigured
	}
	return m.ListFn(ctx, page)
}

// Delete implements the TagService interface
func (m *MockTagService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn == nil {
		return errNotConfigured
	}
	return m.DeleteFn(ctx, id)
}
