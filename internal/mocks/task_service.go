package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// errNotConfigured is returned by a mock method whose function field is nil.
var errNotConfigured = errors.New("mock method not configured")

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	CreateFn func(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (*domain.Task, error)
	GetFn    func(ctx context.Context, callerID, taskID uuid.UUID) (*domain.Task, error)
	ListFn   func(ctx context.Context, callerID uuid.UUID, filter domain.TaskFilter, page domain.PageRequest) (*domain.TaskPage, error)
	UpdateFn func(ctx context.Context, callerID, taskID uuid.UUID, in domain.TaskInput) (*domain.Task, error)
	PatchFn  func(ctx context.Context, callerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn func(ctx context.Context, callerID, taskID uuid.UUID) error
}

// Create implements the TaskService interface
func (m *MockTaskService) Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (*domain.Task, error) {
	if m.CreateFn == nil {
		return nil, errNotConfigured
	}
	return m.CreateFn(ctx, ownerID, in)
}

// Get implements the TaskService interface
func (m *MockTaskService) Get(ctx context.Context, callerID, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetFn == nil {
		return nil, errNotConfigured
	}
	return m.GetFn(ctx, callerID, taskID)
}

// List implements the TaskService interface
func (m *MockTaskService) List(
	ctx context.Context,
	callerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.PageRequest,
) (*domain.TaskPage, error) {
	if m.ListFn == nil {
		return nil, errNotConfigured
	}
	return m.ListFn(ctx, callerID, filter, page)
}

// Update implements the TaskService interface
func (m *MockTaskService) Update(ctx context.Context, callerID, taskID uuid.UUID, in domain.TaskInput) (*domain.Task, error) {
	if m.UpdateFn == nil {
		return nil, errNotConfigured
	}
	return m.UpdateFn(ctx, callerID, taskID, in)
}

// Patch implements the TaskService interface
func (m *MockTaskService) Patch(ctx context.Context, callerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if m.PatchFn == nil {
		return nil, errNotConfigured
	}
	return m.PatchFn(ctx, callerID, taskID, patch)
}

// Delete implements the TaskService interface
func (m *MockTaskService) Delete(ctx context.Context, callerID, taskID uuid.UUID) error {
	if m.DeleteFn == nil {
		return errNotConfigured
	}
	return m.DeleteFn(ctx, callerID, taskID)
}
