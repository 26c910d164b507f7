package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Writes that touch several tables (a task row plus its tag links) must run
// inside store.RunInTransaction using a store obtained from WithTx.
type TaskStore interface {
	// Create inserts the task row. Tags are linked separately with SetTags.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its tags, regardless of owner.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update replaces every mutable column of the task. The owner is never changed.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Subtasks are removed by the database
	// (parent_task_id ON DELETE CASCADE), and so are tag links.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of the owner's tasks matching filter, ordered by
	// creation time, together with the total number of matches. Tags are
	// loaded; subtasks are not.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter, page domain.PageRequest) (*domain.TaskPage, error)

	// ListChildren returns the direct subtasks of parentID, with tags, in
	// creation order. Ownership is not checked.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// SetTags replaces the tag links of a task.
	SetTags(ctx context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error

	// ListDueReminders returns every pending task expiring on date, joined
	// with its owner's contact data.
	ListDueReminders(ctx context.Context, date time.Time) ([]domain.Reminder, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) TaskStore
}
