package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/store"
)

// TaskService provides the task use cases. Every operation on a single task
// is owner-checked: a task owned by someone else is reported exactly like a
// missing one, with store.ErrTaskNotFound.
type TaskService interface {
	// Create validates the input and stores a new task owned by ownerID,
	// creating any tags it names.
	Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (*domain.Task, error)

	// Get returns the caller's task with its subtasks resolved.
	Get(ctx context.Context, callerID, taskID uuid.UUID) (*domain.Task, error)

	// List returns one page of the caller's tasks matching filter.
	// Returns ErrInvalidPage when the page does not exist.
	List(ctx context.Context, callerID uuid.UUID, filter domain.TaskFilter, page domain.PageRequest) (*domain.TaskPage, error)

	// Update replaces the task with in. Absent optional fields are cleared;
	// tags are only rewritten when in carries a tags list.
	Update(ctx context.Context, callerID, taskID uuid.UUID, in domain.TaskInput) (*domain.Task, error)

	// Patch merges the supplied fields over the stored task and validates the result.
	Patch(ctx context.Context, callerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task together with its subtasks.
	Delete(ctx context.Context, callerID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore store.TaskStore
	tagStore  store.TagStore
	db        *sqlx.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	tagStore store.TagStore,
	db *sqlx.DB,
	logger *slog.Logger,
) TaskService {
	return &taskServiceImpl{
		taskStore: taskStore,
		tagStore:  tagStore,
		db:        db,
		logger:    logger.With("component", "task_service"),
	}
}

// Create validates in, then writes the task, its tags and the links in one transaction.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	in domain.TaskInput,
) (*domain.Task, error) {
	draft, err := in.Validate()
	if err != nil {
		s.logger.Debug("task input rejected",
			"owner_id", ownerID,
			"error", err)
		return nil, NewServiceError("task", "create", err)
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDraft(task, draft)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		if err := checkParent(ctx, txTasks, task.ID, draft.ParentID); err != nil {
			return err
		}
		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}

		task.Tags = []domain.Tag{}
		if len(draft.TagNames) == 0 {
			return nil
		}
		tags, err := s.linkTags(ctx, tx, task.ID, draft.TagNames)
		if err != nil {
			return err
		}
		task.Tags = tags
		return nil
	})
	if err != nil {
		s.logWriteError("create", task.ID, err)
		return nil, NewServiceError("task", "create", err)
	}

	task.Subtasks = []*domain.Task{}

	s.logger.Info("task created",
		"task_id", task.ID,
		"owner_id", ownerID,
		"tag_count", len(task.Tags))

	return task, nil
}

// Get returns a single task after the ownership check.
func (s *taskServiceImpl) Get(ctx context.Context, callerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.authorizeTask(ctx, callerID, taskID)
	if err != nil {
		return nil, NewServiceError("task", "get", err)
	}

	if err := s.resolveSubtasks(ctx, task); err != nil {
		return nil, NewServiceError("task", "get", err)
	}

	return task, nil
}

// List scopes the listing to the caller and resolves the subtasks of every item.
func (s *taskServiceImpl) List(
	ctx context.Context,
	callerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.PageRequest,
) (*domain.TaskPage, error) {
	result, err := s.taskStore.List(ctx, callerID, filter, page)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"owner_id", callerID)
		return nil, NewServiceError("task", "list", err)
	}

	if !page.Valid(result.Count) {
		s.logger.Debug("requested page out of range",
			"owner_id", callerID,
			"page", page.Page,
			"count", result.Count)
		return nil, NewServiceError("task", "list", ErrInvalidPage)
	}

	for _, task := range result.Tasks {
		if err := s.resolveSubtasks(ctx, task); err != nil {
			return nil, NewServiceError("task", "list", err)
		}
	}

	return result, nil
}

// Update replaces the stored task with the validated input.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	callerID, taskID uuid.UUID,
	in domain.TaskInput,
) (*domain.Task, error) {
	existing, err := s.authorizeTask(ctx, callerID, taskID)
	if err != nil {
		return nil, NewServiceError("task", "update", err)
	}

	task, err := s.replace(ctx, existing, in)
	if err != nil {
		return nil, NewServiceError("task", "update", err)
	}
	return task, nil
}

// Patch overlays the patch on the stored task and saves the merged result.
func (s *taskServiceImpl) Patch(
	ctx context.Context,
	callerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	existing, err := s.authorizeTask(ctx, callerID, taskID)
	if err != nil {
		return nil, NewServiceError("task", "patch", err)
	}

	task, err := s.replace(ctx, existing, patch.Apply(existing.ToInput()))
	if err != nil {
		return nil, NewServiceError("task", "patch", err)
	}
	return task, nil
}

// Delete removes a task after the ownership check.
func (s *taskServiceImpl) Delete(ctx context.Context, callerID, taskID uuid.UUID) error {
	if _, err := s.authorizeTask(ctx, callerID, taskID); err != nil {
		return NewServiceError("task", "delete", err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.taskStore.WithTx(tx).Delete(ctx, taskID)
	})
	if err != nil {
		s.logWriteError("delete", taskID, err)
		return NewServiceError("task", "delete", err)
	}

	s.logger.Info("task deleted",
		"task_id", taskID,
		"owner_id", callerID)

	return nil
}

// replace validates in and writes it over existing. The owner, ID and
// creation time of existing are kept.
func (s *taskServiceImpl) replace(
	ctx context.Context,
	existing *domain.Task,
	in domain.TaskInput,
) (*domain.Task, error) {
	draft, err := in.Validate()
	if err != nil {
		s.logger.Debug("task input rejected",
			"task_id", existing.ID,
			"error", err)
		return nil, err
	}

	task := &domain.Task{
		ID:        existing.ID,
		OwnerID:   existing.OwnerID,
		Tags:      existing.Tags,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	applyDraft(task, draft)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		if err := checkParent(ctx, txTasks, task.ID, draft.ParentID); err != nil {
			return err
		}
		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		if !draft.TagsSet {
			return nil
		}
		tags, err := s.linkTags(ctx, tx, task.ID, draft.TagNames)
		if err != nil {
			return err
		}
		task.Tags = tags
		return nil
	})
	if err != nil {
		s.logWriteError("update", task.ID, err)
		return nil, err
	}

	if err := s.resolveSubtasks(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task updated",
		"task_id", task.ID,
		"owner_id", task.OwnerID)

	return task, nil
}

// linkTags get-or-creates the named tags and makes them the task's tag set.
func (s *taskServiceImpl) linkTags(
	ctx context.Context,
	tx *sqlx.Tx,
	taskID uuid.UUID,
	names []string,
) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	if len(names) > 0 {
		var err error
		tags, err = s.tagStore.WithTx(tx).GetOrCreate(ctx, names)
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	if err := s.taskStore.WithTx(tx).SetTags(ctx, taskID, ids); err != nil {
		return nil, err
	}
	return tags, nil
}

// authorizeTask loads a task and checks that callerID owns it. A foreign
// task yields store.ErrTaskNotFound so its existence is not disclosed.
func (s *taskServiceImpl) authorizeTask(ctx context.Context, callerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to load task",
				"error", err,
				"task_id", taskID)
		}
		return nil, err
	}

	if task.OwnerID != callerID {
		s.logger.Warn("task access denied",
			"task_id", taskID,
			"caller_id", callerID)
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// resolveSubtasks fills in the subtask tree below task. Ownership of the
// children is not checked. The visited set stops on parent cycles.
func (s *taskServiceImpl) resolveSubtasks(ctx context.Context, task *domain.Task) error {
	visited := map[uuid.UUID]struct{}{task.ID: {}}
	return s.resolveChildren(ctx, task, visited)
}

func (s *taskServiceImpl) resolveChildren(
	ctx context.Context,
	task *domain.Task,
	visited map[uuid.UUID]struct{},
) error {
	children, err := s.taskStore.ListChildren(ctx, task.ID)
	if err != nil {
		s.logger.Error("failed to load subtasks",
			"error", err,
			"task_id", task.ID)
		return err
	}

	task.Subtasks = make([]*domain.Task, 0, len(children))
	for _, child := range children {
		if _, seen := visited[child.ID]; seen {
			s.logger.Warn("task parent cycle detected",
				"task_id", task.ID,
				"child_id", child.ID)
			continue
		}
		visited[child.ID] = struct{}{}
		if err := s.resolveChildren(ctx, child, visited); err != nil {
			return err
		}
		task.Subtasks = append(task.Subtasks, child)
	}
	return nil
}

// checkParent verifies that parentID names an existing task and that
// taskID is not among its ancestors, so a task never ends up nested under
// itself or one of its own subtasks.
func checkParent(ctx context.Context, tasks store.TaskStore, taskID uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == taskID {
		return domain.NewValidationError("parent_task", domain.MsgParentCycle,
			"a task cannot be its own parent.", nil)
	}

	parent, err := tasks.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return domain.NewValidationError("parent_task", domain.MsgParentNotFound,
				"parent task does not exist.", nil)
		}
		return err
	}

	seen := map[uuid.UUID]struct{}{parent.ID: {}}
	for ancestor := parent.ParentID; ancestor != nil; {
		if *ancestor == taskID {
			return domain.NewValidationError("parent_task", domain.MsgParentCycle,
				"a task cannot be nested under one of its subtasks.", nil)
		}
		if _, loop := seen[*ancestor]; loop {
			return nil
		}
		seen[*ancestor] = struct{}{}

		next, err := tasks.GetByID(ctx, *ancestor)
		if err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return nil
			}
			return err
		}
		ancestor = next.ParentID
	}
	return nil
}

func applyDraft(task *domain.Task, draft *domain.TaskDraft) {
	task.Title = draft.Title
	task.Description = draft.Description
	task.ExpirationDate = draft.ExpirationDate
	task.State = draft.State
	task.ParentID = draft.ParentID
}

func (s *taskServiceImpl) logWriteError(op string, taskID uuid.UUID, err error) {
	if _, ok := domain.AsValidationError(err); ok {
		s.logger.Debug("task write rejected",
			"op", op,
			"task_id", taskID,
			"error", err)
		return
	}
	s.logger.Error("task write failed",
		"op", op,
		"task_id", taskID,
		"error", err)
}
