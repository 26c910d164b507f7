package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
)

// taskRow is the tasks table as scanned by sqlx.
type taskRow struct {
	ID             uuid.UUID      `db:"id"`
	Title          string         `db:"title"`
	Description    sql.NullString `db:"description"`
	ExpirationDate sql.NullTime   `db:"expiration_date"`
	State          string         `db:"state"`
	OwnerID        uuid.UUID      `db:"owner_id"`
	ParentID       uuid.NullUUID  `db:"parent_task_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r taskRow) toDomain() *domain.Task {
	task := &domain.Task{
		ID:        r.ID,
		Title:     r.Title,
		State:     domain.TaskState(r.State),
		OwnerID:   r.OwnerID,
		Tags:      []domain.Tag{},
		Subtasks:  []*domain.Task{},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Description.Valid {
		description := r.Description.String
		task.Description = &description
	}
	if r.ExpirationDate.Valid {
		y, m, d := r.ExpirationDate.Time.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		task.ExpirationDate = &date
	}
	if r.ParentID.Valid {
		parent := r.ParentID.UUID
		task.ParentID = &parent
	}
	return task
}

// taskTagRow is one task_tags link joined with its tag.
type taskTagRow struct {
	TaskID uuid.UUID `db:"task_id"`
	ID     uuid.UUID `db:"id"`
	Name   string    `db:"name"`
}

type reminderRow struct {
	TaskID    uuid.UUID `db:"task_id"`
	TaskTitle string    `db:"task_title"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
}

var taskColumns = []string{
	"t.id", "t.title", "t.description", "t.expiration_date", "t.state",
	"t.owner_id", "t.parent_task_id", "t.created_at", "t.updated_at",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sqlx.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, title, description, expiration_date, state, owner_id, parent_task_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		nullableString(task.Description),
		nullableDate(task.ExpirationDate),
		string(task.State),
		task.OwnerID,
		nullableUUID(task.ParentID),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(taskColumns...).
		From("tasks t").
		Where(sq.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	var row taskRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	task := row.toDomain()
	if err := s.loadTags(ctx, []*domain.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = $1, description = $2, expiration_date = $3, state = $4,
		    parent_task_id = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullableString(task.Description),
		nullableDate(task.ExpirationDate),
		string(task.State),
		nullableUUID(task.ParentID),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task updated successfully", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List. The same WHERE clause drives both the
// count and the page query; the tag filter is a sub-select so a task matching
// several tags appears once.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
	page domain.PageRequest,
) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := &domain.TaskPage{Tasks: []*domain.Task{}, Page: page}
	if filter.NoMatch {
		return result, nil
	}

	where, err := taskFilterClause(ownerID, filter)
	if err != nil {
		return nil, err
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("tasks t").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task count query: %w", err)
	}
	if err := sqlx.GetContext(ctx, s.db, &result.Count, countQuery, countArgs...); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	if result.Count == 0 || !page.Valid(result.Count) {
		return result, nil
	}

	query, args, err := psql.Select(taskColumns...).
		From("tasks t").
		Where(where).
		OrderBy("t.created_at", "t.id").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task list query: %w", err)
	}

	tasks, err := s.selectTasks(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}
	result.Tasks = tasks

	log.Debug("tasks listed",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", result.Count),
		slog.Int("page", page.Page))
	return result, nil
}

// taskFilterClause builds the owner-scoped WHERE clause for a task listing.
func taskFilterClause(ownerID uuid.UUID, filter domain.TaskFilter) (sq.And, error) {
	where := sq.And{sq.Eq{"t.owner_id": ownerID}}
	if filter.State != nil {
		where = append(where, sq.Eq{"t.state": *filter.State})
	}
	if filter.ExpirationDate != nil {
		where = append(where, sq.Eq{"t.expiration_date": filter.ExpirationDate.Format(domain.DateLayout)})
	}
	if len(filter.Tags) > 0 {
		// Question placeholders here; the outer dollar builder renumbers them.
		sub, subArgs, err := sq.Select("tt.task_id").
			From("task_tags tt").
			Join("tags g ON g.id = tt.tag_id").
			Where(sq.Eq{"g.name": filter.Tags}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build tag filter: %w", err)
		}
		where = append(where, sq.Expr("t.id IN ("+sub+")", subArgs...))
	}
	return where, nil
}

// ListChildren implements store.TaskStore.ListChildren
func (s *PostgresTaskStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	query, args, err := psql.Select(taskColumns...).
		From("tasks t").
		Where(sq.Eq{"t.parent_task_id": parentID}).
		OrderBy("t.created_at", "t.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subtask query: %w", err)
	}

	tasks, err := s.selectTasks(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list subtasks",
			slog.String("error", err.Error()),
			slog.String("parent_id", parentID.String()))
		return nil, err
	}
	return tasks, nil
}

// selectTasks runs a task query and attaches each task's tags.
func (s *PostgresTaskStore) selectTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	var rows []taskRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		return nil, MapError(err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	if err := s.loadTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// loadTags fetches the tags of all given tasks in one query.
func (s *PostgresTaskStore) loadTags(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(tasks))
	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
		byID[task.ID] = task
	}

	query, args, err := psql.Select("tt.task_id", "g.id", "g.name").
		From("task_tags tt").
		Join("tags g ON g.id = tt.tag_id").
		Where(sq.Eq{"tt.task_id": ids}).
		OrderBy("g.name").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task tag query: %w", err)
	}

	var rows []taskTagRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task tags",
			slog.String("error", err.Error()),
			slog.Int("task_count", len(tasks)))
		return MapError(err)
	}

	for _, row := range rows {
		if task, ok := byID[row.TaskID]; ok {
			task.Tags = append(task.Tags, domain.Tag{ID: row.ID, Name: row.Name})
		}
	}
	return nil
}

// SetTags implements store.TaskStore.SetTags
func (s *PostgresTaskStore) SetTags(ctx context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = $1", taskID); err != nil {
		log.Error("failed to clear task tags",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	insert := psql.Insert("task_tags").Columns("task_id", "tag_id")
	for _, tagID := range tagIDs {
		insert = insert.Values(taskID, tagID)
	}
	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task tag insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to link task tags",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}
	return nil
}

// ListDueReminders implements store.TaskStore.ListDueReminders
func (s *PostgresTaskStore) ListDueReminders(ctx context.Context, date time.Time) ([]domain.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(
		"t.id AS task_id", "t.title AS task_title", "u.id AS owner_id", "u.username", "u.email",
	).
		From("tasks t").
		Join("users u ON u.id = t.owner_id").
		Where(sq.Eq{
			"t.state":           string(domain.TaskStatePending),
			"t.expiration_date": date.Format(domain.DateLayout),
		}).
		OrderBy("t.created_at", "t.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reminder query: %w", err)
	}

	var rows []reminderRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		log.Error("failed to list due tasks",
			slog.String("error", err.Error()),
			slog.String("date", date.Format(domain.DateLayout)))
		return nil, MapError(err)
	}

	reminders := make([]domain.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, domain.Reminder{
			TaskID:     row.TaskID,
			TaskTitle:  row.TaskTitle,
			OwnerID:    row.OwnerID,
			Username:   row.Username,
			OwnerEmail: row.Email,
		})
	}
	return reminders, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateLayout)
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
