package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/store"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type tagRow struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sqlx.Tx) store.TagStore {
	return &PostgresTagStore{db: tx, logger: s.logger}
}

// GetOrCreate implements store.TagStore.GetOrCreate with a single upsert.
// The no-op DO UPDATE makes RETURNING yield existing rows too.
func (s *PostgresTagStore) GetOrCreate(ctx context.Context, names []string) ([]domain.Tag, error) {
	if len(names) == 0 {
		return []domain.Tag{}, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	insert := psql.Insert("tags").Columns("id", "name")
	for _, name := range names {
		insert = insert.Values(uuid.New(), name)
	}
	query, args, err := insert.
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tag upsert: %w", err)
	}

	var rows []tagRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		log.Error("failed to get or create tags",
			slog.String("error", err.Error()),
			slog.Int("tag_count", len(names)))
		return nil, MapError(err)
	}

	byName := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		byName[row.Name] = row.ID
	}
	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("tag %q missing from upsert result", name)
		}
		tags = append(tags, domain.Tag{ID: id, Name: name})
	}

	log.Debug("tags resolved", slog.Int("tag_count", len(tags)))
	return tags, nil
}

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "INSERT INTO tags (id, name) VALUES ($1, $2)", tag.ID, tag.Name)
	if err != nil {
		log.Warn("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("tag_name", tag.Name))
		return MapError(err)
	}

	log.Info("tag created successfully", slog.String("tag_id", tag.ID.String()))
	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *PostgresTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	var row tagRow
	err := sqlx.GetContext(ctx, s.db, &row, "SELECT id, name FROM tags WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get tag",
			slog.String("error", err.Error()),
			slog.String("tag_id", id.String()))
		return nil, MapError(err)
	}
	return &domain.Tag{ID: row.ID, Name: row.Name}, nil
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	if err := sqlx.GetContext(ctx, s.db, &count, "SELECT COUNT(*) FROM tags"); err != nil {
		log.Error("failed to count tags", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	result := &domain.TagPage{Tags: []*domain.Tag{}, Count: count, Page: page}
	if !page.Valid(count) || count == 0 {
		return result, nil
	}

	query, args, err := psql.Select("id", "name").
		From("tags").
		OrderBy("name").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tag list query: %w", err)
	}

	var rows []tagRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	for _, row := range rows {
		result.Tags = append(result.Tags, &domain.Tag{ID: row.ID, Name: row.Name})
	}
	return result, nil
}

// Delete implements store.TagStore.Delete
func (s *PostgresTagStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete tag",
			slog.String("error", err.Error()),
			slog.String("tag_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTagNotFound); err != nil {
		return err
	}

	log.Info("tag deleted successfully", slog.String("tag_id", id.String()))
	return nil
}
