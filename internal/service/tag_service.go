package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/store"
)

// TagService manages the shared tag catalog. Tags are global: any
// authenticated user may list, create or delete them.
type TagService interface {
	// Create adds a tag. A taken name is reported as a validation error on "name".
	Create(ctx context.Context, name string) (*domain.Tag, error)

	// Get returns a tag by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// List returns one page of tags ordered by name.
	// Returns ErrInvalidPage when the page does not exist.
	List(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error)

	// Delete removes a tag and detaches it from every task.
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagServiceImpl struct {
	tagStore store.TagStore
	db       *sqlx.DB
	logger   *slog.Logger
}

// NewTagService creates a new TagService
func NewTagService(tagStore store.TagStore, db *sqlx.DB, logger *slog.Logger) TagService {
	return &tagServiceImpl{
		tagStore: tagStore,
		db:       db,
		logger:   logger.With("component", "tag_service"),
	}
}

func (s *tagServiceImpl) Create(ctx context.Context, name string) (*domain.Tag, error) {
	tag, err := domain.NewTag(strings.TrimSpace(name))
	if err != nil {
		return nil, NewServiceError("tag", "create", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.tagStore.WithTx(tx).Create(ctx, tag)
	})
	if err != nil {
		if errors.Is(err, store.ErrTagExists) {
			s.logger.Debug("attempted to create existing tag",
				"name", tag.Name)
			return nil, NewServiceError("tag", "create", domain.NewValidationError(
				"name", domain.MsgTagNameExists, "tag with this name already exists.", store.ErrTagExists))
		}
		s.logger.Error("failed to create tag",
			"error", err,
			"name", tag.Name)
		return nil, NewServiceError("tag", "create", err)
	}

	s.logger.Info("tag created",
		"tag_id", tag.ID,
		"name", tag.Name)

	return tag, nil
}

func (s *tagServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	tag, err := s.tagStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("tag", "get", err)
	}
	return tag, nil
}

func (s *tagServiceImpl) List(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error) {
	result, err := s.tagStore.List(ctx, page)
	if err != nil {
		s.logger.Error("failed to list tags",
			"error", err)
		return nil, NewServiceError("tag", "list", err)
	}
	if !page.Valid(result.Count) {
		return nil, NewServiceError("tag", "list", ErrInvalidPage)
	}
	return result, nil
}

func (s *tagServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.tagStore.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, store.ErrTagNotFound) {
			s.logger.Error("failed to delete tag",
				"error", err,
				"tag_id", id)
		}
		return NewServiceError("tag", "delete", err)
	}

	s.logger.Info("tag deleted",
		"tag_id", id)

	return nil
}
