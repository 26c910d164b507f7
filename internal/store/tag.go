package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// TagStore defines the interface for tag data persistence.
type TagStore interface {
	// GetOrCreate resolves each name to a tag, creating missing ones. The
	// result follows the order of names. Concurrent callers never produce
	// duplicate tags.
	GetOrCreate(ctx context.Context, names []string) ([]domain.Tag, error)

	// Create inserts a new tag.
	// Returns ErrTagExists if the name is already taken.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves a tag by ID.
	// Returns ErrTagNotFound if the tag does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// List returns one page of tags ordered by name, with the total count.
	List(ctx context.Context, page domain.PageRequest) (*domain.TagPage, error)

	// Delete removes a tag and its task links.
	// Returns ErrTagNotFound if the tag does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TagStore instance that uses the provided transaction.
	WithTx(tx *sqlx.Tx) TagStore
}
