package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTagService_Create(t *testing.T) {
	t.Run("trims and stores the name", func(t *testing.T) {
		db, sqlMock := newTxDB(t)
		tags := &MockTagStore{}
		svc := NewTagService(tags, db, discardLogger())

		sqlMock.ExpectBegin()
		tags.On("Create", mock.Anything, mock.MatchedBy(func(tag *domain.Tag) bool {
			return tag.Name == "errands" && tag.ID != uuid.Nil
		})).Return(nil)
		sqlMock.ExpectCommit()

		tag, err := svc.Create(context.Background(), "  errands ")

		require.NoError(t, err)
		assert.Equal(t, "errands", tag.Name)
		tags.AssertExpectations(t)
	})

	t.Run("taken name is a field error", func(t *testing.T) {
		db, sqlMock := newTxDB(t)
		tags := &MockTagStore{}
		svc := NewTagService(tags, db, discardLogger())

		sqlMock.ExpectBegin()
		tags.On("Create", mock.Anything, mock.Anything).Return(store.ErrTagExists)
		sqlMock.ExpectRollback()

		_, err := svc.Create(context.Background(), "work")

		vErr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "name", vErr.Field)
		assert.Equal(t, domain.MsgTagNameExists, vErr.Code)
		assert.ErrorIs(t, err, store.ErrTagExists)
	})

	t.Run("blank name never reaches the store", func(t *testing.T) {
		db, _ := newTxDB(t)
		tags := &MockTagStore{}
		svc := NewTagService(tags, db, discardLogger())

		_, err := svc.Create(context.Background(), "   ")

		vErr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, domain.MsgTagNameRequired, vErr.Code)
		tags.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTagService_List(t *testing.T) {
	db, _ := newTxDB(t)
	tags := &MockTagStore{}
	svc := NewTagService(tags, db, discardLogger())

	tags.On("List", mock.Anything, domain.NewPageRequest(1, 10)).Return(&domain.TagPage{
		Tags:  []*domain.Tag{{ID: uuid.New(), Name: "home"}},
		Count: 1,
		Page:  domain.NewPageRequest(1, 10),
	}, nil)
	tags.On("List", mock.Anything, domain.NewPageRequest(2, 10)).Return(&domain.TagPage{
		Tags:  []*domain.Tag{},
		Count: 1,
		Page:  domain.NewPageRequest(2, 10),
	}, nil)

	page, err := svc.List(context.Background(), domain.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Len(t, page.Tags, 1)

	_, err = svc.List(context.Background(), domain.NewPageRequest(2, 10))
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestTagService_GetAndDelete(t *testing.T) {
	db, sqlMock := newTxDB(t)
	tags := &MockTagStore{}
	svc := NewTagService(tags, db, discardLogger())

	missing := uuid.New()
	tags.On("GetByID", mock.Anything, missing).Return(nil, store.ErrTagNotFound)
	sqlMock.ExpectBegin()
	tags.On("Delete", mock.Anything, missing).Return(store.ErrTagNotFound)
	sqlMock.ExpectRollback()

	_, err := svc.Get(context.Background(), missing)
	assert.ErrorIs(t, err, store.ErrTagNotFound)

	err = svc.Delete(context.Background(), missing)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
