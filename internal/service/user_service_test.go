package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	t.Run("creates user in a transaction", func(t *testing.T) {
		db, sqlMock := newTxDB(t)
		users := &MockUserStore{}
		svc := NewUserService(users, &MockPasswordVerifier{}, db, discardLogger())

		sqlMock.ExpectBegin()
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com" && u.Password == "s3cret!"
		})).Return(nil)
		sqlMock.ExpectCommit()

		user, err := svc.Register(context.Background(), " alice ", "alice@example.com", "s3cret!")

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		users.AssertExpectations(t)
	})

	t.Run("taken username is a field error", func(t *testing.T) {
		db, sqlMock := newTxDB(t)
		users := &MockUserStore{}
		svc := NewUserService(users, &MockPasswordVerifier{}, db, discardLogger())

		sqlMock.ExpectBegin()
		users.On("Create", mock.Anything, mock.Anything).Return(store.ErrUsernameExists)
		sqlMock.ExpectRollback()

		_, err := svc.Register(context.Background(), "alice", "", "pw")

		vErr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "username", vErr.Field)
		assert.Equal(t, domain.MsgUsernameExists, vErr.Code)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		db, _ := newTxDB(t)
		users := &MockUserStore{}
		svc := NewUserService(users, &MockPasswordVerifier{}, db, discardLogger())

		tests := []struct {
			name     string
			username string
			email    string
			password string
			field    string
		}{
			{"blank username", "  ", "", "pw", "username"},
			{"bad characters", "al ice", "", "pw", "username"},
			{"bad email", "alice", "not-an-email", "pw", "email"},
			{"missing password", "alice", "", "", "password"},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)

				vErr, ok := domain.AsValidationError(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Equal(t, tt.field, vErr.Field)
			})
		}
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	stored := &domain.User{
		ID:             uuid.New(),
		Username:       "alice",
		HashedPassword: "$2a$04$hash",
	}

	tests := []struct {
		name       string
		lookupErr  error
		compareErr error
		wantErr    error
	}{
		{name: "valid credentials"},
		{name: "unknown user", lookupErr: store.ErrUserNotFound, wantErr: auth.ErrInvalidCredentials},
		{name: "wrong password", compareErr: errors.New("mismatch"), wantErr: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newTxDB(t)
			users := &MockUserStore{}
			verifier := &MockPasswordVerifier{}
			svc := NewUserService(users, verifier, db, discardLogger())

			if tt.lookupErr != nil {
				users.On("GetByUsername", mock.Anything, "alice").Return(nil, tt.lookupErr)
			} else {
				users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
				verifier.On("Compare", stored.HashedPassword, "pw").Return(tt.compareErr)
			}

			user, err := svc.Authenticate(context.Background(), "alice", "pw")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored.ID, user.ID)
		})
	}

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		db, _ := newTxDB(t)
		users := &MockUserStore{}
		svc := NewUserService(users, &MockPasswordVerifier{}, db, discardLogger())

		dbErr := errors.New("connection refused")
		users.On("GetByUsername", mock.Anything, "alice").Return(nil, dbErr)

		_, err := svc.Authenticate(context.Background(), "alice", "pw")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestUserService_GetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, _ := newTxDB(t)
		users := &MockUserStore{}
		svc := NewUserService(users, &MockPasswordVerifier{}, db, discardLogger())
		id := uuid.New()

		users.On("GetByID", mock.Anything, id).Return(&domain.User{ID: id, Username: "alice"}, nil)

		user, err := svc.GetUser(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("missing user keeps the store sentinel", func(t *testing.T) {
		db, _ := newTxDB(t)
		users := &MockUserStore{}
		svc := NewUserService(users, &MockPasswordVerifier{}, db, discardLogger())
		id := uuid.New()

		users.On("GetByID", mock.Anything, id).Return(nil, store.ErrUserNotFound)

		_, err := svc.GetUser(context.Background(), id)

		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
