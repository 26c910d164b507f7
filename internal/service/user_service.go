package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
)

// UserService provides account operations
type UserService interface {
	// Register creates a new user. Field problems, including a taken
	// username, are returned as *domain.ValidationError.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate checks a username and password pair.
	// Returns auth.ErrInvalidCredentials for an unknown user or a wrong password.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore        store.UserStore
	passwordVerifier auth.PasswordVerifier
	logger           *slog.Logger
	db               *sqlx.DB
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	passwordVerifier auth.PasswordVerifier,
	db *sqlx.DB,
	logger *slog.Logger,
) UserService {
	return &UserServiceImpl{
		userStore:        userStore,
		passwordVerifier: passwordVerifier,
		db:               db,
		logger:           logger.With("component", "user_service"),
	}
}

// Register creates a new user with the specified credentials
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		s.logger.Debug("signup input rejected",
			"error", err,
			"username", username)
		return nil, NewServiceError("user", "register", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.logger.Debug("attempted to create user with existing username",
				"username", username)
			return nil, NewServiceError("user", "register", domain.NewValidationError(
				"username", domain.MsgUsernameExists,
				"a user with that username already exists.", store.ErrUsernameExists))
		}
		s.logger.Error("failed to save user to database",
			"error", err,
			"username", username)
		return nil, NewServiceError("user", "register", err)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// Authenticate returns the user when password matches the stored hash
func (s *UserServiceImpl) Authenticate(
	ctx context.Context,
	username, password string,
) (*domain.User, error) {
	user, err := s.userStore.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown user",
				"username", username)
			return nil, auth.ErrInvalidCredentials
		}
		s.logger.Error("failed to retrieve user for login",
			"error", err,
			"username", username)
		return nil, NewServiceError("user", "authenticate", err)
	}

	if err := s.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password",
			"user_id", user.ID)
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("user not found", "user_id", userID)
			return nil, fmt.Errorf("failed to retrieve user: %w", err)
		}
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	s.logger.Debug("retrieved user successfully",
		"user_id", userID,
		"username", user.Username)

	return user, nil
}
