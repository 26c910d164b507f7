package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Password and username limits.
const (
	MaxUsernameLength = 150
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// ErrEmptyUserID is returned when a user has no ID.
var ErrEmptyUserID = errors.New("user ID cannot be empty")

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User is an account that owns tasks. Only ID matters to the task core;
// Username and Email are used for login and reminder emails.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	Password       string // Plaintext, only present between signup and hashing
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a new User with a fresh ID. The plaintext password is kept
// on the struct; the store hashes it before persisting.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the user's fields. Field problems are returned as
// *ValidationError so the API can key them by field name.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return NewValidationError("username", MsgUsernameRequired, "this field may not be blank.", nil)
	}
	if runeLen(u.Username) > MaxUsernameLength || !usernamePattern.MatchString(u.Username) {
		return NewValidationError("username", MsgUsernameInvalid,
			"enter a valid username of at most 150 letters, digits and @/./+/-/_ characters.", nil)
	}

	if u.Email != "" {
		if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
			return NewValidationError("email", MsgEmailInvalid, "enter a valid email address.", nil)
		}
	}

	if u.Password != "" {
		if len(u.Password) > MaxPasswordLength {
			return NewValidationError("password", MsgPasswordTooLong,
				"password must be at most 72 bytes long.", nil)
		}
	} else if u.HashedPassword == "" {
		// Existing users carry only the hash.
		return NewValidationError("password", MsgPasswordRequired, "this field may not be blank.", nil)
	}

	return nil
}
