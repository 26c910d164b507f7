package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskState represents the progress of a task.
type TaskState string

// Possible task state values
const (
	TaskStatePending  TaskState = "pending"
	TaskStateDoing    TaskState = "doing"
	TaskStateComplete TaskState = "complete"
)

// DateLayout is the wire and storage format of task expiration dates.
const DateLayout = "2006-01-02"

// Field limits enforced by validation and by the schema.
const (
	MaxTitleLength   = 200
	MaxTagNameLength = 50
)

// IsValid reports whether s is one of the known task states.
func (s TaskState) IsValid() bool {
	switch s {
	case TaskStatePending, TaskStateDoing, TaskStateComplete:
		return true
	}
	return false
}

// Tag is a named label shared by any number of tasks.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewTag creates a Tag with a fresh ID after validating its name.
func NewTag(name string) (*Tag, error) {
	tag := &Tag{ID: uuid.New(), Name: name}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// Validate checks the tag name constraints.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return NewValidationError("name", MsgTagNameRequired, "this field may not be blank", nil)
	}
	if runeLen(t.Name) > MaxTagNameLength {
		return NewValidationError("name", MsgTagNameLength, "tag name must be at most 50 characters", nil)
	}
	return nil
}

// Task is a to-do item owned by exactly one user. ParentID makes it a subtask
// of another task. Subtasks is never persisted: it is filled in on read with
// the live set of tasks whose ParentID equals ID.
type Task struct {
	ID             uuid.UUID
	Title          string
	Description    *string
	ExpirationDate *time.Time
	State          TaskState
	OwnerID        uuid.UUID
	ParentID       *uuid.UUID
	Tags           []Tag
	Subtasks       []*Task
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TagNames returns the names of the task's tags in their stored order.
func (t *Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// ToInput converts a stored task back into the raw input form, which lets a
// partial update overlay only the fields the caller supplied.
func (t *Task) ToInput() TaskInput {
	in := TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Tags:        t.TagNames(),
	}
	state := string(t.State)
	in.State = &state
	if t.ExpirationDate != nil {
		date := t.ExpirationDate.Format(DateLayout)
		in.ExpirationDate = &date
	}
	if t.ParentID != nil {
		parent := t.ParentID.String()
		in.ParentTask = &parent
	}
	return in
}

// Reminder is a due, pending task joined with the contact data of its owner.
type Reminder struct {
	TaskID     uuid.UUID
	TaskTitle  string
	OwnerID    uuid.UUID
	Username   string
	OwnerEmail string
}
