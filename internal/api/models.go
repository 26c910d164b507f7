package api

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// SignupRequest defines the payload for the user registration endpoint.
type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"`
}

// SignupResponse is returned after a successful registration.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPairResponse carries a fresh access token and refresh token.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// AccessTokenResponse carries a new access token.
type AccessTokenResponse struct {
	Access string `json:"access"`
}

// TagRequest defines the payload for creating a tag.
type TagRequest struct {
	Name string `json:"name" validate:"required"`
}

// TagResponse is the full representation of a tag.
type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TaskTagResponse is a tag as embedded in a task.
type TaskTagResponse struct {
	Name string `json:"name"`
}

// TaskResponse is the representation of a task, with its subtasks nested
// recursively in the same shape.
type TaskResponse struct {
	ID             uuid.UUID         `json:"id"`
	Title          string            `json:"title"`
	Description    *string           `json:"description"`
	ExpirationDate *string           `json:"expiration_date"`
	State          domain.TaskState  `json:"state"`
	User           uuid.UUID         `json:"user"`
	ParentTask     *uuid.UUID        `json:"parent_task"`
	Subtasks       []TaskResponse    `json:"subtasks"`
	Tags           []TaskTagResponse `json:"tags"`
}

// PageResponse is the envelope of every paginated listing.
type PageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// taskToResponse converts a task and its subtask tree.
func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		State:       task.State,
		User:        task.OwnerID,
		ParentTask:  task.ParentID,
		Subtasks:    make([]TaskResponse, 0, len(task.Subtasks)),
		Tags:        make([]TaskTagResponse, 0, len(task.Tags)),
	}
	if task.ExpirationDate != nil {
		date := task.ExpirationDate.Format(domain.DateLayout)
		resp.ExpirationDate = &date
	}
	for _, sub := range task.Subtasks {
		resp.Subtasks = append(resp.Subtasks, taskToResponse(sub))
	}
	for _, tag := range task.Tags {
		resp.Tags = append(resp.Tags, TaskTagResponse{Name: tag.Name})
	}
	return resp
}

func tagToResponse(tag *domain.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name}
}

// optionalString records whether a JSON field was present and whether it was null.
type optionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only called for fields present in the payload, including null ones.
func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// optionalTags is the tags field of a task payload: a list of {"name": ...}
// objects. Entries without a name become empty strings, which validation skips.
type optionalTags struct {
	Set   bool
	Names []string
}

// UnmarshalJSON treats an explicit null like an empty list.
func (o *optionalTags) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Names = []string{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var items []struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for _, item := range items {
		if item.Name == nil {
			o.Names = append(o.Names, "")
			continue
		}
		o.Names = append(o.Names, *item.Name)
	}
	return nil
}

// TaskRequest is the payload of task create, replace and partial update.
type TaskRequest struct {
	Title          optionalString `json:"title"`
	Description    optionalString `json:"description"`
	ExpirationDate optionalString `json:"expiration_date"`
	State          optionalString `json:"state"`
	ParentTask     optionalString `json:"parent_task"`
	Tags           optionalTags   `json:"tags"`
}

// ToInput builds the full input used by create and replace. Absent fields
// are empty; a tags list is only carried when the payload had one.
func (r TaskRequest) ToInput() domain.TaskInput {
	in := domain.TaskInput{
		Description:    r.Description.Value,
		ExpirationDate: r.ExpirationDate.Value,
		State:          r.State.Value,
		ParentTask:     r.ParentTask.Value,
	}
	if r.Title.Value != nil {
		in.Title = *r.Title.Value
	}
	if r.Tags.Set {
		in.Tags = r.Tags.Names
	}
	return in
}

// ToPatch builds a partial update from the fields present in the payload.
func (r TaskRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Description:       r.Description.Value,
		DescriptionSet:    r.Description.Set,
		ExpirationDate:    r.ExpirationDate.Value,
		ExpirationDateSet: r.ExpirationDate.Set,
		ParentTask:        r.ParentTask.Value,
		ParentTaskSet:     r.ParentTask.Set,
	}
	if r.Title.Set {
		title := ""
		if r.Title.Value != nil {
			title = *r.Title.Value
		}
		patch.Title = &title
	}
	if r.State.Set && r.State.Value != nil {
		patch.State = r.State.Value
	}
	if r.Tags.Set {
		patch.Tags = r.Tags.Names
	}
	return patch
}
