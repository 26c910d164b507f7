package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskInput is the raw, client-supplied form of a task. Optional values are
// nil when absent; Tags is nil when the payload did not mention tags at all.
type TaskInput struct {
	Title          string
	Description    *string
	ExpirationDate *string
	State          *string
	ParentTask     *string
	Tags           []string
}

// TaskDraft is a TaskInput that passed validation, with every value parsed.
type TaskDraft struct {
	Title          string
	Description    *string
	ExpirationDate *time.Time
	State          TaskState
	ParentID       *uuid.UUID
	TagNames       []string
	// TagsSet is true when the input carried a tags list, even an empty one.
	TagsSet bool
}

// taskRule checks one aspect of the input and records what it parsed on the draft.
type taskRule func(in *TaskInput, draft *TaskDraft) *ValidationError

// taskRules run in this order and stop at the first failure.
var taskRules = []taskRule{
	requireTitle,
	checkTitleLength,
	checkState,
	checkExpirationDate,
	checkParentTask,
	checkTagNames,
}

// Validate runs the task rules in order, returning the first failure as a
// *ValidationError. No rule touches storage, so a failed input has no side effects.
func (in TaskInput) Validate() (*TaskDraft, error) {
	draft := &TaskDraft{
		Description: in.Description,
		State:       TaskStatePending,
	}
	for _, rule := range taskRules {
		if err := rule(&in, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

func requireTitle(in *TaskInput, draft *TaskDraft) *ValidationError {
	draft.Title = strings.TrimSpace(in.Title)
	if draft.Title == "" {
		return NewValidationError("title", MsgTitleRequired, "task must have a title.", nil)
	}
	return nil
}

// checkTitleLength enforces 1..MaxTitleLength characters (runes, not bytes).
func checkTitleLength(_ *TaskInput, draft *TaskDraft) *ValidationError {
	n := utf8.RuneCountInString(draft.Title)
	if n < 1 || n > MaxTitleLength {
		return NewValidationError("title", MsgTitleLength,
			"task title cannot be blank and must be at most 200 characters.", nil)
	}
	return nil
}

func checkState(in *TaskInput, draft *TaskDraft) *ValidationError {
	if in.State == nil {
		return nil
	}
	state := TaskState(*in.State)
	if !state.IsValid() {
		return NewValidationError("state", MsgStateInvalid, "invalid state.", nil)
	}
	draft.State = state
	return nil
}

func checkExpirationDate(in *TaskInput, draft *TaskDraft) *ValidationError {
	if in.ExpirationDate == nil {
		return nil
	}
	date, err := time.Parse(DateLayout, *in.ExpirationDate)
	if err != nil {
		return NewValidationError("expiration_date", MsgExpirationFormat,
			"expiration date must be in YYYY-MM-DD format.", nil)
	}
	draft.ExpirationDate = &date
	return nil
}

func checkParentTask(in *TaskInput, draft *TaskDraft) *ValidationError {
	if in.ParentTask == nil {
		return nil
	}
	id, err := uuid.Parse(*in.ParentTask)
	if err != nil {
		return NewValidationError("parent_task", MsgParentInvalid,
			"parent task must be a valid task id.", ErrInvalidID)
	}
	draft.ParentID = &id
	return nil
}

// checkTagNames keeps the first occurrence of each non-blank name.
func checkTagNames(in *TaskInput, draft *TaskDraft) *ValidationError {
	if in.Tags == nil {
		return nil
	}
	draft.TagsSet = true
	draft.TagNames = make([]string, 0, len(in.Tags))
	seen := make(map[string]struct{}, len(in.Tags))
	for _, raw := range in.Tags {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if runeLen(name) > MaxTagNameLength {
			return NewValidationError("tags", MsgTaskTagNameLength,
				"tag names must be at most 50 characters.", nil)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		draft.TagNames = append(draft.TagNames, name)
	}
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TaskPatch carries the fields of a partial update. A nil pointer means the
// field was absent; the *Set flags distinguish an explicit null from absence
// for the nullable fields.
type TaskPatch struct {
	Title             *string
	Description       *string
	DescriptionSet    bool
	ExpirationDate    *string
	ExpirationDateSet bool
	State             *string
	ParentTask        *string
	ParentTaskSet     bool
	Tags              []string
}

// Apply overlays the patch on in and returns the merged input.
func (p TaskPatch) Apply(in TaskInput) TaskInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.DescriptionSet {
		in.Description = p.Description
	}
	if p.ExpirationDateSet {
		in.ExpirationDate = p.ExpirationDate
	}
	if p.State != nil {
		in.State = p.State
	}
	if p.ParentTaskSet {
		in.ParentTask = p.ParentTask
	}
	if p.Tags != nil {
		in.Tags = p.Tags
	} else {
		// Unchanged tags must not be rewritten.
		in.Tags = nil
	}
	return in
}
