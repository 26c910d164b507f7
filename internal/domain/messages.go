package domain

// Message codes carried by ValidationError. The API layer resolves them
// against the localized catalogs and falls back to the English message
// stored next to the code.
const (
	MsgTitleRequired     = "task.title.required"
	MsgTitleLength       = "task.title.length"
	MsgStateInvalid      = "task.state.invalid"
	MsgExpirationFormat  = "task.expiration_date.format"
	MsgParentInvalid     = "task.parent_task.invalid"
	MsgParentNotFound    = "task.parent_task.not_found"
	MsgParentCycle       = "task.parent_task.cycle"
	MsgTaskTagNameLength = "task.tags.length"
	MsgTagNameRequired   = "tag.name.required"
	MsgTagNameLength     = "tag.name.length"
	MsgTagNameExists     = "tag.name.exists"
	MsgUsernameRequired  = "user.username.required"
	MsgUsernameInvalid   = "user.username.invalid"
	MsgUsernameExists    = "user.username.exists"
	MsgPasswordRequired  = "user.password.required"
	MsgPasswordTooLong   = "user.password.length"
	MsgEmailInvalid      = "user.email.invalid"
	MsgInvalidField      = "request.field.invalid"
)
