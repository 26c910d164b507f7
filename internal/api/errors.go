package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/i18n"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Field validation
	case errors.Is(err, domain.ErrValidation),
		isValidationError(err):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors. A malformed path ID and a task owned by someone
	// else are indistinguishable from a missing one.
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, service.ErrInvalidPage):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrReferenced):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the message ID and English text for a non-field error.
func errorMessage(err error) (string, string) {
	switch {
	case errors.Is(err, service.ErrInvalidPage):
		return i18n.MsgInvalidPage, "Invalid page."

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return i18n.MsgNotFound, "Not found."

	case errors.Is(err, auth.ErrInvalidCredentials):
		return i18n.MsgInvalidCredentials, "No active account found with the given credentials."

	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return i18n.MsgUnauthorized, "Authentication credentials were not provided."

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return i18n.MsgInvalidToken, "Token is invalid or expired."

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrDuplicate):
		return i18n.MsgInvalidBody, "Invalid request format."

	default:
		return i18n.MsgInternal, "An unexpected error occurred."
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly English error
// message based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if vErr, ok := domain.AsValidationError(err); ok {
		return vErr.Message
	}
	_, text := errorMessage(err)
	return text
}

func isValidationError(err error) bool {
	_, ok := domain.AsValidationError(err)
	return ok
}

// ErrorResponder writes localized error responses.
type ErrorResponder struct {
	translator *i18n.Translator
}

// NewErrorResponder creates an ErrorResponder. A nil translator writes English messages.
func NewErrorResponder(translator *i18n.Translator) *ErrorResponder {
	return &ErrorResponder{translator: translator}
}

// HandleAPIError writes the response for err. A *domain.ValidationError
// becomes a 400 body keyed by field; everything else becomes
// {error, trace_id} with the mapped status and the details only in the log.
func (e *ErrorResponder) HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if vErr, ok := domain.AsValidationError(err); ok {
		shared.RespondWithValidationError(w, r, map[string]string{
			vErr.Field: e.localize(r, vErr.Code, vErr.Message),
		})
		return
	}

	status := MapErrorToStatusCode(err)
	id, text := errorMessage(err)

	var opts []shared.ResponseOption
	if errors.Is(err, auth.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, e.localize(r, id, text), err, opts...)
}

// RespondWithMessage writes {error, trace_id} with a catalog message.
func (e *ErrorResponder) RespondWithMessage(w http.ResponseWriter, r *http.Request, status int, id, text string) {
	shared.RespondWithError(w, r, status, e.localize(r, id, text))
}

func (e *ErrorResponder) localize(r *http.Request, id, text string) string {
	if e == nil || e.translator == nil {
		return text
	}
	return e.translator.Localize(i18n.LanguageFromContext(r.Context()), id, text, nil)
}
