package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/i18n"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
)

// Query parameters understood by every listing.
const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// errInvalidBody marks a request body that is not the expected JSON document.
var errInvalidBody = errors.New("invalid request body")

// getUserIDFromContext extracts the authenticated user's UUID from the request context.
// The user ID is expected to be placed in the context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts a UUID from the URL path parameters. A missing or
// malformed value reports domain.ErrInvalidID, which renders as 404.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

// handleUserIDAndPathUUID extracts both the user ID from context and a UUID
// from the path. It writes an error response if either extraction fails.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	errs *ErrorResponder,
) (uuid.UUID, uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		errs.HandleAPIError(w, r, domain.ErrUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		errs.HandleAPIError(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// decodeBody decodes a JSON body into v. A value of the wrong JSON type is
// reported against its field; any other decoding failure is errInvalidBody.
func decodeBody(r *http.Request, v interface{}) error {
	err := shared.DecodeJSON(r, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(typeErr.Field, domain.MsgInvalidField, "invalid value.", nil)
	}
	return errors.Join(errInvalidBody, err)
}

// respondInvalidBody writes the 400 response for an undecodable body, or
// defers to HandleAPIError for a field-level type mismatch.
func respondInvalidBody(w http.ResponseWriter, r *http.Request, errs *ErrorResponder, err error) {
	if _, ok := domain.AsValidationError(err); ok {
		errs.HandleAPIError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), slog.Default()).
		Debug("failed to decode request body", slog.Any("error", err))
	errs.RespondWithMessage(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, "Invalid request format.")
}

// parsePageRequest reads page and page_size from the query string. A missing
// page is page 1; a page that is not a positive integer yields page 0, which
// no listing considers valid. An unusable page_size falls back to the default.
func parsePageRequest(r *http.Request) domain.PageRequest {
	query := r.URL.Query()

	page := 1
	if raw := query.Get(pageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			n = 0
		}
		page = n
	}

	size := 0
	if raw := query.Get(pageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}

	return domain.NewPageRequest(page, size)
}

// pageLinks builds the absolute next and previous URLs of a listing page.
// Every other query parameter of the request is preserved. The link to the
// first page carries no page parameter.
func pageLinks(r *http.Request, page domain.PageRequest, count int) (*string, *string) {
	var next, previous *string

	if page.HasNext(count) {
		link := pageURL(r, page.Page+1)
		next = &link
	}
	if page.Page > 1 {
		link := pageURL(r, page.Page-1)
		previous = &link
	}
	return next, previous
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := r.URL.Query()
	if page <= 1 {
		query.Del(pageParam)
	} else {
		query.Set(pageParam, strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
