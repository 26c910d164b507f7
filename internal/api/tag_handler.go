package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/service"
)

var tagCodes = shared.FieldCodes{
	"name.required": domain.MsgTagNameRequired,
}

// TagHandler serves the tag endpoints. Tags are shared by all users.
type TagHandler struct {
	tagService service.TagService
	errors     *ErrorResponder
	logger     *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService service.TagService, errors *ErrorResponder, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		errors:     errors,
		logger:     logger.With("component", "tag_handler"),
	}
}

// ListTags handles GET /api/tags/.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	result, err := h.tagService.List(r.Context(), parsePageRequest(r))
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	resp := PageResponse[TagResponse]{
		Count:   result.Count,
		Results: make([]TagResponse, 0, len(result.Tags)),
	}
	resp.Next, resp.Previous = pageLinks(r, result.Page, result.Count)
	for _, tag := range result.Tags {
		resp.Results = append(resp.Results, tagToResponse(tag))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateTag handles POST /api/tags/.
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}
	if err := shared.ValidateRequest(req, tagCodes); err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	tag, err := h.tagService.Create(r.Context(), req.Name)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tagToResponse(tag))
}

// GetTag handles GET /api/tags/{id}/.
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	_, tagID, ok := handleUserIDAndPathUUID(w, r, "id", h.errors)
	if !ok {
		return
	}

	tag, err := h.tagService.Get(r.Context(), tagID)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tagToResponse(tag))
}

// DeleteTag handles DELETE /api/tags/{id}/. Links to tasks are removed with it.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	_, tagID, ok := handleUserIDAndPathUUID(w, r, "id", h.errors)
	if !ok {
		return
	}

	if err := h.tagService.Delete(r.Context(), tagID); err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	h.logger.Info("tag deleted", slog.String("tag_id", tagID.String()))
	shared.RespondWithNoContent(w)
}
