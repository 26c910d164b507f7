package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/service"
)

// Task list filters.
const (
	stateParam          = "state"
	expirationDateParam = "expiration_date"
	tagsParam           = "tags"
)

// TaskHandler serves the task endpoints. Every operation is scoped to the
// authenticated caller.
type TaskHandler struct {
	taskService service.TaskService
	errors      *ErrorResponder
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, errors *ErrorResponder, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		errors:      errors,
		logger:      logger.With("component", "task_handler"),
	}
}

// ListTasks handles GET /api/tasks/.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		h.errors.HandleAPIError(w, r, domain.ErrUnauthorized)
		return
	}

	query := r.URL.Query()
	filter := domain.NewTaskFilter(query.Get(stateParam), query.Get(expirationDateParam), query[tagsParam])
	page := parsePageRequest(r)

	result, err := h.taskService.List(r.Context(), userID, filter, page)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	resp := PageResponse[TaskResponse]{
		Count:   result.Count,
		Results: make([]TaskResponse, 0, len(result.Tasks)),
	}
	resp.Next, resp.Previous = pageLinks(r, result.Page, result.Count)
	for _, task := range result.Tasks {
		resp.Results = append(resp.Results, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateTask handles POST /api/tasks/. The task is owned by the caller
// regardless of the payload.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		h.errors.HandleAPIError(w, r, domain.ErrUnauthorized)
		return
	}

	var req TaskRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	h.log(r).Info("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id}/.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.errors)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id}/, a full replacement.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.errors)
	if !ok {
		return
	}

	var req TaskRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, req.ToInput())
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// PatchTask handles PATCH /api/tasks/{id}/. Only the fields present in the
// payload change.
func (h *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.errors)
	if !ok {
		return
	}

	var req TaskRequest
	if err := decodeBody(r, &req); err != nil {
		respondInvalidBody(w, r, h.errors, err)
		return
	}

	task, err := h.taskService.Patch(r.Context(), userID, taskID, req.ToPatch())
	if err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}/. Subtasks go with their parent.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", h.errors)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		h.errors.HandleAPIError(w, r, err)
		return
	}

	h.log(r).Info("task deleted", slog.String("task_id", taskID.String()))
	shared.RespondWithNoContent(w)
}

func (h *TaskHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
