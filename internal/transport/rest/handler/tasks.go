package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"tarefas/internal/model"
)

// TaskLister is the slice of the task service the listing handler needs
type TaskLister interface {
	ListTasks(ctx context.Context, token string, filter model.TaskFilter) ([]json.RawMessage, error)
}

// TasksHandler handles the task listing endpoints
type TasksHandler struct {
	tasks TaskLister
}

// NewTasksHandler creates a new task listing handler
func NewTasksHandler(tasks TaskLister) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// ListRequest is the request body for the task listing endpoints
type ListRequest struct {
	AuthToken string `json:"auth_token" validate:"required"`
	Filter    string `json:"filter" validate:"omitempty,oneof=pending expired"`
}

// ListResponse is the task listing response
type ListResponse struct {
	Success bool              `json:"success"`
	Tasks   []json.RawMessage `json:"tasks"`
	Count   int               `json:"count"`
}

// List handles POST /tasks; the body's filter defaults to pending
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ListPending handles POST /tasks/pending with the filter pinned
func (h *TasksHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.FilterPending)
}

// ListExpired handles POST /tasks/expired with the filter pinned
func (h *TasksHandler) ListExpired(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.FilterExpired)
}

func (h *TasksHandler) list(w http.ResponseWriter, r *http.Request, pinned model.TaskFilter) {
	var req ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "auth_token is required")
		return
	}

	filter := pinned
	if filter == "" {
		filter = model.TaskFilter(req.Filter)
		if filter == "" {
			filter = model.FilterPending
		}
	}

	tasks, err := h.tasks.ListTasks(r.Context(), req.AuthToken, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Tasks:   tasks,
		Count:   len(tasks),
	})
}
