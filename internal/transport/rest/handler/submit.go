package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tarefas/internal/model"
)

// Submitter is the slice of the submit service the handlers need
type Submitter interface {
	ProcessTask(ctx context.Context, token string, ref model.TaskRef, pacing model.Pacing) model.TaskOutcome
	CompleteBatch(ctx context.Context, token string, refs []model.TaskRef, pacing model.Pacing) []model.TaskOutcome
}

// SubmitHandler handles single and batch submission endpoints
type SubmitHandler struct {
	submit   Submitter
	defaults model.Pacing
}

// NewSubmitHandler creates a new submission handler. defaults fills in
// the pacing bounds when the request omits them.
func NewSubmitHandler(submit Submitter, defaults model.Pacing) *SubmitHandler {
	return &SubmitHandler{submit: submit, defaults: defaults}
}

// ProcessRequest is the request body for POST /task/process
type ProcessRequest struct {
	AuthToken string        `json:"auth_token" validate:"required"`
	Task      model.TaskRef `json:"task" validate:"required"`
	TimeMin   int           `json:"time_min"`
	TimeMax   int           `json:"time_max"`
	IsDraft   bool          `json:"is_draft"`
}

// CompleteRequest is the request body for POST /complete
type CompleteRequest struct {
	AuthToken string          `json:"auth_token" validate:"required"`
	Tasks     []model.TaskRef `json:"tasks" validate:"required,min=1"`
	TimeMin   int             `json:"time_min"`
	TimeMax   int             `json:"time_max"`
	IsDraft   bool            `json:"is_draft"`
}

// CompleteResponse aggregates one outcome per submitted task
type CompleteResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Results []model.TaskOutcome `json:"results"`
}

// Process handles POST /task/process. The outcome is returned with 200
// whether the submission succeeded or not; failures are data, not errors.
func (h *SubmitHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "auth_token and task are required")
		return
	}

	outcome := h.submit.ProcessTask(r.Context(), req.AuthToken, req.Task, h.pacing(req.TimeMin, req.TimeMax, req.IsDraft))
	writeJSON(w, http.StatusOK, outcome)
}

// Complete handles POST /complete
func (h *SubmitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "auth_token and tasks are required")
		return
	}

	results := h.submit.CompleteBatch(r.Context(), req.AuthToken, req.Tasks, h.pacing(req.TimeMin, req.TimeMax, req.IsDraft))
	writeJSON(w, http.StatusOK, CompleteResponse{
		Success: true,
		Message: fmt.Sprintf("processed %d tasks", len(req.Tasks)),
		Results: results,
	})
}

func (h *SubmitHandler) pacing(timeMin, timeMax int, isDraft bool) model.Pacing {
	if timeMin == 0 {
		timeMin = h.defaults.TimeMin
	}
	if timeMax == 0 {
		timeMax = h.defaults.TimeMax
	}
	return model.Pacing{TimeMin: timeMin, TimeMax: timeMax, IsDraft: isDraft}
}
