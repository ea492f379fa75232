package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"tarefas/internal/model"
	"tarefas/internal/service"
)

var validate = validator.New()

// Authenticator is the slice of the upstream client the auth handler needs
type Authenticator interface {
	Authenticate(ctx context.Context, id, password string) (*model.UserInfo, error)
}

// AuthHandler handles the login endpoint
type AuthHandler struct {
	upstream Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(upstream Authenticator) *AuthHandler {
	return &AuthHandler{upstream: upstream}
}

// Login handles POST /auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, password := req.Credentials()
	if id == "" || password == "" {
		writeError(w, http.StatusBadRequest, "ra and password are required")
		return
	}

	info, err := h.upstream.Authenticate(r.Context(), id, password)
	if err != nil {
		var ue *service.UpstreamError
		if errors.As(err, &ue) {
			// Upstream rejections pass through with their own status
			writeJSON(w, ue.Status, map[string]any{
				"success": false,
				"message": "login rejected",
				"detail":  ue.Body,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{
		Success:   true,
		UserInfo:  *info,
		AuthToken: info.AuthToken,
		Nick:      info.Nick,
	})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
