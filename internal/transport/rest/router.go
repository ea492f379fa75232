package rest

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"tarefas/internal/config"
	"tarefas/internal/model"
	"tarefas/internal/service"
	"tarefas/internal/transport/rest/handler"
	"tarefas/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Config        *config.Config
	Upstream      *service.EduspClient
	TaskService   *service.TaskService
	SubmitService *service.SubmitService
	WSHub         *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.Upstream)
	tasksHandler := handler.NewTasksHandler(c.TaskService)
	submitHandler := handler.NewSubmitHandler(c.SubmitService, model.Pacing{
		TimeMin: c.Config.TimeMinDefault,
		TimeMax: c.Config.TimeMaxDefault,
	})
	wsHandler := ws.NewHandler(c.WSHub)

	r.Use(recoverMiddleware)
	r.Use(corsMiddleware(c.Config))

	r.HandleFunc("/auth", authHandler.Login).Methods("POST", "OPTIONS")
	r.HandleFunc("/tasks", tasksHandler.List).Methods("POST", "OPTIONS")
	r.HandleFunc("/tasks/pending", tasksHandler.ListPending).Methods("POST", "OPTIONS")
	r.HandleFunc("/tasks/expired", tasksHandler.ListExpired).Methods("POST", "OPTIONS")
	r.HandleFunc("/task/process", submitHandler.Process).Methods("POST", "OPTIONS")
	r.HandleFunc("/complete", submitHandler.Complete).Methods("POST", "OPTIONS")

	// Batch progress feed (observational only)
	r.HandleFunc("/ws/progress", wsHandler.ProgressWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.CORSAllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.CORSAllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// recoverMiddleware turns any uncaught handler fault into a 500 JSON
// response instead of crashing the server.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": fmt.Sprint(rec),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
