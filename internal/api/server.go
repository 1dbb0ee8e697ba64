// Package api implements the notifier's HTTP handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/notifier/internal/service"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server holds all dependencies for the REST API handlers.
type Server struct {
	triggerSvc service.TriggerService
	logger     *slog.Logger
}

// New creates a new API Server backed by the trigger service.
func New(triggerSvc service.TriggerService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{triggerSvc: triggerSvc, logger: logger}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/register", s.handleRegister)
	r.Post("/notify", s.handleNotify)

	r.Get("/triggers", s.handleListTriggers)
	r.Get("/triggers/{name}", s.handleGetTrigger)
	r.Get("/deliveries", s.handleListDeliveries)

	r.Get("/version", s.handleVersion)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes v in the response envelope: under "data" for statuses
// 200 to 399 and under "message" otherwise.
func respond(w http.ResponseWriter, status int, v any) {
	key := "message"
	if status >= http.StatusOK && status < http.StatusBadRequest {
		key = "data"
	}
	writeJSON(w, status, map[string]any{key: v})
}

// respondError writes err with the status and message of its taxonomy type.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := trigger.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	respond(w, status, trigger.Message(err))
}
