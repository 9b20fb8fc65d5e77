package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/planner/docs" // Register API docs
	"github.com/mtlprog/planner/internal/handler/dto"
	"github.com/mtlprog/planner/internal/metrics"
	"github.com/mtlprog/planner/internal/middleware"
	"github.com/mtlprog/planner/internal/notify"
	"github.com/mtlprog/planner/internal/repository"
	"github.com/mtlprog/planner/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool           *pgxpool.Pool
	coordinator    *service.Coordinator
	taskRepo       *repository.TaskRepository
	bus            *notify.Bus
	authMiddleware *middleware.AuthMiddleware
}

// New creates a new Handler. The bus feeds the event stream and should be
// one of the coordinator's notification publishers.
func New(pool *pgxpool.Pool, coordinator *service.Coordinator, bus *notify.Bus) *Handler {
	return &Handler{
		pool:           pool,
		coordinator:    coordinator,
		taskRepo:       repository.NewTaskRepository(pool),
		bus:            bus,
		authMiddleware: middleware.NewAuthMiddleware(repository.NewUserRepository(pool)),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Mobile API
	mux.Handle("POST /api/mobile/v1/tasks/status", h.authenticated(h.handleUpdateTaskStatus))
	mux.Handle("GET /api/mobile/v1/tasks", h.authenticated(h.handleListMyTasks))

	// Back-office API
	mux.Handle("GET /api/v1/tasks", h.admin(h.handleListTasks))
	mux.Handle("GET /api/v1/tasks/{id}", h.authenticated(h.handleGetTask))
	mux.Handle("POST /api/v1/tasks/{id}/cancel", h.admin(h.handleCancelTask))
	mux.Handle("POST /api/v1/task-configurations/{id}/cancel", h.admin(h.handleCancelConfiguration))
	mux.Handle("GET /api/v1/task-configurations/{id}/summary", h.admin(h.handleConfigurationSummary))
	mux.Handle("GET /api/v1/events", h.authenticated(h.handleEvents))
}

func (h *Handler) authenticated(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

func (h *Handler) admin(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(h.authMiddleware.RequireAdmin(fn))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err with dto.MapDomainError.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// validUUID reports whether id parses as a UUID, answering 400 when it does not.
func validUUID(w http.ResponseWriter, name, id string) bool {
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" is required")
		return false
	}
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a valid UUID")
		return false
	}
	return true
}

// extractID extracts and validates the {id} path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue("id")
	if !validUUID(w, name, id) {
		return "", false
	}
	return id, true
}
