package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mtlprog/planner/internal/domain"
	"github.com/mtlprog/planner/internal/handler/dto"
	"github.com/mtlprog/planner/internal/middleware"
	"github.com/mtlprog/planner/internal/repository"
	"github.com/mtlprog/planner/internal/service"
)

// handleUpdateTaskStatus applies a status token sent by the mobile app.
// @Summary Update task status
// @Description Moves a task to the status named by the token (resume, resumed, started, claimed, rejected, paused, completed, cancelled). Claiming an exclusive task marks siblings on the same room, warehouse or reservation as claimed by someone else.
// @Tags mobile
// @Accept json
// @Produce json
// @Param request body dto.UpdateTaskStatusRequest true "Status update"
// @Success 200 {object} dto.SimpleProcessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /mobile/v1/tasks/status [post]
func (h *Handler) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !validUUID(w, "taskId", req.TaskID) {
		return
	}

	_, err = h.coordinator.UpdateStatus(ctx, service.UpdateStatusParams{
		TaskID:       req.TaskID,
		Status:       req.Status,
		ActingUserID: user.ID,
		TenantID:     user.HotelGroupID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			slog.Info("status update for unknown task",
				"task_id", req.TaskID,
				"hotel_id", req.HotelID,
				"user_id", user.ID,
			)
			respondJSON(w, http.StatusOK, dto.SimpleProcessResponse{Success: false})
			return
		}
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.SimpleProcessResponse{Success: true})
}

// handleCancelTask cancels a single task.
// @Summary Cancel task
// @Description Cancels a task whatever its current status. A missing task is reported in the body, not as 404.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.ProcessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/tasks/{id}/cancel [post]
func (h *Handler) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "task id")
	if !ok {
		return
	}

	_, err = h.coordinator.CancelTask(ctx, service.CancelTaskParams{
		TaskID:       taskID,
		ActingUserID: user.ID,
		TenantID:     user.HotelGroupID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			respondJSON(w, http.StatusOK, dto.NewProcessFailure(dto.MessageTaskNotFound))
			return
		}
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProcessSuccess(dto.MessageTaskCancelled, 1))
}

// handleCancelConfiguration cancels every open task of a configuration.
// @Summary Cancel configuration tasks
// @Description Cancels all tasks of the configuration that are not finished, cancelled or rejected.
// @Tags task-configurations
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} dto.ProcessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/task-configurations/{id}/cancel [post]
func (h *Handler) handleCancelConfiguration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	configurationID, ok := extractID(w, r, "configuration id")
	if !ok {
		return
	}

	change, err := h.coordinator.CancelTasksByConfiguration(ctx, service.CancelConfigurationParams{
		ConfigurationID: configurationID,
		ActingUserID:    user.ID,
		TenantID:        user.HotelGroupID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationNotFound) {
			respondJSON(w, http.StatusOK, dto.NewProcessFailure(dto.MessageConfigurationNotFound))
			return
		}
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProcessSuccess(dto.MessageTasksCancelled, len(change.Siblings)))
}

// handleGetTask retrieves a task with its audit trail.
// @Summary Get task details
// @Description Get a task with its actions and history. Mobile users only see tasks assigned to them.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r, "task id")
	if !ok {
		return
	}

	task, histories, err := h.coordinator.History(ctx, user.HotelGroupID, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if !user.IsAdmin() && !task.IsAssignedTo(user.ID) {
		respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found")
		return
	}

	response := dto.TaskDetailResponse{
		Task:    dto.ToTaskDetail(task),
		History: make([]dto.TaskHistoryInfo, len(histories)),
	}
	for i, history := range histories {
		response.History[i] = dto.ToTaskHistoryInfo(history)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleListTasks returns the tenant's tasks with filters.
// @Summary List tasks
// @Description Get a page of tasks, most recently modified first
// @Tags tasks
// @Produce json
// @Param status query string false "Comma-separated statuses: WAITING,STARTED"
// @Param user_id query string false "Filter by assignee UUID"
// @Param configuration_id query string false "Filter by configuration UUID"
// @Param hotel_id query string false "Filter by hotel"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /v1/tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	h.listTasks(w, r, user.HotelGroupID, parseListFilters(r.URL.Query()))
}

// handleListMyTasks returns the tasks assigned to the caller.
// @Summary List my tasks
// @Description Get a page of the caller's tasks, most recently modified first
// @Tags mobile
// @Produce json
// @Param status query string false "Comma-separated statuses: WAITING,STARTED"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /mobile/v1/tasks [get]
func (h *Handler) handleListMyTasks(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	filters := parseListFilters(r.URL.Query())
	filters.UserID = &user.ID
	filters.ConfigurationID = nil
	filters.HotelID = nil

	h.listTasks(w, r, user.HotelGroupID, filters)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request, tenantID string, filters dto.ListTasksFilters) {
	for _, status := range filters.Status {
		if !domain.TaskStatus(status).IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status: "+status)
			return
		}
	}

	results, total, err := h.taskRepo.List(r.Context(), repository.TaskListFilters{
		HotelGroupID:    tenantID,
		Statuses:        filters.Status,
		UserID:          filters.UserID,
		ConfigurationID: filters.ConfigurationID,
		HotelID:         filters.HotelID,
		Limit:           filters.Limit,
		Offset:          filters.Offset,
	})
	if err != nil {
		slog.Error("failed to list tasks", "tenant_id", tenantID, "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tasks")
		return
	}

	tasks := make([]dto.TaskDetail, len(results))
	for i, task := range results {
		tasks[i] = dto.ToTaskDetail(task)
	}

	respondJSON(w, http.StatusOK, dto.TasksListResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// parseListFilters reads list query parameters, falling back to defaults on bad input.
func parseListFilters(query url.Values) dto.ListTasksFilters {
	filters := dto.ListTasksFilters{Limit: 50}

	if statusParam := query.Get("status"); statusParam != "" {
		filters.Status = splitAndTrim(statusParam, ",")
	}
	if userID := query.Get("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if configurationID := query.Get("configuration_id"); configurationID != "" {
		filters.ConfigurationID = &configurationID
	}
	if hotelID := query.Get("hotel_id"); hotelID != "" {
		filters.HotelID = &hotelID
	}

	if limitParam := query.Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 200 {
			filters.Limit = n
		}
	}
	if offsetParam := query.Get("offset"); offsetParam != "" {
		if n, err := strconv.Atoi(offsetParam); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	return filters
}

// splitAndTrim splits a string and trims whitespace from each part.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, strings.ToUpper(trimmed))
		}
	}
	return result
}
