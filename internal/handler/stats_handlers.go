package handler

import (
	"net/http"

	"github.com/mtlprog/planner/internal/handler/dto"
	"github.com/mtlprog/planner/internal/middleware"
)

// handleConfigurationSummary counts a configuration's tasks by status.
// @Summary Configuration summary
// @Description Count the configuration's tasks by status, with the number still open
// @Tags task-configurations
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} dto.ConfigurationSummaryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /v1/task-configurations/{id}/summary [get]
func (h *Handler) handleConfigurationSummary(w http.ResponseWriter, r *http.Request) {
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

	exists, err := h.taskRepo.ConfigurationExists(ctx, h.pool, user.HotelGroupID, configurationID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch configuration")
		return
	}
	if !exists {
		respondError(w, http.StatusNotFound, "CONFIGURATION_NOT_FOUND", "task configuration not found")
		return
	}

	counts, err := h.taskRepo.CountByStatus(ctx, user.HotelGroupID, configurationID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch task counts")
		return
	}

	respondJSON(w, http.StatusOK, dto.ToConfigurationSummary(configurationID, counts))
}
