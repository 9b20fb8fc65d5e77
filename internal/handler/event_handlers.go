package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mtlprog/planner/internal/middleware"
)

const eventStreamKeepAlive = 25 * time.Second

// handleEvents streams tasks-changed events as Server-Sent Events.
// @Summary Stream task changes
// @Description Server-Sent Events stream of tasks-changed notifications for the caller's hotel group. Mobile users receive only events addressed to them.
// @Tags events
// @Produce text/event-stream
// @Success 200 {object} notify.TasksChanged
// @Security BearerAuth
// @Router /v1/events [get]
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("cannot clear write deadline for event stream", "error", err)
	}

	events, unsubscribe := h.bus.Subscribe(user.HotelGroupID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		slog.Error("event stream does not support flushing", "error", err)
		return
	}

	slog.Debug("event stream opened", "user_id", user.ID, "tenant_id", user.HotelGroupID)
	defer slog.Debug("event stream closed", "user_id", user.ID, "tenant_id", user.HotelGroupID)

	keepAlive := time.NewTicker(eventStreamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
		case event, ok := <-events:
			if !ok {
				return
			}
			if !user.IsAdmin() && !event.Concerns(user.ID) {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("failed to encode event", "event_id", event.ID, "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: tasks-changed\ndata: %s\n\n", event.ID, data)
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}
