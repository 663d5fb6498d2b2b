package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/itchan-dev/mboard/shared/api"
	"github.com/itchan-dev/mboard/shared/logger"
	"github.com/itchan-dev/mboard/shared/utils"
)

const readyTimeout = 2 * time.Second

// Health reports that the process is serving. It never touches storage.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, api.HealthResponse{Status: "ok"})
}

// Ready pings storage directly, outside the guard.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(api.HealthResponse{Status: "unavailable", Storage: "unreachable"})
		return
	}

	utils.WriteJSON(w, api.HealthResponse{Status: "ok", Storage: "ok"})
}
