package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type heartbeatTracker interface {
	Touch()
	LastSeen() time.Time
}

type HeartbeatHandler struct {
	tracker heartbeatTracker
}

func NewHeartbeatHandler(tr heartbeatTracker) *HeartbeatHandler {
	return &HeartbeatHandler{tracker: tr}
}

func (h *HeartbeatHandler) RegisterRoutes(r chi.Router) {
	r.Get("/heartbeat/poop", h.Heartbeat)
}

// Heartbeat records that the monitored agent is alive. It never fails and
// does not check who is calling.
func (h *HeartbeatHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	h.tracker.Touch()
	slog.Info("heartbeat received",
		"at", h.tracker.LastSeen(),
		"remote_addr", r.RemoteAddr,
		"request_id", r.Header.Get("X-Request-ID"),
	)
	writeText(w, http.StatusOK, "OK")
}
