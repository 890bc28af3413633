package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pitstop-service/internal/ports"
)

const pingTimeout = 2 * time.Second

// Root answers with a plain-text banner so a browser hit shows the service is up.
func Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("PitStop backend is running\n"))
}

// HealthHandler reports readiness, including store connectivity when the
// store supports it.
type HealthHandler struct {
	Store ports.RestroomStore
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	pinger, ok := h.Store.(ports.Pinger)
	if !ok {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		zap.L().Warn("store ping failed", zap.String("component", "api.health"), zap.Error(err))
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "store": "down"})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "store": "up"})
}
