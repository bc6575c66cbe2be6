// Package handler contains the HTTP handlers of the water tracker API.
//
// Handlers decode a typed request record, call one service method and encode
// the result. They hold no business rules.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/water-tracker/internal/repository"
)

const welcomeText = "Welcome to the Water Drinking Tracker API!"

// HomeHandler serves the root greeting and the health check.
type HomeHandler struct {
	store  repository.Pinger
	logger *slog.Logger
}

func NewHomeHandler(store repository.Pinger, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{store: store, logger: logger}
}

// HandleWelcome answers GET / with a plain-text greeting.
func (h *HomeHandler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(welcomeText))
}

// HandleHealth answers GET /health: 200 when the database responds, 503 otherwise.
func (h *HomeHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, FailureResponse{
			Message: "unhealthy",
			Error:   "database unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
