package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/qr-menu/internal/service"
)

// SnapshotSource exposes the cached menu without triggering a rebuild
type SnapshotSource interface {
	Current() *service.Snapshot
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	menus  SnapshotSource
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(menus SnapshotSource, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		menus:  menus,
		logger: logger,
	}
}

// HealthResponse represents the health check response.
// Menu is "ready" when a snapshot is cached and "pending" otherwise; the
// service stays healthy either way since the next page load rebuilds it.
type HealthResponse struct {
	Status     string     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	Version    string     `json:"version"`
	Menu       string     `json:"menu"`
	SnapshotID string     `json:"snapshotId,omitempty"`
	BuiltAt    *time.Time `json:"builtAt,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Menu:      "pending",
	}

	if snap := h.menus.Current(); snap != nil {
		builtAt := snap.BuiltAt.UTC()
		response.Menu = "ready"
		response.SnapshotID = snap.ID
		response.BuiltAt = &builtAt
	}

	WriteJSON(w, http.StatusOK, response, h.logger)
}
