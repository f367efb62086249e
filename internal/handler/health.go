package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jharjadi/jdgen/internal/guides"
	"github.com/jharjadi/jdgen/internal/model"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and service information.
type HealthHandler struct {
	db      Pinger
	guides  *guides.Store
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, store *guides.Store, version string) *HealthHandler {
	return &HealthHandler{db: db, guides: store, version: version}
}

// Health handles GET /health. The database must answer a ping; an empty
// guide set is reported but is not unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := model.HealthResponse{Status: "ok", DB: "ok", Guides: h.guides.Current().Len()}
	if err := h.db.Ping(r.Context()); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		resp.Status, resp.DB = "unhealthy", "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Root handles GET / with a short service description.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "jdgen",
		"version": h.version,
		"docs":    "POST /v1/generate, POST /v1/level, GET /v1/guides",
	})
}
