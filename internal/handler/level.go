package handler

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jharjadi/jdgen/internal/model"
	"github.com/jharjadi/jdgen/internal/service"
)

// LevelHandler handles POST /v1/level requests.
type LevelHandler struct {
	svc JDService
}

// NewLevelHandler creates a new LevelHandler.
func NewLevelHandler(svc JDService) *LevelHandler {
	return &LevelHandler{svc: svc}
}

// Handle selects and assembles leveling guides for the target level and
// returns the re-leveling prompt, plus the leveled text when an LLM is
// configured.
func (h *LevelHandler) Handle(w http.ResponseWriter, r *http.Request) {
	totalStart := time.Now()
	requestID := chimw.GetReqID(r.Context())

	var req model.LevelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, llog, err := h.svc.Level(r.Context(), req)
	if llog == nil {
		llog = &model.LevelingLog{Timestamp: time.Now().UTC()}
	}
	llog.RequestID = requestID
	if err != nil {
		status := writeServiceError(w, err, requestID)
		service.EmitLevelingLog(llog, status, totalStart)
		return
	}

	writeJSON(w, http.StatusOK, resp)
	service.EmitLevelingLog(llog, http.StatusOK, totalStart)
}
