package handler

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jharjadi/jdgen/internal/model"
	"github.com/jharjadi/jdgen/internal/service"
)

// JDService is the pipeline behind the generation, leveling and ingest
// endpoints. *service.Pipeline implements it.
type JDService interface {
	Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, *model.GenerationLog, error)
	Level(ctx context.Context, req model.LevelRequest) (*model.LevelResponse, *model.LevelingLog, error)
	Ingest(ctx context.Context, req model.IngestRequest) (model.Chunk, error)
}

// GenerateHandler handles POST /v1/generate requests.
type GenerateHandler struct {
	svc JDService
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(svc JDService) *GenerateHandler {
	return &GenerateHandler{svc: svc}
}

// Handle runs the generation pipeline: embed query → retrieve (vec+FTS
// parallel) → RRF merge → rerank → similarity floor → example budget →
// leveling guidance → prompt → LLM → citations → extraction draft.
func (h *GenerateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	totalStart := time.Now()
	requestID := chimw.GetReqID(r.Context())

	var req model.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, glog, err := h.svc.Generate(r.Context(), req)
	if glog == nil {
		glog = &model.GenerationLog{Timestamp: time.Now().UTC()}
	}
	glog.RequestID = requestID
	if err != nil {
		status := writeServiceError(w, err, requestID)
		service.EmitGenerationLog(glog, status, totalStart)
		return
	}

	writeJSON(w, http.StatusOK, resp)
	service.EmitGenerationLog(glog, http.StatusOK, totalStart)
}
