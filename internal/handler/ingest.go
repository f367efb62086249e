package handler

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	authmw "github.com/jharjadi/jdgen/internal/middleware"
	"github.com/jharjadi/jdgen/internal/model"
)

// IngestHandler handles POST /v1/ingest: one example job description is
// embedded and stored as a chunk.
type IngestHandler struct {
	svc JDService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(svc JDService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// Ingest handles POST /v1/ingest. Admin only; the router enforces the role.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	requestID := chimw.GetReqID(r.Context())

	var req model.IngestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	chunk, err := h.svc.Ingest(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, requestID)
		return
	}

	slog.Info("chunk ingested",
		"event", "chunk_ingested",
		"chunk_id", chunk.ID,
		"bytes", len(chunk.Content),
		"subject", authmw.SubjectFromContext(r.Context()),
		"request_id", requestID,
	)
	writeJSON(w, http.StatusCreated, model.IngestResponse{
		ChunkID: chunk.ID,
		Result:  "created",
	})
}
