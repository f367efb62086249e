package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	authmw "github.com/jharjadi/jdgen/internal/middleware"
	"github.com/jharjadi/jdgen/internal/model"
	"github.com/jharjadi/jdgen/internal/service"
)

// ChunkHandler handles example corpus management endpoints.
type ChunkHandler struct {
	store service.ChunkStore
}

// NewChunkHandler creates a new ChunkHandler.
func NewChunkHandler(store service.ChunkStore) *ChunkHandler {
	return &ChunkHandler{store: store}
}

// List handles GET /v1/chunks?page=1&limit=20
func (h *ChunkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pg := model.DefaultPagination(page, limit)

	chunks, total, err := h.store.List(r.Context(), pg)
	if err != nil {
		writeServiceError(w, err, chimw.GetReqID(r.Context()))
		return
	}

	writeJSON(w, http.StatusOK, model.ChunkListResponse{
		Chunks: model.Summarize(chunks),
		Total:  total,
		Page:   pg.Page,
		Limit:  pg.Limit,
	})
}

// Get handles GET /v1/chunks/{id}
func (h *ChunkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := chunkID(w, r)
	if !ok {
		return
	}

	chunk, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, chimw.GetReqID(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, model.Summarize([]model.Chunk{chunk})[0])
}

// Delete handles DELETE /v1/chunks/{id}. Admin only.
func (h *ChunkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := chunkID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, chimw.GetReqID(r.Context()))
		return
	}

	slog.Info("chunk deleted",
		"event", "chunk_deleted",
		"chunk_id", id,
		"subject", authmw.SubjectFromContext(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func chunkID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id must be a UUID")
		return "", false
	}
	return id, true
}
