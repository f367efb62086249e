package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jharjadi/jdgen/internal/guides"
	"github.com/jharjadi/jdgen/internal/model"
)

// GuideHandler exposes the loaded leveling guides.
type GuideHandler struct {
	store *guides.Store
}

// NewGuideHandler creates a new GuideHandler.
func NewGuideHandler(store *guides.Store) *GuideHandler {
	return &GuideHandler{store: store}
}

// guideResponse is the GET /v1/guides/{id} response body.
type guideResponse struct {
	model.GuideInfo
	Content string `json:"content"`
}

// List handles GET /v1/guides
func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.GuideListResponse{Guides: h.store.Current().Info()})
}

// Get handles GET /v1/guides/{id}. Identifiers outside [a-z0-9_-] are
// rejected without echoing them back.
func (h *GuideHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok, err := h.store.Current().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, chimw.GetReqID(r.Context()))
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "guide not found")
		return
	}

	writeJSON(w, http.StatusOK, guideResponse{
		GuideInfo: model.GuideInfo{
			ID:           doc.ID,
			Title:        doc.Title,
			Summary:      doc.Summary,
			Bytes:        doc.ByteLength,
			Truncated:    doc.Truncated,
			OriginalSize: doc.OriginalSize,
		},
		Content: doc.Content,
	})
}
