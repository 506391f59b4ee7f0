package handlers

import (
	"net/http"

	"marquee/services/metadata"
)

var _ metadata.Gateway = (*metadata.Service)(nil)

type MetadataHandler struct {
	Gateway metadata.Gateway
}

func NewMetadataHandler(g metadata.Gateway) *MetadataHandler {
	return &MetadataHandler{Gateway: g}
}

// Trending handles GET /api/trending
func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	titles, err := metadata.TrendingAsync(r.Context(), h.Gateway).Collect()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

// Search handles GET /api/search?q=
func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	titles, err := metadata.SearchAsync(r.Context(), h.Gateway, q).Collect()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (h *MetadataHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
