package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"marquee/models"
	"marquee/services/trailers"
)

// maxBatchTitles caps a single batch request.
const maxBatchTitles = 50

type trailerResolver interface {
	Resolve(ctx context.Context, title models.Title) models.TrailerState
	ResolveMany(ctx context.Context, titles []models.Title) []models.TrailerState
}

var _ trailerResolver = (*trailers.Service)(nil)

type TrailersHandler struct {
	resolver trailerResolver
}

func NewTrailersHandler(resolver trailerResolver) *TrailersHandler {
	return &TrailersHandler{resolver: resolver}
}

// Get handles GET /api/trailers?title=&releaseDate=&id=
// The lookup outcome, including failures, is carried in the state body.
func (h *TrailersHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("title"))
	if name == "" {
		writeJSONError(w, "title is required", http.StatusBadRequest)
		return
	}

	title := models.Title{Title: name, ReleaseDate: strings.TrimSpace(q.Get("releaseDate"))}
	if raw := strings.TrimSpace(q.Get("id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSONError(w, "invalid title id", http.StatusBadRequest)
			return
		}
		title.ID = id
	}

	writeJSON(w, http.StatusOK, h.resolver.Resolve(r.Context(), title))
}

// Batch handles POST /api/trailers/batch with a JSON array of titles.
func (h *TrailersHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var titles []models.Title
	if err := json.NewDecoder(r.Body).Decode(&titles); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(titles) > maxBatchTitles {
		writeJSONError(w, "too many titles", http.StatusBadRequest)
		return
	}
	if len(titles) == 0 {
		writeJSON(w, http.StatusOK, []models.TrailerState{})
		return
	}

	writeJSON(w, http.StatusOK, h.resolver.ResolveMany(r.Context(), titles))
}
