package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"marquee/models"
	"marquee/services/favorites"
)

type favoritesStore interface {
	Contains(id int64) bool
	List() []models.Title
	Add(title models.Title) bool
	Remove(title models.Title) bool
	Toggle(title models.Title) bool
	RemoveByID(id int64) bool
	Clear() bool
	Watch(ctx context.Context) <-chan []models.Title
}

var _ favoritesStore = (*favorites.Store)(nil)

const (
	addedToFavorites     = "Added to favorites"
	removedFromFavorites = "Removed from favorites"
)

type FavoritesHandler struct {
	store favoritesStore
}

func NewFavoritesHandler(store favoritesStore) *FavoritesHandler {
	return &FavoritesHandler{store: store}
}

type favoriteStatus struct {
	ID       int64  `json:"id,omitempty"`
	Favorite bool   `json:"favorite"`
	Message  string `json:"message,omitempty"`
}

type favoritesResponse struct {
	Favorite  bool           `json:"favorite"`
	Favorites []models.Title `json:"favorites"`
}

// List handles GET /api/favorites. An optional q narrows the list to titles
// whose name fuzzily contains it; order is preserved.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.store.List()
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		items = lo.Filter(items, func(t models.Title, _ int) bool {
			return fuzzy.MatchNormalizedFold(q, t.DisplayName()) || fuzzy.MatchNormalizedFold(q, t.Title)
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/favorites
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	title, ok := decodeTitle(w, r)
	if !ok {
		return
	}
	h.store.Add(title)
	writeJSON(w, http.StatusOK, favoritesResponse{Favorite: true, Favorites: h.store.List()})
}

// Status handles GET /api/favorites/{id}
func (h *FavoritesHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := titleIDFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{ID: id, Favorite: h.store.Contains(id)})
}

// Remove handles DELETE /api/favorites/{id}. Removing an absent id is a no-op.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := titleIDFromPath(w, r)
	if !ok {
		return
	}
	h.store.RemoveByID(id)
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/favorites
func (h *FavoritesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /api/favorites/toggle, the detail screen's heart button.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	title, ok := decodeTitle(w, r)
	if !ok {
		return
	}

	if h.store.Toggle(title) {
		writeJSON(w, http.StatusOK, favoriteStatus{ID: title.ID, Favorite: true, Message: addedToFavorites})
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{ID: title.ID, Favorite: false, Message: removedFromFavorites})
}

// Events handles GET /api/favorites/events as a server-sent event stream.
// The first event is the current list; each change sends the new list.
func (h *FavoritesHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range h.store.Watch(r.Context()) {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			log.Printf("[favorites] encode event: %v", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: favorites\ndata: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

func decodeTitle(w http.ResponseWriter, r *http.Request) (models.Title, bool) {
	var title models.Title
	if err := json.NewDecoder(r.Body).Decode(&title); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return models.Title{}, false
	}
	if title.ID == 0 {
		writeJSONError(w, "title id is required", http.StatusBadRequest)
		return models.Title{}, false
	}
	return title, true
}

func titleIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	if raw == "" {
		writeJSONError(w, "title id is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSONError(w, "invalid title id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
