package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"marquee/api"
	"marquee/config"
	"marquee/handlers"
	"marquee/models"
	"marquee/services/favorites"
	"marquee/services/trailers"
	"marquee/utils"
)

type stubGateway struct{}

func (stubGateway) FetchTrending(context.Context) ([]models.Title, error) {
	return []models.Title{{ID: 1, Title: "Alien"}}, nil
}

func (stubGateway) SearchTitles(context.Context, string) ([]models.Title, error) {
	return []models.Title{}, nil
}

func (stubGateway) FetchVideoMetadata(context.Context, string) (models.VideoRef, error) {
	return models.VideoRef{}, nil
}

func newTestRouter(t *testing.T, store *favorites.Store) http.Handler {
	t.Helper()
	posters := handlers.NewPosterHandler(afero.NewMemMapFs(), "/cache", nil)
	settings := handlers.NewSettingsHandler(config.NewManager(filepath.Join(t.TempDir(), "settings.json")))
	settings.SetPosterCache(posters)

	r := utils.NewRouter()
	api.Register(
		r,
		handlers.NewMetadataHandler(stubGateway{}),
		handlers.NewFavoritesHandler(store),
		handlers.NewTrailersHandler(trailers.NewService(stubGateway{}, 1)),
		posters,
		settings,
	)
	return r
}

func TestRoutes(t *testing.T) {
	store := favorites.NewStore()
	router := newTestRouter(t, store)

	payload, _ := json.Marshal(models.Title{ID: 42, Title: "Heat"})

	cases := []struct {
		method string
		target string
		body   []byte
		want   int
	}{
		{http.MethodGet, "/health", nil, http.StatusOK},
		{http.MethodGet, "/api/trending", nil, http.StatusOK},
		{http.MethodGet, "/api/search?q=alien", nil, http.StatusOK},
		{http.MethodGet, "/api/trailers?title=Alien", nil, http.StatusOK},
		{http.MethodPost, "/api/favorites", payload, http.StatusOK},
		{http.MethodGet, "/api/favorites/42", nil, http.StatusOK},
		{http.MethodPost, "/api/favorites/toggle", payload, http.StatusOK},
		{http.MethodDelete, "/api/favorites/42", nil, http.StatusNoContent},
		{http.MethodDelete, "/api/favorites", nil, http.StatusNoContent},
		{http.MethodGet, "/api/favorites", nil, http.StatusOK},
		{http.MethodOptions, "/api/favorites", nil, http.StatusOK},
		{http.MethodGet, "/api/posters/w9999/x.jpg", nil, http.StatusBadRequest},
		{http.MethodGet, "/api/settings", nil, http.StatusOK},
		{http.MethodPost, "/api/settings/cache/clear", nil, http.StatusOK},
		{http.MethodOptions, "/api/settings", nil, http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, bytes.NewReader(tc.body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected status %d, got %d", tc.method, tc.target, tc.want, rec.Code)
		}
	}

	if store.Len() != 0 {
		t.Fatalf("expected favorites to be empty after clear, got %d", store.Len())
	}
}

func TestRoutesSetCORSHeaders(t *testing.T) {
	router := newTestRouter(t, favorites.NewStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/favorites", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}
