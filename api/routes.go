package api

import (
	"net/http"

	"marquee/handlers"

	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	metadataHandler *handlers.MetadataHandler,
	favoritesHandler *handlers.FavoritesHandler,
	trailersHandler *handlers.TrailersHandler,
	posterHandler *handlers.PosterHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Content discovery
	api.HandleFunc("/trending", metadataHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/trending", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/search", handleOptions).Methods(http.MethodOptions)

	// Trailers
	api.HandleFunc("/trailers", trailersHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/trailers", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/trailers/batch", trailersHandler.Batch).Methods(http.MethodPost)
	api.HandleFunc("/trailers/batch", handleOptions).Methods(http.MethodOptions)

	// Favorites. Static paths go before /{id}.
	api.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/favorites", favoritesHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/favorites", favoritesHandler.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/favorites", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/favorites/toggle", favoritesHandler.Toggle).Methods(http.MethodPost)
	api.HandleFunc("/favorites/toggle", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/favorites/events", favoritesHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{id}", favoritesHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{id}", favoritesHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/favorites/{id}", handleOptions).Methods(http.MethodOptions)

	// Settings
	api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/settings/cache/clear", settingsHandler.ClearCache).Methods(http.MethodPost)
	api.HandleFunc("/settings/cache/clear", handleOptions).Methods(http.MethodOptions)

	// Poster proxy
	api.HandleFunc("/posters/{size}/{file}", posterHandler.Serve).Methods(http.MethodGet)
	api.HandleFunc("/posters/{size}/{file}", handleOptions).Methods(http.MethodOptions)
}
