package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"marquee/config"
)

type cacheClearer interface {
	ClearCache() error
}

// metadataReloader is the part of the metadata service that settings can
// refresh without a restart.
type metadataReloader interface {
	cacheClearer
	UpdateAPIKeys(tmdbKey, youtubeKey, language, region string)
}

type SettingsHandler struct {
	Manager         *config.Manager
	MetadataService metadataReloader
	PosterCache     cacheClearer
}

func NewSettingsHandler(m *config.Manager) *SettingsHandler {
	return &SettingsHandler{Manager: m}
}

// SetMetadataService sets the metadata service for hot reloading API keys
func (h *SettingsHandler) SetMetadataService(ms metadataReloader) {
	h.MetadataService = ms
}

// SetPosterCache sets the poster proxy whose disk cache is cleared alongside metadata.
func (h *SettingsHandler) SetPosterCache(pc cacheClearer) {
	h.PosterCache = pc
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Manager.Load()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var s config.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Manager.Save(s); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.reloadServices(s)
	writeJSON(w, http.StatusOK, s)
}

// reloadServices pushes settings that are read at startup into running services.
// Server, cache and favorites backend changes still need a restart.
func (h *SettingsHandler) reloadServices(s config.Settings) {
	if h.MetadataService != nil {
		h.MetadataService.UpdateAPIKeys(s.Metadata.TMDBAPIKey, s.Metadata.YouTubeAPIKey, s.Metadata.Language, s.Metadata.Region)
		log.Printf("[settings] reloaded metadata service API keys")
	}
}

// ClearCache drops the cached trending list and every proxied poster.
func (h *SettingsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if h.MetadataService == nil && h.PosterCache == nil {
		writeJSONError(w, "no caches available", http.StatusInternalServerError)
		return
	}
	if h.MetadataService != nil {
		if err := h.MetadataService.ClearCache(); err != nil {
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if h.PosterCache != nil {
		if err := h.PosterCache.ClearCache(); err != nil {
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	log.Printf("[settings] caches cleared by user request")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Caches cleared"})
}
