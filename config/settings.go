package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FavoritesBackend selects where the favorites list is persisted.
type FavoritesBackend string

const (
	FavoritesBackendMemory FavoritesBackend = "memory"
	FavoritesBackendJSON   FavoritesBackend = "json"
	FavoritesBackendSQLite FavoritesBackend = "sqlite"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server    ServerSettings    `json:"server"`
	Metadata  MetadataSettings  `json:"metadata"`
	Cache     CacheSettings     `json:"cache"`
	Favorites FavoritesSettings `json:"favorites"`
	Trailers  TrailerSettings   `json:"trailers"`
	Log       LogConfig         `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type MetadataSettings struct {
	TMDBAPIKey    string `json:"tmdbApiKey"`
	YouTubeAPIKey string `json:"youtubeApiKey"`
	Language      string `json:"language"`
	Region        string `json:"region"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
	// 0 disables the trending cache.
	TrendingTTLMinutes int `json:"trendingTtlMinutes"`
}

type FavoritesSettings struct {
	Backend FavoritesBackend `json:"backend"`
	Path    string           `json:"path"`
}

type TrailerSettings struct {
	MaxConcurrent int `json:"maxConcurrent"`
}

// LogConfig controls file logging with rotation.
type LogConfig struct {
	File       string `json:"file"`       // Log file path; empty logs to stdout only
	MaxSize    int    `json:"maxSize"`    // Max size in MB before rotation
	MaxBackups int    `json:"maxBackups"` // Max number of old log files to keep
	MaxAge     int    `json:"maxAge"`     // Max days to keep old log files
	Compress   bool   `json:"compress"`   // Compress rotated files
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:    ServerSettings{Host: "0.0.0.0", Port: 7777},
		Metadata:  MetadataSettings{TMDBAPIKey: "", YouTubeAPIKey: "", Language: "en-US"},
		Cache:     CacheSettings{Directory: "cache", TrendingTTLMinutes: 30},
		Favorites: FavoritesSettings{Backend: FavoritesBackendJSON, Path: "cache/favorites.json"},
		Trailers:  TrailerSettings{MaxConcurrent: 4},
		Log: LogConfig{
			File:       "cache/logs/marquee.log",
			MaxSize:    50,   // 50 MB per file
			MaxBackups: 3,    // keep 3 old files
			MaxAge:     7,    // 7 days
			Compress:   true, // compress old files
		},
	}
}

// Validate reports settings that cannot be used to start the server.
func (s Settings) Validate() error {
	switch s.Favorites.Backend {
	case FavoritesBackendMemory:
	case FavoritesBackendJSON, FavoritesBackendSQLite:
		if strings.TrimSpace(s.Favorites.Path) == "" {
			return fmt.Errorf("favorites backend %q requires a path", s.Favorites.Backend)
		}
	default:
		return fmt.Errorf("unknown favorites backend %q", s.Favorites.Backend)
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", s.Server.Port)
	}
	return nil
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
// Missing or zero-valued fields are backfilled from DefaultSettings.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		// create with defaults
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", m.path, err)
	}

	backfill(&s, DefaultSettings())
	return s, nil
}

func backfill(s *Settings, d Settings) {
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = d.Cache.Directory
	}
	if s.Cache.TrendingTTLMinutes < 0 {
		s.Cache.TrendingTTLMinutes = 0
	}
	s.Favorites.Backend = FavoritesBackend(strings.ToLower(strings.TrimSpace(string(s.Favorites.Backend))))
	if s.Favorites.Backend == "" {
		s.Favorites.Backend = d.Favorites.Backend
	}
	if strings.TrimSpace(s.Favorites.Path) == "" && s.Favorites.Backend != FavoritesBackendMemory {
		ext := ".json"
		if s.Favorites.Backend == FavoritesBackendSQLite {
			ext = ".db"
		}
		s.Favorites.Path = filepath.Join(s.Cache.Directory, "favorites"+ext)
	}
	if s.Trailers.MaxConcurrent <= 0 {
		s.Trailers.MaxConcurrent = d.Trailers.MaxConcurrent
	}
	if s.Log.MaxSize <= 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
	if s.Log.MaxBackups <= 0 {
		s.Log.MaxBackups = d.Log.MaxBackups
	}
	if s.Log.MaxAge <= 0 {
		s.Log.MaxAge = d.Log.MaxAge
	}
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
