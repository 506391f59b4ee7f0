package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"marquee/api"
	"marquee/config"
	"marquee/handlers"
	"marquee/internal/database"
	"marquee/services/favorites"
	"marquee/services/metadata"
	"marquee/services/trailers"
	"marquee/utils"

	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🎬 marquee backend starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("MARQUEE_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			// Redirect standard log to both console and file
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}
	if key := strings.TrimSpace(os.Getenv("MARQUEE_TMDB_API_KEY")); key != "" {
		settings.Metadata.TMDBAPIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("MARQUEE_YOUTUBE_API_KEY")); key != "" {
		settings.Metadata.YouTubeAPIKey = key
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("invalid settings in %s: %v", cfgManager.Path(), err)
	}

	if settings.Metadata.TMDBAPIKey == "" {
		log.Printf("[metadata] TMDB API key not configured; trending and search will fail")
	}
	if settings.Metadata.YouTubeAPIKey == "" {
		log.Printf("[metadata] YouTube API key not configured; trailer lookups will fail")
	}

	// Favorites persistence
	persister, closePersister, err := openPersister(settings.Favorites)
	if err != nil {
		log.Fatalf("failed to open favorites storage: %v", err)
	}
	defer closePersister()

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := favorites.Open(loadCtx, persister)
	loadCancel()
	if err != nil {
		log.Fatalf("failed to load favorites: %v", err)
	}
	log.Printf("[favorites] loaded %d favorites (%s backend)", store.Len(), settings.Favorites.Backend)

	gateway := metadata.NewService(metadata.Config{
		TMDBAPIKey:    settings.Metadata.TMDBAPIKey,
		YouTubeAPIKey: settings.Metadata.YouTubeAPIKey,
		Language:      settings.Metadata.Language,
		Region:        settings.Metadata.Region,
		CacheDir:      settings.Cache.Directory,
		TrendingTTL:   time.Duration(settings.Cache.TrendingTTLMinutes) * time.Minute,
	})
	trailerService := trailers.NewService(gateway, settings.Trailers.MaxConcurrent)

	posterHandler := handlers.NewPosterHandler(nil, settings.Cache.Directory, nil)
	settingsHandler := handlers.NewSettingsHandler(cfgManager)
	settingsHandler.SetMetadataService(gateway)
	settingsHandler.SetPosterCache(posterHandler)

	r := utils.NewRouter()
	api.Register(
		r,
		handlers.NewMetadataHandler(gateway),
		handlers.NewFavoritesHandler(store),
		handlers.NewTrailersHandler(trailerService),
		posterHandler,
		settingsHandler,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for event streams
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// openPersister returns the favorites persister for the configured backend.
// The memory backend has none.
func openPersister(cfg config.FavoritesSettings) (favorites.Persister, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.FavoritesBackendMemory:
		return nil, noop, nil
	case config.FavoritesBackendJSON:
		p, err := favorites.NewFilePersister(nil, cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	case config.FavoritesBackendSQLite:
		db, err := database.NewDB(database.Config{DatabasePath: cfg.Path})
		if err != nil {
			return nil, noop, err
		}
		return db.Favorites, func() {
			if err := db.Close(); err != nil {
				log.Printf("[favorites] close database: %v", err)
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown favorites backend %q", cfg.Backend)
	}
}
