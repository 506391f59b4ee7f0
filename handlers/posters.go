package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
)

const (
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	maxPosterBytes   = 10 << 20
)

var posterSizes = map[string]bool{
	"w92": true, "w154": true, "w185": true, "w342": true,
	"w500": true, "w780": true, "original": true,
}

// PosterHandler proxies TMDB poster images through an on-disk cache.
type PosterHandler struct {
	fs         afero.Fs
	cacheDir   string
	httpc      *http.Client
	mu         sync.Mutex
	inProgress map[string]chan struct{} // Prevent duplicate fetches
}

// NewPosterHandler caches under cacheDir/posters. A nil fs means the OS
// filesystem.
func NewPosterHandler(fs afero.Fs, cacheDir string, httpc *http.Client) *PosterHandler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	posterDir := filepath.Join(cacheDir, "posters")
	if err := fs.MkdirAll(posterDir, 0o755); err != nil {
		log.Printf("[posters] warning: could not create cache dir %s: %v", posterDir, err)
	}
	return &PosterHandler{
		fs:         fs,
		cacheDir:   posterDir,
		httpc:      httpc,
		inProgress: make(map[string]chan struct{}),
	}
}

// Serve handles GET /api/posters/{size}/{file}
func (h *PosterHandler) Serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	size := vars["size"]
	file := path.Base("/" + vars["file"])

	if !posterSizes[size] {
		writeJSONError(w, "unsupported poster size", http.StatusBadRequest)
		return
	}
	if file == "/" || file == "." || strings.HasPrefix(file, ".") {
		writeJSONError(w, "poster file is required", http.StatusBadRequest)
		return
	}

	sourceURL := fmt.Sprintf("%s/%s/%s", tmdbImageBaseURL, size, file)
	cachePath := filepath.Join(h.cacheDir, cacheKey(size, file))

	if h.serveCached(w, cachePath) {
		return
	}

	h.mu.Lock()
	if ch, exists := h.inProgress[cachePath]; exists {
		h.mu.Unlock()
		<-ch
		if h.serveCached(w, cachePath) {
			return
		}
		http.Error(w, "Failed to load poster", http.StatusBadGateway)
		return
	}
	ch := make(chan struct{})
	h.inProgress[cachePath] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.inProgress, cachePath)
		close(ch)
		h.mu.Unlock()
	}()

	data, err := h.fetch(r, sourceURL)
	if err != nil {
		log.Printf("[posters] fetch %s: %v", sourceURL, err)
		http.Error(w, "Failed to fetch poster", http.StatusBadGateway)
		return
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		log.Printf("[posters] %s is %s, not an image", sourceURL, mtype.String())
		http.Error(w, "Poster source error", http.StatusBadGateway)
		return
	}

	if err := h.store(cachePath, data); err != nil {
		log.Printf("[posters] cache write error: %v", err)
		h.write(w, data, mtype.String(), "MISS-NOCACHE")
		return
	}
	h.write(w, data, mtype.String(), "MISS")
}

func (h *PosterHandler) fetch(r *http.Request, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes))
}

func (h *PosterHandler) serveCached(w http.ResponseWriter, cachePath string) bool {
	data, err := afero.ReadFile(h.fs, cachePath)
	if err != nil || len(data) == 0 {
		return false
	}
	h.write(w, data, mimetype.Detect(data).String(), "HIT")
	return true
}

func (h *PosterHandler) store(cachePath string, data []byte) error {
	tmpPath := cachePath + ".tmp"
	if err := afero.WriteFile(h.fs, tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := h.fs.Rename(tmpPath, cachePath); err != nil {
		h.fs.Remove(tmpPath)
		return err
	}
	return nil
}

func (h *PosterHandler) write(w http.ResponseWriter, data []byte, contentType, cacheStatus string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=2592000") // 30 days
	w.Header().Set("X-Cache", cacheStatus)
	w.Write(data)
}

// ClearCache removes all cached posters.
func (h *PosterHandler) ClearCache() error {
	entries, err := afero.ReadDir(h.fs, h.cacheDir)
	if err != nil {
		return err
	}

	var failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := h.fs.Remove(filepath.Join(h.cacheDir, entry.Name())); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d files", failed)
	}
	return nil
}

func cacheKey(size, file string) string {
	hash := sha256.Sum256([]byte(size + "|" + file))
	return hex.EncodeToString(hash[:16])
}
