package metadata

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/spf13/afero"

	"marquee/models"
)

// gacheFs lets gache write through an afero filesystem.
type gacheFs struct {
	fs afero.Fs
}

func (g gacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return g.fs.OpenFile(name, flag, perm)
}

func (g gacheFs) MkdirAll(path string, perm os.FileMode) error {
	return g.fs.MkdirAll(path, perm)
}

// trendingCache keeps the last trending response on disk for a fixed TTL.
// gache initialises lazily on first Get without a write lock, so every
// access goes through mu.
type trendingCache struct {
	mu    sync.Mutex
	cache *gache.Cache[[]models.Title]
}

func newTrendingCache(fs afero.Fs, dir string, ttl time.Duration) *trendingCache {
	if ttl <= 0 {
		return nil
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &trendingCache{
		cache: gache.New[[]models.Title](&gache.Options{
			Path:       filepath.Join(dir, "metadata", "trending.json"),
			Lifetime:   ttl,
			FileSystem: gacheFs{fs: fs},
		}),
	}
}

func (c *trendingCache) get() ([]models.Title, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	titles, expired, err := c.cache.Get()
	c.mu.Unlock()
	if err != nil {
		log.Printf("[metadata] trending cache read failed: %v", err)
		return nil, false
	}
	if expired || titles == nil {
		return nil, false
	}
	out := make([]models.Title, len(titles))
	copy(out, titles)
	return out, true
}

func (c *trendingCache) set(titles []models.Title) {
	if err := c.store(titles); err != nil {
		log.Printf("[metadata] trending cache write failed: %v", err)
	}
}

// clear drops the cached response.
func (c *trendingCache) clear() error {
	if err := c.store(nil); err != nil {
		return fmt.Errorf("clear trending cache: %w", err)
	}
	return nil
}

func (c *trendingCache) store(titles []models.Title) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Set(titles)
}
