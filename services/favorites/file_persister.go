package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"marquee/models"
)

var ErrPathRequired = errors.New("favorites path not provided")

// FilePersister keeps favorites in a JSON document on an afero filesystem.
type FilePersister struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewFilePersister stores favorites at path on fs. A nil fs means the OS
// filesystem.
func NewFilePersister(fs afero.Fs, path string) (*FilePersister, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create favorites dir: %w", err)
		}
	}
	return &FilePersister{fs: fs, path: path}, nil
}

func (p *FilePersister) Load(_ context.Context) ([]models.Title, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	file, err := p.fs.Open(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Title{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open favorites: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	if len(data) == 0 {
		return []models.Title{}, nil
	}

	var titles []models.Title
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return titles, nil
}

// Save replaces the document atomically (temp file, sync, rename).
func (p *FilePersister) Save(_ context.Context, titles []models.Title) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if titles == nil {
		titles = []models.Title{}
	}

	tmp := p.path + ".tmp"
	file, err := p.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create favorites temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(titles); err != nil {
		file.Close()
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("encode favorites: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("sync favorites: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("close favorites temp file: %w", err)
	}

	if err := p.fs.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace favorites file: %w", err)
	}

	return nil
}
