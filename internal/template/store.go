// Package template provides read access to the binary document
// templates, one per document kind.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/models"
)

// Store reads document templates from a fixed directory. Templates are
// provisioned out-of-band and never written by the service; every Load
// is a fresh filesystem read so template updates take effect without a
// restart.
type Store struct {
	root string // absolute path to templates directory
}

// NewStore creates a Store rooted at the given directory. The directory
// must already exist.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("template: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("template: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template: root is not a directory: %s", abs)
	}
	return &Store{root: abs}, nil
}

// Path returns the absolute path of the template file for kind.
func (s *Store) Path(kind models.Kind) string {
	return filepath.Join(s.root, kind.TemplateFile())
}

// Load reads and returns the raw template bytes for kind. A missing or
// unreadable file maps to apperr.ErrTemplateNotFound.
func (s *Store) Load(kind models.Kind) ([]byte, error) {
	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("template: %s: %w", kind.TemplateFile(), apperr.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("template: read %s: %w", kind.TemplateFile(), err)
	}
	return data, nil
}

// EnsureOutputDirs idempotently creates the per-kind output directory
// tree under root. Failures are logged, not propagated; a missing
// directory surfaces later as a write failure.
func EnsureOutputDirs(root string, logger *slog.Logger) {
	for _, kind := range models.Kinds() {
		dir := filepath.Join(root, kind.OutputSubdir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("template: create output dir failed",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
		}
	}
}
