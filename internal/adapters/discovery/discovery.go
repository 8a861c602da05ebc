// Package discovery finds rankable items on disk. It only lists file paths;
// it never opens or decodes the files themselves.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrScan wraps directory read failures.
var ErrScan = errors.New("directory scan failed")

// Default extensions recognized as images.
var defaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff", ".tif"}

// Scanner lists image files in a directory. The scan is non-recursive and
// extension matching is case-insensitive.
type Scanner struct {
	extensions map[string]struct{}
}

// Option applies a configuration option to the Scanner.
type Option func(*Scanner)

// WithExtensions replaces the accepted extension set. Extensions are
// normalized to lower case with a leading dot.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) == 0 {
			return
		}
		s.extensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extensions[ext] = struct{}{}
		}
	}
}

// NewScanner creates a Scanner with configuration options.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		extensions: make(map[string]struct{}, len(defaultExtensions)),
	}
	for _, ext := range defaultExtensions {
		s.extensions[ext] = struct{}{}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scan returns the sorted full paths of matching files directly inside dir.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScan, err)
	}

	var paths []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScan, err)
		}
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := s.extensions[ext]; ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
