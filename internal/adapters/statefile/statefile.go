// Package statefile persists engine state as a JSON document. The schema is
// fixed for compatibility with files written by earlier versions of the
// ranker; this package round-trips it and nothing more.
package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// State is the persisted snapshot of a judging session.
// ImageComparisonCounts is optional on load: older files omit it, in which
// case counts default to zero.
type State struct {
	Directory             string             `json:"directory,omitempty"`
	KFactor               float64            `json:"k_factor"`
	InitialRating         float64            `json:"initial_rating"`
	ComparisonCount       int                `json:"comparison_count"`
	Scores                map[string]float64 `json:"scores"`
	ImageComparisonCounts map[string]int     `json:"image_comparison_counts,omitempty"`
}

// Repository reads and writes session state.
type Repository interface {
	// Save persists the state, replacing any previous one.
	Save(ctx context.Context, state State) error
	// Load reads the persisted state. Returns ErrNotFound if none exists.
	Load(ctx context.Context) (State, error)
}

// FileRepository implements Repository on a single JSON file.
type FileRepository struct {
	path string
	mode os.FileMode
}

// Option applies a configuration option to the FileRepository.
type Option func(*FileRepository)

// WithFileMode sets the permissions for the written state file.
func WithFileMode(mode os.FileMode) Option {
	return func(r *FileRepository) {
		if mode != 0 {
			r.mode = mode
		}
	}
}

// NewFileRepository creates a repository backed by the JSON file at path.
func NewFileRepository(path string, opts ...Option) *FileRepository {
	r := &FileRepository{
		path: path,
		mode: 0o644,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the backing file path.
func (r *FileRepository) Path() string { return r.path }

// Save writes the state atomically: marshal to a temp file in the target
// directory, then rename over the destination.
func (r *FileRepository) Save(_ context.Context, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmpName, r.mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Load reads and decodes the state file.
func (r *FileRepository) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}
		return State{}, fmt.Errorf("%w: %w", ErrRead, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if state.Scores == nil {
		return State{}, fmt.Errorf("%w: missing scores field", ErrDecode)
	}
	if state.ImageComparisonCounts == nil {
		state.ImageComparisonCounts = make(map[string]int)
	}
	return state, nil
}
