// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields koanf-tagged and provide New() with defaults.
// - Loading layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the diagnostics HTTP listen address, e.g. ":9090".
	// Empty disables the diagnostics server.
	Addr string `koanf:"addr"`

	// KFactor is the ELO gain constant. Range policy is a UI concern; the
	// engine accepts any value as-is.
	KFactor float64 `koanf:"k_factor"`

	// InitialRating is the default rating assigned to unseen items.
	InitialRating float64 `koanf:"initial_rating"`

	// SnapshotEvery sets the convergence snapshot cadence in judged pairs.
	SnapshotEvery int `koanf:"snapshot_every"`

	// HistoryLimit bounds the convergence snapshot history and change log.
	HistoryLimit int `koanf:"history_limit"`

	// DeltaThreshold and DeltaWindow parameterize convergence-by-delta.
	DeltaThreshold float64 `koanf:"delta_threshold"`
	DeltaWindow    int     `koanf:"delta_window"`

	// RankThreshold and RankWindow parameterize convergence-by-rank.
	RankThreshold float64 `koanf:"rank_threshold"`
	RankWindow    int     `koanf:"rank_window"`

	// MaxRankingsLimit caps GET /rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// StateFile is the state file name created inside the judged directory.
	StateFile string `koanf:"state_file"`

	// ImageExtensions lists the file extensions item discovery accepts.
	ImageExtensions []string `koanf:"image_extensions"`

	// JudgmentLogLimit bounds the in-memory judgment log kept for diagnostics.
	JudgmentLogLimit int `koanf:"judgment_log_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             "",
		KFactor:          16,
		InitialRating:    1400,
		SnapshotEvery:    10,
		HistoryLimit:     100,
		DeltaThreshold:   1.0,
		DeltaWindow:      5,
		RankThreshold:    0.99,
		RankWindow:       5,
		MaxRankingsLimit: 100,
		StateFile:        "elo_scores.json",
		ImageExtensions:  []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff", ".tif"},
		JudgmentLogLimit: 1000,
	}
}
