package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if DUELRANK_CONFIG is set
//  3. env (prefix DUELRANK_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("DUELRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DUELRANK_K_FACTOR, DUELRANK_SNAPSHOT_EVERY, ...
	// Map env keys like DUELRANK_SNAPSHOT_EVERY -> snapshot_every (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DUELRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "duelrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Structural validation only. K-factor and initial rating ranges are
	// deliberately NOT validated here: the engine accepts them as-is.
	switch {
	case cfg.SnapshotEvery < 1:
		return nil, errors.Join(ErrInvalidConfig, errors.New("snapshot_every must be at least 1"))
	case cfg.HistoryLimit < 2:
		return nil, errors.Join(ErrInvalidConfig, errors.New("history_limit must be at least 2"))
	case cfg.DeltaWindow < 1 || cfg.RankWindow < 1:
		return nil, errors.Join(ErrInvalidConfig, errors.New("convergence windows must be at least 1"))
	case cfg.StateFile == "":
		return nil, errors.Join(ErrInvalidConfig, errors.New("state_file must not be empty"))
	}
	return &cfg, nil
}
