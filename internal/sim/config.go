// Package sim drives a judging session with synthetic judgments so the
// convergence machinery can be exercised end to end without a human.
package sim

import (
	"errors"
	"fmt"
)

// Default simulation configuration constants.
const (
	defaultItems           = 30
	defaultMaxPairs        = 5000
	defaultDrawProbability = 0.05
	defaultStrengthSpread  = 400.0
	defaultTopN            = 10
)

// Config controls a simulation run.
type Config struct {
	// Items is the number of synthetic items to generate.
	Items int
	// MaxPairs caps the number of judged pairs before giving up.
	MaxPairs int
	// Seed makes the run reproducible.
	Seed int64
	// DrawProbability is the chance a pair is judged a draw.
	DrawProbability float64
	// StrengthSpread is the range of hidden strengths around the initial
	// rating; larger spreads converge faster.
	StrengthSpread float64
	// TopN limits the ranking table included in the result.
	TopN int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Items:           defaultItems,
		MaxPairs:        defaultMaxPairs,
		Seed:            1,
		DrawProbability: defaultDrawProbability,
		StrengthSpread:  defaultStrengthSpread,
		TopN:            defaultTopN,
	}
}

// Validate checks the configuration for structural problems.
func (c Config) Validate() error {
	switch {
	case c.Items < 2:
		return errors.New("need at least two items")
	case c.MaxPairs < 1:
		return errors.New("max pairs must be positive")
	case c.DrawProbability < 0 || c.DrawProbability >= 1:
		return fmt.Errorf("draw probability %v out of [0,1)", c.DrawProbability)
	}
	return nil
}
