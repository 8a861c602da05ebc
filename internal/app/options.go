package app

import (
	"github.com/okian/duelrank/internal/adapters/statefile"
	"github.com/okian/duelrank/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithKFactor sets the ELO gain constant.
func WithKFactor(k float64) Option {
	return func(s *Session) {
		s.kFactor = k
	}
}

// WithInitialRating sets the default rating for unseen items.
func WithInitialRating(r float64) Option {
	return func(s *Session) {
		s.initialRating = r
	}
}

// WithSnapshotEvery sets the convergence snapshot cadence in judged pairs.
func WithSnapshotEvery(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.snapshotEvery = n
		}
	}
}

// WithHistoryLimit bounds the convergence history and change log.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithDeltaCriterion sets the threshold and window for convergence-by-delta.
func WithDeltaCriterion(threshold float64, window int) Option {
	return func(s *Session) {
		if window > 0 {
			s.deltaThreshold = threshold
			s.deltaWindow = window
		}
	}
}

// WithRankCriterion sets the threshold and window for convergence-by-rank.
func WithRankCriterion(threshold float64, window int) Option {
	return func(s *Session) {
		if window > 0 {
			s.rankThreshold = threshold
			s.rankWindow = window
		}
	}
}

// WithJudgmentLogLimit bounds the in-memory judgment log.
func WithJudgmentLogLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.judgmentsCap = limit
		}
	}
}

// WithPairSeed makes pair selection deterministic.
func WithPairSeed(seed int64) Option {
	return func(s *Session) {
		s.pairSeed = &seed
	}
}

// WithStateRepository sets the persistence collaborator used by
// SaveState/RestoreState.
func WithStateRepository(repo statefile.Repository) Option {
	return func(s *Session) {
		s.states = repo
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}
