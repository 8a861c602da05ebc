// Package app provides the judging session service that owns the rating
// engine and implements the dependencies required by the CLI and the
// diagnostics HTTP API.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/duelrank/internal/adapters/statefile"
	"github.com/okian/duelrank/internal/domain/convergence"
	"github.com/okian/duelrank/internal/domain/model"
	"github.com/okian/duelrank/internal/domain/pairing"
	"github.com/okian/duelrank/internal/domain/rating"
	"github.com/okian/duelrank/internal/domain/types"
	"github.com/okian/duelrank/pkg/logger"
	"github.com/okian/duelrank/pkg/metrics"
)

// Default session configuration constants.
const (
	defaultSnapshotEvery    = 10
	defaultJudgmentLogLimit = 1000
)

// Session owns one rating store, one convergence tracker, and one pair
// selector behind a single mutex. The engine types themselves are not
// synchronized; this is the mutual-exclusion region that makes them safe to
// share between the interactive judging loop and the diagnostics server.
type Session struct {
	mu sync.RWMutex

	store    *rating.Store
	tracker  *convergence.Tracker
	selector *pairing.Selector

	// Judgment bookkeeping
	total        int              // judged pairs this session, persisted as comparison_count
	sinceSnap    int              // judgments since the last snapshot
	judgmentLog  []model.Judgment // bounded, newest last
	judgmentsCap int

	// Configuration
	snapshotEvery  int
	historyLimit   int
	deltaThreshold float64
	deltaWindow    int
	rankThreshold  float64
	rankWindow     int
	kFactor        float64
	initialRating  float64
	pairSeed       *int64

	states statefile.Repository
	logger logger.Logger
}

// New constructs a Session with default configuration.
func New(opts ...Option) *Session {
	s := &Session{
		snapshotEvery:  defaultSnapshotEvery,
		historyLimit:   0, // tracker default applies
		deltaThreshold: convergence.DefaultDeltaThreshold,
		deltaWindow:    convergence.DefaultDeltaWindow,
		rankThreshold:  convergence.DefaultRankThreshold,
		rankWindow:     convergence.DefaultRankWindow,
		kFactor:        16,
		initialRating:  1400,
		judgmentsCap:   defaultJudgmentLogLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.store = rating.New(
		rating.WithKFactor(s.kFactor),
		rating.WithInitialRating(s.initialRating),
	)

	trackerOpts := []convergence.Option{
		convergence.WithDefaultRating(s.initialRating),
	}
	if s.historyLimit > 0 {
		trackerOpts = append(trackerOpts, convergence.WithHistoryLimit(s.historyLimit))
	}
	s.tracker = convergence.New(trackerOpts...)

	if s.pairSeed != nil {
		s.selector = pairing.New(pairing.WithSeed(*s.pairSeed))
	} else {
		s.selector = pairing.New()
	}

	return s
}

// RegisterItems registers keys with the rating store. Already-registered
// keys are untouched.
func (s *Session) RegisterItems(ctx context.Context, keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		s.store.Register(key)
	}
	metrics.UpdateItems(s.store.Len())
	s.logger.Debug(ctx, "registered items",
		logger.Int("added", len(keys)),
		logger.Int("total", s.store.Len()),
	)
}

// NextPair selects two distinct registered items for judgment.
func (s *Session) NextPair(ctx context.Context) (a, b string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, b, err = s.selector.Next(s.store.Keys())
	if err != nil {
		return "", "", fmt.Errorf("select pair: %w", err)
	}
	return a, b, nil
}

// JudgeWin applies a decisive judgment: winner beat loser.
func (s *Session) JudgeWin(ctx context.Context, winner, loser string) model.Judgment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.judge(ctx, winner, loser, model.OutcomeWin)
}

// JudgeDraw applies a drawn judgment over the pair (a, b).
func (s *Session) JudgeDraw(ctx context.Context, a, b string) model.Judgment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.judge(ctx, a, b, model.OutcomeDraw)
}

// judge applies the rating update and the snapshot cadence. Callers hold the
// write lock.
func (s *Session) judge(ctx context.Context, first, second string, outcome model.Outcome) model.Judgment {
	switch outcome {
	case model.OutcomeDraw:
		s.store.ApplyDraw(first, second)
	default:
		s.store.ApplyWin(first, second)
	}

	s.total++
	s.sinceSnap++
	metrics.RecordJudgment(string(outcome))
	metrics.UpdateComparisons(s.total)
	metrics.UpdateItems(s.store.Len())

	j := model.Judgment{
		ID:      uuid.New().String(),
		Winner:  first,
		Loser:   second,
		Outcome: outcome,
		At:      time.Now(),
	}
	s.judgmentLog = append(s.judgmentLog, j)
	if len(s.judgmentLog) > s.judgmentsCap {
		s.judgmentLog = s.judgmentLog[1:]
	}

	if s.sinceSnap >= s.snapshotEvery {
		s.snapshotLocked(ctx)
	}

	s.logger.Debug(ctx, "judgment applied",
		logger.String("winner", first),
		logger.String("loser", second),
		logger.String("outcome", string(outcome)),
		logger.Int("total", s.total),
	)
	return j
}

// snapshotLocked records a convergence snapshot and logs the resulting
// round deltas exactly once. Callers hold the write lock.
func (s *Session) snapshotLocked(ctx context.Context) {
	s.tracker.Snapshot(s.store)
	s.sinceSnap = 0
	metrics.RecordSnapshot()

	// One RatingDeltas call per snapshot keeps the change log at one entry
	// per round; the tracker does not guard against double-logging itself.
	if maxDelta, avgDelta, ok := s.tracker.RatingDeltas(); ok {
		metrics.UpdateDeltas(maxDelta, avgDelta)
		s.logger.Info(ctx, "convergence snapshot",
			logger.Int("round", s.tracker.HistoryLen()),
			logger.Float64("maxDelta", maxDelta),
			logger.Float64("avgDelta", avgDelta),
		)
	}
	if rho, ok := s.tracker.RankStability(); ok {
		metrics.UpdateRankStability(rho)
	}
	metrics.UpdateConverged("delta", s.tracker.ConvergedByDelta(s.deltaThreshold, s.deltaWindow))
	metrics.UpdateConverged("rank", s.tracker.ConvergedByRank(s.rankThreshold, s.rankWindow))
}

// Snapshot forces a convergence snapshot outside the regular cadence.
func (s *Session) Snapshot(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotLocked(ctx)
}

// Rating returns the current rating for key, defaulting for unknown keys.
func (s *Session) Rating(ctx context.Context, key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Rating(key)
}

// ComparisonCount returns the judged-pair count for key, 0 for unknown keys.
func (s *Session) ComparisonCount(ctx context.Context, key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ComparisonCount(key)
}

// TotalComparisons returns the number of judged pairs this session,
// including any restored from persisted state.
func (s *Session) TotalComparisons(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// SetParameters updates the K-factor and initial rating, applying the
// store's old-default rewrite policy.
func (s *Session) SetParameters(ctx context.Context, kFactor, initialRating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.SetParameters(kFactor, initialRating)
	s.kFactor = kFactor
	s.initialRating = initialRating
	s.logger.Info(ctx, "parameters updated",
		logger.Float64("kFactor", kFactor),
		logger.Float64("initialRating", initialRating),
	)
}

// Rankings returns up to n entries ordered by rating descending. Ties order
// by key ascending so the table is stable between calls.
func (s *Session) Rankings(ctx context.Context, n int) []types.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.store.Keys()
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := s.store.Rating(keys[i]), s.store.Rating(keys[j])
		if ri != rj {
			return ri > rj
		}
		return keys[i] < keys[j]
	})

	if n > 0 && n < len(keys) {
		keys = keys[:n]
	}
	entries := make([]types.Entry, len(keys))
	for i, key := range keys {
		entries[i] = types.Entry{
			Rank:        i + 1,
			Item:        key,
			Rating:      s.store.Rating(key),
			Comparisons: s.store.ComparisonCount(key),
		}
	}
	return entries
}

// Rank returns the entry for a single item. ok is false for unknown keys.
func (s *Session) Rank(ctx context.Context, key string) (types.Entry, bool) {
	for _, e := range s.Rankings(ctx, 0) {
		if e.Item == key {
			return e, true
		}
	}
	return types.Entry{}, false
}

// Diagnostics reports the convergence state for display.
func (s *Session) Diagnostics(ctx context.Context) types.Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := types.Diagnostics{
		Items:            s.store.Len(),
		TotalComparisons: s.total,
		Snapshots:        s.tracker.HistoryLen(),
		ConvergedByDelta: s.tracker.ConvergedByDelta(s.deltaThreshold, s.deltaWindow),
		ConvergedByRank:  s.tracker.ConvergedByRank(s.rankThreshold, s.rankWindow),
	}
	if c, ok := s.tracker.LastChange(); ok {
		maxDelta, avgDelta := c.Max, c.Avg
		d.MaxDelta = &maxDelta
		d.AvgDelta = &avgDelta
	}
	if rho, ok := s.tracker.RankStability(); ok {
		d.RankStability = &rho
	}
	return d
}

// Converged reports whether either stopping criterion is currently met.
func (s *Session) Converged(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.ConvergedByDelta(s.deltaThreshold, s.deltaWindow) ||
		s.tracker.ConvergedByRank(s.rankThreshold, s.rankWindow)
}

// Judgments returns a copy of the bounded judgment log, oldest first.
func (s *Session) Judgments(ctx context.Context) []model.Judgment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Judgment, len(s.judgmentLog))
	copy(out, s.judgmentLog)
	return out
}

// SaveState persists engine state through the configured repository.
func (s *Session) SaveState(ctx context.Context, directory string) error {
	if s.states == nil {
		return statefile.ErrWrite
	}

	s.mu.RLock()
	state := statefile.State{
		Directory:             directory,
		KFactor:               s.store.KFactor(),
		InitialRating:         s.store.InitialRating(),
		ComparisonCount:       s.total,
		Scores:                s.store.Snapshot(),
		ImageComparisonCounts: make(map[string]int, s.store.Len()),
	}
	for _, key := range s.store.Keys() {
		state.ImageComparisonCounts[key] = s.store.ComparisonCount(key)
	}
	s.mu.RUnlock()

	if err := s.states.Save(ctx, state); err != nil {
		metrics.RecordStateError()
		return err
	}
	metrics.RecordStateSave()
	s.logger.Info(ctx, "state saved",
		logger.Int("items", len(state.Scores)),
		logger.Int("comparisons", state.ComparisonCount),
	)
	return nil
}

// RestoreState loads persisted engine state through the configured
// repository. A missing state file surfaces as statefile.ErrNotFound so
// callers can choose to start fresh.
func (s *Session) RestoreState(ctx context.Context) error {
	if s.states == nil {
		return nil
	}

	state, err := s.states.Load(ctx)
	if err != nil {
		metrics.RecordStateError()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.SetParameters(state.KFactor, state.InitialRating)
	s.kFactor = state.KFactor
	s.initialRating = state.InitialRating
	s.store.Restore(state.Scores, state.ImageComparisonCounts)
	s.total = state.ComparisonCount
	s.sinceSnap = 0

	metrics.RecordStateLoad()
	metrics.UpdateItems(s.store.Len())
	metrics.UpdateComparisons(s.total)
	s.logger.Info(ctx, "state restored",
		logger.Int("items", s.store.Len()),
		logger.Int("comparisons", s.total),
	)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Session) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"items":            s.store.Len(),
		"totalComparisons": s.total,
		"snapshots":        s.tracker.HistoryLen(),
		"snapshotEvery":    s.snapshotEvery,
		"kFactor":          s.store.KFactor(),
		"initialRating":    s.store.InitialRating(),
	}
	if c, ok := s.tracker.LastChange(); ok {
		stats["lastMaxDelta"] = c.Max
		stats["lastAvgDelta"] = c.Avg
	}
	return stats
}
