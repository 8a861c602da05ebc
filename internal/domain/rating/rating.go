// Package rating implements the ELO pairwise rating store.
package rating

import (
	"math"
)

// Default rating configuration constants.
const (
	defaultKFactor       = 16.0
	defaultInitialRating = 1400.0
	logisticBase         = 10.0
	logisticScale        = 400.0
)

// Store owns the mapping from item key to ELO rating and comparison count.
// Keys are opaque, caller-supplied stable strings; the store never interprets
// their content. Ratings are unbounded floats, no clamping, no rounding.
//
// The store is NOT internally synchronized. The owning session must serialize
// access (see internal/app).
type Store struct {
	kFactor       float64
	initialRating float64
	ratings       map[string]float64
	counts        map[string]int
}

// New creates a Store with configuration options.
func New(opts ...Option) *Store {
	s := &Store{
		kFactor:       defaultKFactor,
		initialRating: defaultInitialRating,
		ratings:       make(map[string]float64),
		counts:        make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register inserts key with the default rating and a zero comparison count.
// Idempotent: re-registering an existing key is a no-op.
func (s *Store) Register(key string) {
	if _, ok := s.ratings[key]; ok {
		return
	}
	s.ratings[key] = s.initialRating
	s.counts[key] = 0
}

// Rating returns the current rating for key, or the initial rating when the
// key is unregistered. Default-on-read: it never errors and never mutates
// the store.
func (s *Store) Rating(key string) float64 {
	if r, ok := s.ratings[key]; ok {
		return r
	}
	return s.initialRating
}

// ComparisonCount returns the number of judged pairs involving key, or 0
// when the key is unregistered.
func (s *Store) ComparisonCount(key string) int {
	return s.counts[key]
}

// expectedScore is the logistic win probability of a player rated r against
// an opponent rated opp: 1 / (1 + 10^((opp-r)/400)).
func expectedScore(r, opp float64) float64 {
	return 1.0 / (1.0 + math.Pow(logisticBase, (opp-r)/logisticScale))
}

// ApplyWin applies the standard logistic ELO update for a decisive outcome:
// actual score 1 for the winner, 0 for the loser. Unregistered keys default
// to the initial rating and become registered by receiving a rating. Both
// comparison counts are incremented by one.
func (s *Store) ApplyWin(winner, loser string) {
	rw := s.Rating(winner)
	rl := s.Rating(loser)

	ew := expectedScore(rw, rl)
	el := expectedScore(rl, rw)

	s.ratings[winner] = rw + s.kFactor*(1.0-ew)
	s.ratings[loser] = rl + s.kFactor*(0.0-el)
	s.counts[winner]++
	s.counts[loser]++
}

// ApplyDraw applies the ELO update with actual score 0.5 for both items.
// Symmetric by construction since the expected scores sum to one. Both
// comparison counts are incremented by one.
func (s *Store) ApplyDraw(a, b string) {
	ra := s.Rating(a)
	rb := s.Rating(b)

	ea := expectedScore(ra, rb)
	eb := expectedScore(rb, ra)

	s.ratings[a] = ra + s.kFactor*(0.5-ea)
	s.ratings[b] = rb + s.kFactor*(0.5-eb)
	s.counts[a]++
	s.counts[b]++
}

// SetParameters replaces the K-factor and initial rating. Every registered
// item whose rating is exactly equal to the OLD initial rating is rewritten
// to the new one, so never-compared items keep tracking the default.
//
// Known approximation: an item that drifted back to a value coincidentally
// equal to the old default is indistinguishable from "never compared" under
// this policy and gets reset too. Preserved for compatibility with persisted
// state produced by earlier versions.
func (s *Store) SetParameters(kFactor, initialRating float64) {
	old := s.initialRating
	s.kFactor = kFactor
	s.initialRating = initialRating

	for key, r := range s.ratings {
		if r == old {
			s.ratings[key] = initialRating
		}
	}
}

// KFactor returns the current gain constant.
func (s *Store) KFactor() float64 { return s.kFactor }

// InitialRating returns the default rating assigned to unseen items.
func (s *Store) InitialRating() float64 { return s.initialRating }

// Len returns the number of registered items.
func (s *Store) Len() int { return len(s.ratings) }

// Keys returns all registered item keys in unspecified order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.ratings))
	for k := range s.ratings {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a value copy of the current ratings mapping.
func (s *Store) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.ratings))
	for k, v := range s.ratings {
		out[k] = v
	}
	return out
}

// Restore replaces the store contents with persisted ratings and counts.
// Counts missing for a rated key default to zero; the invariant that every
// rated key has a count entry is re-established here.
func (s *Store) Restore(ratings map[string]float64, counts map[string]int) {
	s.ratings = make(map[string]float64, len(ratings))
	s.counts = make(map[string]int, len(ratings))
	for k, v := range ratings {
		s.ratings[k] = v
		s.counts[k] = counts[k]
	}
}
