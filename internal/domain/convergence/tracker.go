// Package convergence decides whether accumulating pairwise judgments have
// produced a stable ranking. It keeps a bounded FIFO history of rating
// snapshots and derives per-round change magnitudes and rank stability
// (Spearman correlation) between consecutive snapshots.
package convergence

import (
	"math"
	"sort"
)

// Default tracker configuration constants.
const (
	defaultHistoryLimit   = 100
	DefaultDeltaThreshold = 1.0
	DefaultDeltaWindow    = 5
	DefaultRankThreshold  = 0.99
	DefaultRankWindow     = 5
)

// RatingView is the read surface the tracker needs from a rating store.
type RatingView interface {
	// Snapshot returns a value copy of the current ratings mapping.
	Snapshot() map[string]float64
	// InitialRating is the default used for keys missing from a snapshot.
	InitialRating() float64
}

// Change is one per-round entry of the change log.
type Change struct {
	Max float64
	Avg float64
}

// Tracker accumulates rating snapshots and answers convergence queries.
// It has no terminal state: convergence is a predicate evaluated fresh on
// each call, never a transition the tracker commits to.
//
// The tracker is NOT internally synchronized; the owning session serializes
// access. It does not self-schedule either — callers decide the snapshot
// cadence (the reference cadence is every 10 judged pairs).
type Tracker struct {
	historyLimit  int
	history       []map[string]float64
	changeLog     []Change
	defaultRating float64
}

// New creates a Tracker with configuration options.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		historyLimit: defaultHistoryLimit,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Snapshot copies the view's current ratings by value and appends them to
// the history, evicting the oldest entry once the bound is exceeded. The
// recorded snapshot is immutable from then on.
func (t *Tracker) Snapshot(view RatingView) {
	t.history = append(t.history, view.Snapshot())
	t.defaultRating = view.InitialRating()
	if len(t.history) > t.historyLimit {
		t.history = t.history[1:]
	}
}

// RatingDeltas computes, over the union of keys in the two most recent
// snapshots (missing entries defaulting to the initial rating), the absolute
// per-key rating change, and returns its max and average. ok is false when
// fewer than two snapshots exist.
//
// This is not a pure query: each call appends a {max, avg} entry to the
// change log, bounded like the history. Calling it twice for the same pair
// of snapshots double-logs; callers are expected to invoke it exactly once
// per recorded snapshot.
func (t *Tracker) RatingDeltas() (maxDelta, avgDelta float64, ok bool) {
	if len(t.history) < 2 {
		return 0, 0, false
	}

	prev := t.history[len(t.history)-2]
	curr := t.history[len(t.history)-1]

	var sum float64
	var n int
	for _, key := range unionKeys(prev, curr) {
		d := math.Abs(ratingOr(curr, key, t.defaultRating) - ratingOr(prev, key, t.defaultRating))
		if d > maxDelta {
			maxDelta = d
		}
		sum += d
		n++
	}
	if n > 0 {
		avgDelta = sum / float64(n)
	}

	t.changeLog = append(t.changeLog, Change{Max: maxDelta, Avg: avgDelta})
	if len(t.changeLog) > t.historyLimit {
		t.changeLog = t.changeLog[1:]
	}

	return maxDelta, avgDelta, true
}

// RankStability computes Spearman's rank correlation coefficient between the
// rankings induced by the two most recent snapshots. ok is false when fewer
// than two snapshots exist or the union holds fewer than two keys.
func (t *Tracker) RankStability() (rho float64, ok bool) {
	if len(t.history) < 2 {
		return 0, false
	}
	return t.spearman(t.history[len(t.history)-2], t.history[len(t.history)-1])
}

// ConvergedByDelta reports whether the change log holds at least window
// entries and every one of the most recent window entries has max < threshold.
func (t *Tracker) ConvergedByDelta(threshold float64, window int) bool {
	if window < 1 || len(t.changeLog) < window {
		return false
	}
	for _, c := range t.changeLog[len(t.changeLog)-window:] {
		if c.Max >= threshold {
			return false
		}
	}
	return true
}

// ConvergedByRank reports whether the most recent window consecutive snapshot
// pairs each yield rho > threshold. Rho is recomputed per pair from the
// history rather than read from a cached log, so eviction or double-logging
// of the change log cannot skew this predicate.
func (t *Tracker) ConvergedByRank(threshold float64, window int) bool {
	if window < 1 || len(t.history) < window+1 {
		return false
	}
	for i := len(t.history) - window; i < len(t.history); i++ {
		rho, ok := t.spearman(t.history[i-1], t.history[i])
		if !ok || rho <= threshold {
			return false
		}
	}
	return true
}

// HistoryLen returns the number of snapshots currently retained.
func (t *Tracker) HistoryLen() int { return len(t.history) }

// ChangeLog returns a copy of the per-round change entries, oldest first.
func (t *Tracker) ChangeLog() []Change {
	out := make([]Change, len(t.changeLog))
	copy(out, t.changeLog)
	return out
}

// LastChange returns the most recent change log entry, if any.
func (t *Tracker) LastChange() (Change, bool) {
	if len(t.changeLog) == 0 {
		return Change{}, false
	}
	return t.changeLog[len(t.changeLog)-1], true
}

// spearman computes rho = 1 - 6*sum(d^2) / (n*(n^2-1)) over the union of
// keys of two snapshots, ranking keys by rating descending with exact ties
// broken by key ascending so ranks are reproducible across runs. No
// fractional tied-rank adjustment is applied.
func (t *Tracker) spearman(prev, curr map[string]float64) (float64, bool) {
	keys := unionKeys(prev, curr)
	n := len(keys)
	if n < 2 {
		return 0, false
	}

	prevRank := rankByRating(keys, prev, t.defaultRating)
	currRank := rankByRating(keys, curr, t.defaultRating)

	var sumD2 float64
	for _, key := range keys {
		d := float64(currRank[key] - prevRank[key])
		sumD2 += d * d
	}

	nf := float64(n)
	return 1.0 - (6.0*sumD2)/(nf*(nf*nf-1.0)), true
}

// rankByRating assigns rank 1 to the highest-rated key. Keys absent from the
// snapshot rank with the default rating.
func rankByRating(keys []string, snap map[string]float64, def float64) map[string]int {
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri := ratingOr(snap, ordered[i], def)
		rj := ratingOr(snap, ordered[j], def)
		if ri != rj {
			return ri > rj
		}
		return ordered[i] < ordered[j]
	})

	ranks := make(map[string]int, len(ordered))
	for i, key := range ordered {
		ranks[key] = i + 1
	}
	return ranks
}

func ratingOr(snap map[string]float64, key string, def float64) float64 {
	if r, ok := snap[key]; ok {
		return r
	}
	return def
}

// unionKeys returns the sorted union of keys across two snapshots. Sorting
// keeps every downstream ranking and delta computation deterministic.
func unionKeys(a, b map[string]float64) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
