package convergence

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithHistoryLimit bounds the snapshot history and change log. Values below
// one are ignored.
func WithHistoryLimit(limit int) Option {
	return func(t *Tracker) {
		if limit > 0 {
			t.historyLimit = limit
		}
	}
}

// WithDefaultRating sets the rating used for keys missing from a snapshot
// before the first Snapshot call captures one from the store.
func WithDefaultRating(r float64) Option {
	return func(t *Tracker) {
		t.defaultRating = r
	}
}
