// Package rating implements the ELO pairwise rating store.
package rating

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithKFactor sets the gain constant applied on each judged pair. The store
// does not validate the range; callers own any bounds policy.
func WithKFactor(k float64) Option {
	return func(s *Store) {
		s.kFactor = k
	}
}

// WithInitialRating sets the default rating assigned to unseen items.
func WithInitialRating(r float64) Option {
	return func(s *Store) {
		s.initialRating = r
	}
}
