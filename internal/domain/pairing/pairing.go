// Package pairing selects the next pair of items to present for judgment.
package pairing

import (
	"errors"
	"math/rand"
	"time"
)

// ErrNotEnoughItems is returned when fewer than two items are available.
var ErrNotEnoughItems = errors.New("need at least two items to form a pair")

// Selector picks two distinct items uniformly at random. Uniform random
// matching is the reference policy; smarter schedulers (fewest-comparisons
// first, rating-adjacent pairs) would plug in here.
type Selector struct {
	rng *rand.Rand
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithSeed makes pair selection deterministic, mainly for tests and the
// simulation driver.
func WithSeed(seed int64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // non-cryptographic use
	}
}

// New creates a Selector with configuration options.
func New(opts ...Option) *Selector {
	s := &Selector{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // non-cryptographic use
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Next returns two distinct keys drawn uniformly from keys.
func (s *Selector) Next(keys []string) (a, b string, err error) {
	if len(keys) < 2 {
		return "", "", ErrNotEnoughItems
	}
	i := s.rng.Intn(len(keys))
	j := s.rng.Intn(len(keys) - 1)
	if j >= i {
		j++
	}
	return keys[i], keys[j], nil
}
