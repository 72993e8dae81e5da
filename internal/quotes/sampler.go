// Package quotes picks jokes from a fixed list without showing the same
// joke twice in a row.
package quotes

import (
	"math/rand/v2"
	"sync"
)

const (
	// NoIndex marks that no quote has been shown yet.
	NoIndex = -1

	// FallbackText is returned when the quote list is empty.
	FallbackText = "No jokes available right now."
)

// Sampler holds an immutable quote list and draws from it.
type Sampler struct {
	quotes []string

	mu  sync.Mutex
	rng *rand.Rand // nil means the top-level math/rand/v2 generator
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithSource makes the sampler draw from src, mostly for deterministic tests.
func WithSource(src rand.Source) Option {
	return func(s *Sampler) {
		s.rng = rand.New(src)
	}
}

// NewSampler copies quotes into a new Sampler.
func NewSampler(quotes []string, opts ...Option) *Sampler {
	s := &Sampler{
		quotes: append([]string(nil), quotes...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of quotes.
func (s *Sampler) Len() int {
	return len(s.quotes)
}

// Empty reports whether Next and Random can only return FallbackText.
func (s *Sampler) Empty() bool {
	return len(s.quotes) == 0
}

// Quotes returns a copy of the quote list.
func (s *Sampler) Quotes() []string {
	return append([]string(nil), s.quotes...)
}

// Next returns a quote and its index. When the list has two or more
// entries and previous is a valid index, the result never equals
// previous; every other index is equally likely. Any previous outside
// [0, Len()) counts as unset.
//
// For an empty list Next returns FallbackText and index 0. That index
// does not point into the list; check Empty before using it.
func (s *Sampler) Next(previous int) (string, int) {
	n := len(s.quotes)
	switch n {
	case 0:
		return FallbackText, 0
	case 1:
		return s.quotes[0], 0
	}

	if previous < 0 || previous >= n {
		i := s.intN(n)
		return s.quotes[i], i
	}

	// Draw from the n-1 remaining slots and step over previous.
	i := s.intN(n - 1)
	if i >= previous {
		i++
	}
	return s.quotes[i], i
}

// Random returns any quote, repeats included.
func (s *Sampler) Random() string {
	if len(s.quotes) == 0 {
		return FallbackText
	}
	return s.quotes[s.intN(len(s.quotes))]
}

func (s *Sampler) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
