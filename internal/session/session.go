// Package session keeps the per-user state of the robot: which quote is on
// screen and how often the robot was clicked.
package session

import (
	"sync"
	"time"

	"stanbot/internal/domain"
	"stanbot/internal/quotes"
)

// GreetingText is shown before the first click and after a reset.
const GreetingText = "Click the robot to hear a joke!"

// Sampler is the part of quotes.Sampler a session needs.
type Sampler interface {
	Next(previous int) (string, int)
	Empty() bool
}

// Session is one user's interaction context.
type Session struct {
	id string

	mu       sync.Mutex
	index    int
	clicks   int
	quote    string
	fallback bool
	touched  time.Time
}

// New returns a session in its initial state.
func New(id string) *Session {
	return &Session{
		id:      id,
		index:   quotes.NoIndex,
		quote:   GreetingText,
		touched: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Click handles one click on the robot and returns the resulting state.
func (s *Session) Click(sampler Sampler) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, idx := sampler.Next(s.index)
	s.clicks++
	s.quote = text
	s.touched = time.Now()

	s.fallback = sampler.Empty()
	if s.fallback {
		// The index returned for an empty list does not name a quote.
		s.index = quotes.NoIndex
	} else {
		s.index = idx
	}

	return s.snapshotLocked()
}

// Reset puts the session back into its initial state.
func (s *Session) Reset() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = quotes.NoIndex
	s.clicks = 0
	s.quote = GreetingText
	s.fallback = false
	s.touched = time.Now()
	return s.snapshotLocked()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastTouched returns the time of the last click or reset.
func (s *Session) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Session:  s.id,
		Quote:    s.quote,
		Index:    s.index,
		Clicks:   s.clicks,
		Fallback: s.fallback,
	}
}
