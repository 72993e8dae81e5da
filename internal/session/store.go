package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned for unknown, expired or deleted sessions.
var ErrNotFound = errors.New("session not found")

// Store keeps sessions in memory and forgets them after ttl without use.
// A ttl of zero keeps sessions until they are deleted.
type Store struct {
	cache *cache.Cache
}

// NewStore returns an empty store whose sessions live for ttl after their last use.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		return &Store{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &Store{cache: cache.New(ttl, ttl*2)}
}

// Create registers a fresh session under a random ID.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString())
	s.cache.Set(sess.ID(), sess, cache.DefaultExpiration)
	return sess
}

// Get returns the session and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	val, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	sess, ok := val.(*Session)
	if !ok {
		return nil, ErrNotFound
	}
	// Replace fails if the session was deleted since the lookup, so a
	// concurrent Delete is never undone.
	if err := s.cache.Replace(id, sess, cache.DefaultExpiration); err != nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes the session and fires the eviction callback.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of stored sessions, expired ones included
// until the next cleanup.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// OnEvicted registers f to run whenever a session leaves the store.
func (s *Store) OnEvicted(f func(id string)) {
	s.cache.OnEvicted(func(key string, _ interface{}) {
		f(key)
	})
}
