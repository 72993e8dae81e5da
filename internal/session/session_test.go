package session

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanbot/internal/quotes"
)

func TestNewSession(t *testing.T) {
	s := New("abc")

	snap := s.Snapshot()
	assert.Equal(t, "abc", snap.Session)
	assert.Equal(t, quotes.NoIndex, snap.Index)
	assert.Equal(t, 0, snap.Clicks)
	assert.Equal(t, GreetingText, snap.Quote)
	assert.False(t, snap.Shown())
}

func TestClickCountsAndAvoidsRepeats(t *testing.T) {
	sampler := quotes.NewSampler([]string{"A", "B", "C"}, quotes.WithSource(rand.NewPCG(3, 4)))
	s := New("abc")

	prev := quotes.NoIndex
	for i := 1; i <= 50; i++ {
		snap := s.Click(sampler)
		require.Equal(t, i, snap.Clicks)
		require.NotEqual(t, prev, snap.Index)
		require.Equal(t, []string{"A", "B", "C"}[snap.Index], snap.Quote)
		require.False(t, snap.Fallback)
		prev = snap.Index
	}
	assert.Equal(t, prev, s.Snapshot().Index)
}

func TestReset(t *testing.T) {
	sampler := quotes.NewSampler([]string{"A", "B"})
	s := New("abc")

	s.Click(sampler)
	s.Click(sampler)
	before := s.LastTouched()
	time.Sleep(time.Millisecond)

	snap := s.Reset()
	assert.Equal(t, 0, snap.Clicks)
	assert.Equal(t, quotes.NoIndex, snap.Index)
	assert.Equal(t, GreetingText, snap.Quote)
	assert.True(t, s.LastTouched().After(before))

	snap = s.Click(sampler)
	assert.Equal(t, 1, snap.Clicks)
}

func TestClickWithEmptyList(t *testing.T) {
	s := New("abc")

	snap := s.Click(quotes.NewSampler(nil))
	assert.True(t, snap.Fallback)
	assert.Equal(t, quotes.FallbackText, snap.Quote)
	assert.Equal(t, quotes.NoIndex, snap.Index)
	assert.Equal(t, 1, snap.Clicks)
	assert.True(t, s.Snapshot().Fallback)

	assert.False(t, s.Reset().Fallback)
}

func TestStore(t *testing.T) {
	store := NewStore(0)

	sess := store.Create()
	require.NotEmpty(t, sess.ID())
	assert.Equal(t, 1, store.Count())

	got, err := store.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	var evicted []string
	store.OnEvicted(func(id string) { evicted = append(evicted, id) })
	store.Delete(sess.ID())

	_, err = store.Get(sess.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{sess.ID()}, evicted)
	assert.Zero(t, store.Count())
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(20 * time.Millisecond)

	sess := store.Create()
	time.Sleep(50 * time.Millisecond)

	_, err := store.Get(sess.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDoesNotUndoDelete(t *testing.T) {
	store := NewStore(time.Minute)

	for i := 0; i < 200; i++ {
		sess := store.Create()
		id := sess.ID()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = store.Get(id)
			}
		}()
		store.Delete(id)
		wg.Wait()

		_, err := store.Get(id)
		require.ErrorIs(t, err, ErrNotFound)
		require.Zero(t, store.Count())
	}
}
