package usecases

import (
	"errors"
	"fmt"

	"stanbot/internal/domain"
	"stanbot/internal/metrics"
	"stanbot/internal/quotes"
	"stanbot/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// QuoteUsecase defines the robot interactions available to a client.
type QuoteUsecase interface {
	Open(id string) (domain.Snapshot, error)
	Click(id string) (domain.Snapshot, error)
	Reset(id string) (domain.Snapshot, error)
	State(id string) (domain.Snapshot, error)
	End(id string) error
	Random() string
}

type quoteUsecaseImpl struct {
	sampler *quotes.Sampler
	store   *session.Store
	metrics *metrics.Metrics
}

// NewQuoteUsecase wires the sampler and session store together.
func NewQuoteUsecase(sampler *quotes.Sampler, store *session.Store, m *metrics.Metrics) QuoteUsecase {
	store.OnEvicted(func(string) {
		m.Sessions.Dec()
	})
	return &quoteUsecaseImpl{
		sampler: sampler,
		store:   store,
		metrics: m,
	}
}

// Open resumes the session with the given id, or starts a new one when id is empty.
func (q *quoteUsecaseImpl) Open(id string) (domain.Snapshot, error) {
	if id == "" {
		sess := q.store.Create()
		q.metrics.Sessions.Inc()
		return sess.Snapshot(), nil
	}

	sess, err := q.get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Click samples the next quote for the session.
func (q *quoteUsecaseImpl) Click(id string) (domain.Snapshot, error) {
	sess, err := q.get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := sess.Click(q.sampler)
	q.metrics.Clicks.Inc()
	if snap.Fallback {
		q.metrics.Fallbacks.Inc()
	}
	return snap, nil
}

// Reset clears the session's quote and click count.
func (q *quoteUsecaseImpl) Reset(id string) (domain.Snapshot, error) {
	sess, err := q.get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	q.metrics.Resets.Inc()
	return sess.Reset(), nil
}

func (q *quoteUsecaseImpl) State(id string) (domain.Snapshot, error) {
	sess, err := q.get(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// End forgets the session.
func (q *quoteUsecaseImpl) End(id string) error {
	if _, err := q.get(id); err != nil {
		return err
	}
	q.store.Delete(id)
	return nil
}

// Random returns a quote without consulting or changing any session.
func (q *quoteUsecaseImpl) Random() string {
	q.metrics.Random.Inc()
	if q.sampler.Empty() {
		q.metrics.Fallbacks.Inc()
	}
	return q.sampler.Random()
}

func (q *quoteUsecaseImpl) get(id string) (*session.Session, error) {
	sess, err := q.store.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}
