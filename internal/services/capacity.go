package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"explorewithme/internal/domain"
)

const (
	lockRetryInitialInterval = 20 * time.Millisecond
	lockRetryMaxInterval     = 250 * time.Millisecond
)

// CapacityAccountant owns every event's confirmed-participant counter.
// All reads and writes of the counter happen through a Ledger obtained from Within
// or WithinRetrying, inside the event's lock.
type CapacityAccountant struct {
	tx          domain.Transactor
	maxAttempts uint
}

// NewCapacityAccountant returns an accountant that serializes through tx.
// maxAttempts bounds WithinRetrying; values below 1 mean a single attempt.
func NewCapacityAccountant(tx domain.Transactor, maxAttempts int) *CapacityAccountant {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CapacityAccountant{tx: tx, maxAttempts: uint(maxAttempts)}
}

// Ledger is the accountant's view of one locked event. It is valid only inside the
// callback that received it.
type Ledger struct {
	repos domain.TxRepositories
	event *domain.Event
}

// Event returns the event as read under the lock. Counter changes made through the
// ledger are reflected in it.
func (l *Ledger) Event() *domain.Event {
	return l.event
}

// Requests returns the request repository bound to the locked transaction.
func (l *Ledger) Requests() domain.ParticipationRequestRepository {
	return l.repos.Requests()
}

// Remaining returns the free slots and whether the event is limited at all.
func (l *Ledger) Remaining() (int, bool) {
	if l.event.ParticipantLimit == 0 {
		return 0, false
	}
	return l.event.ParticipantLimit - l.event.ConfirmedRequests, true
}

// Reserve admits up to n participants and returns how many were admitted.
// It fails with ErrCapacityExceeded when a limited event has no slot left.
func (l *Ledger) Reserve(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	admitted := n
	if remaining, limited := l.Remaining(); limited {
		if remaining <= 0 {
			return 0, fmt.Errorf("%w: event %d has %d of %d slots taken",
				domain.ErrCapacityExceeded, l.event.ID, l.event.ConfirmedRequests, l.event.ParticipantLimit)
		}
		admitted = min(n, remaining)
	}
	confirmed := l.event.ConfirmedRequests + admitted
	if err := l.repos.Events().SetConfirmedRequests(ctx, l.event.ID, confirmed); err != nil {
		return 0, fmt.Errorf("reserve capacity: %w", err)
	}
	l.event.ConfirmedRequests = confirmed
	return admitted, nil
}

// Release frees n slots; the counter never drops below zero.
func (l *Ledger) Release(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	confirmed := max(l.event.ConfirmedRequests-n, 0)
	if confirmed == l.event.ConfirmedRequests {
		return nil
	}
	if err := l.repos.Events().SetConfirmedRequests(ctx, l.event.ID, confirmed); err != nil {
		return fmt.Errorf("release capacity: %w", err)
	}
	l.event.ConfirmedRequests = confirmed
	return nil
}

// Within runs fn once inside the event's lock. Everything fn writes commits together.
func (a *CapacityAccountant) Within(ctx context.Context, eventID int64, fn func(ctx context.Context, l *Ledger) error) error {
	return a.tx.WithEventLock(ctx, eventID, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
		return fn(ctx, &Ledger{repos: repos, event: event})
	})
}

// WithinRetrying is Within with a bounded exponential backoff on ErrConflict.
// Once the attempts are exhausted the last ErrConflict is returned.
func (a *CapacityAccountant) WithinRetrying(ctx context.Context, eventID int64, fn func(ctx context.Context, l *Ledger) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lockRetryInitialInterval
	b.MaxInterval = lockRetryMaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := a.Within(ctx, eventID, fn)
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(a.maxAttempts))
	return err
}
