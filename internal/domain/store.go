package domain

import "context"

// TxRepositories exposes repositories bound to one open transaction.
type TxRepositories interface {
	Events() EventRepository
	Requests() ParticipationRequestRepository
}

// LockedFunc runs inside a transaction holding the event's exclusive lock.
// event is the row as read under that lock.
type LockedFunc func(ctx context.Context, repos TxRepositories, event *Event) error

// Transactor provides the per-event serialization boundary.
// WithEventLock commits when fn returns nil and rolls back otherwise.
// A missing event yields ErrNotFound; a lock that cannot be taken in time yields ErrConflict.
type Transactor interface {
	WithEventLock(ctx context.Context, eventID int64, fn LockedFunc) error
}
