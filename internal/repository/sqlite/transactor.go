package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"explorewithme/internal/domain"
)

type txRepositories struct {
	tx *sql.Tx
}

func (r txRepositories) Events() domain.EventRepository { return &eventRepository{DB: r.tx} }
func (r txRepositories) Requests() domain.ParticipationRequestRepository {
	return &requestRepository{DB: r.tx}
}

// Transactor returns the store's per-event serialization boundary.
func (s *Store) Transactor() domain.Transactor {
	return s
}

// WithEventLock takes the only connection, opens an immediate transaction and reads the
// event. Waiting longer than the lock timeout for the connection yields domain.ErrConflict.
// fn must only touch the database through repos.
func (s *Store) WithEventLock(ctx context.Context, eventID int64, fn domain.LockedFunc) (err error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return translateError(fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := txRepositories{tx: tx}
	event, err := repos.Events().GetByID(ctx, eventID)
	if err != nil {
		return translateError(err)
	}
	if err = fn(ctx, repos, event); err != nil {
		return translateError(err)
	}
	if err = tx.Commit(); err != nil {
		return translateError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) (*sql.Conn, error) {
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	conn, err := s.db.Conn(lockCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: event lock wait exceeded %s", domain.ErrConflict, s.lockTimeout)
		}
		return nil, err
	}
	return conn, nil
}
