package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"explorewithme/internal/domain"
)

type txRepositories struct {
	events   *eventRepository
	requests *requestRepository
}

func (r txRepositories) Events() domain.EventRepository                   { return r.events }
func (r txRepositories) Requests() domain.ParticipationRequestRepository { return r.requests }

type transactor struct {
	DB          *sql.DB
	lockTimeout time.Duration
}

// NewTransactor returns a Transactor that serializes work per event with SELECT ... FOR UPDATE.
// Waiting longer than lockTimeout for the row lock fails with domain.ErrConflict.
func NewTransactor(db *sql.DB, lockTimeout time.Duration) domain.Transactor {
	return &transactor{DB: db, lockTimeout: lockTimeout}
}

func (t *transactor) WithEventLock(ctx context.Context, eventID int64, fn domain.LockedFunc) (err error) {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if t.lockTimeout > 0 {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return translateError(err)
	}

	repos := txRepositories{
		events:   &eventRepository{DB: tx},
		requests: &requestRepository{DB: tx},
	}
	if err = fn(ctx, repos, event); err != nil {
		return translateError(err)
	}
	if err = tx.Commit(); err != nil {
		return translateError(fmt.Errorf("commit: %w", err))
	}
	return nil
}
