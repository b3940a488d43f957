// Package sqlite is the single-file storage backend. One connection serializes every
// transaction, which is what gives WithEventLock its exclusivity.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"explorewithme/internal/domain"
	"explorewithme/internal/platform/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Store owns the SQLite handle and hands out repositories bound to it.
type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// Open opens (creating if needed) the database at path and applies migrations.
// lockTimeout bounds how long WithEventLock waits for the connection.
func Open(ctx context.Context, path string, lockTimeout time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, db, migrationsFS, "migrations", migrate.DialectSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, lockTimeout: lockTimeout}, nil
}

// DB exposes the handle for health checks and fixtures.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Events() domain.EventRepository {
	return &eventRepository{DB: s.db}
}

func (s *Store) Requests() domain.ParticipationRequestRepository {
	return &requestRepository{DB: s.db}
}

func (s *Store) Users() domain.UserDirectory {
	return &userRepository{DB: s.db}
}

func (s *Store) Categories() domain.CategoryDirectory {
	return &categoryRepository{DB: s.db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

func translateError(err error) error {
	if isBusyError(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}
