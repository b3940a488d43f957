package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id, location_lat, location_lon,
		paid, participant_limit, request_moderation, confirmed_requests, state, event_date, created_on, published_on`

type eventRepository struct {
	DB dbtx
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var state string
	var publishedOn sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&e.ConfirmedRequests, &state, &e.EventDate, &e.CreatedOn, &publishedOn,
	)
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if publishedOn.Valid {
		e.PublishedOn = &publishedOn.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id, location_lat, location_lon,
			paid, participant_limit, request_moderation, confirmed_requests, state, event_date, created_on, published_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID, e.Location.Lat, e.Location.Lon,
		e.Paid, e.ParticipantLimit, e.RequestModeration, e.ConfirmedRequests, string(e.State),
		e.EventDate, e.CreatedOn, e.PublishedOn,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, initiatorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE initiator_id = $1`, initiatorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE initiator_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, initiatorID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Search(ctx context.Context, f domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where, args := searchClause(f)
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	query := fmt.Sprintf(`SELECT `+eventColumns+` FROM events%s ORDER BY id LIMIT $%d OFFSET $%d`, where, n+1, n+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, params.Limit(), params.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// searchClause renders the filter as a WHERE clause with numbered placeholders.
func searchClause(f domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.InitiatorIDs) > 0 {
		add("initiator_id = ANY($%d)", pq.Array(f.InitiatorIDs))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		add("state = ANY($%d)", pq.Array(states))
	}
	if len(f.CategoryIDs) > 0 {
		add("category_id = ANY($%d)", pq.Array(f.CategoryIDs))
	}
	if f.RangeStart != nil {
		add("event_date >= $%d", *f.RangeStart)
	}
	if f.RangeEnd != nil {
		add("event_date < $%d", *f.RangeEnd)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update persists every editable column. confirmed_requests is left to SetConfirmedRequests.
func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET title = $1, annotation = $2, description = $3, category_id = $4,
			location_lat = $5, location_lon = $6, paid = $7, participant_limit = $8,
			request_moderation = $9, state = $10, event_date = $11, published_on = $12
		WHERE id = $13
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.Location.Lat, e.Location.Lon, e.Paid,
		e.ParticipantLimit, e.RequestModeration, string(e.State), e.EventDate, e.PublishedOn, e.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *eventRepository) SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE events SET confirmed_requests = $1 WHERE id = $2`, confirmed, id)
	if err != nil {
		return fmt.Errorf("set confirmed requests: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
