package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"explorewithme/internal/domain"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id, location_lat, location_lon,
		paid, participant_limit, request_moderation, confirmed_requests, state, event_date, created_on, published_on`

type eventRepository struct {
	DB dbtx
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		state                string
		eventDate, createdOn int64
		publishedOn          sql.NullInt64
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&e.ConfirmedRequests, &state, &eventDate, &createdOn, &publishedOn,
	)
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	e.EventDate = fromMillis(eventDate)
	e.CreatedOn = fromMillis(createdOn)
	if publishedOn.Valid {
		t := fromMillis(publishedOn.Int64)
		e.PublishedOn = &t
	}
	return e, nil
}

func publishedMillis(e *domain.Event) sql.NullInt64 {
	if e.PublishedOn == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*e.PublishedOn), Valid: true}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id, location_lat, location_lon,
			paid, participant_limit, request_moderation, confirmed_requests, state, event_date, created_on, published_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID, e.Location.Lat, e.Location.Lon,
		e.Paid, e.ParticipantLimit, e.RequestModeration, e.ConfirmedRequests, string(e.State),
		toMillis(e.EventDate), toMillis(e.CreatedOn), publishedMillis(e),
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
}

func (r *eventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ? AND initiator_id = ?`, id, initiatorID)
}

func (r *eventRepository) get(ctx context.Context, query string, args ...any) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE initiator_id = ?`, initiatorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE initiator_id = ? ORDER BY id LIMIT ? OFFSET ?`
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
	query := `SELECT ` + eventColumns + ` FROM events` + where + ` ORDER BY id LIMIT ? OFFSET ?`
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

func searchClause(f domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	if len(f.InitiatorIDs) > 0 {
		marks, ids := inList(nil, f.InitiatorIDs)
		conds = append(conds, "initiator_id IN ("+marks+")")
		args = append(args, ids...)
	}
	if len(f.States) > 0 {
		marks := make([]string, len(f.States))
		for i, st := range f.States {
			marks[i] = "?"
			args = append(args, string(st))
		}
		conds = append(conds, "state IN ("+strings.Join(marks, ", ")+")")
	}
	if len(f.CategoryIDs) > 0 {
		marks, ids := inList(nil, f.CategoryIDs)
		conds = append(conds, "category_id IN ("+marks+")")
		args = append(args, ids...)
	}
	if f.RangeStart != nil {
		conds = append(conds, "event_date >= ?")
		args = append(args, toMillis(*f.RangeStart))
	}
	if f.RangeEnd != nil {
		conds = append(conds, "event_date < ?")
		args = append(args, toMillis(*f.RangeEnd))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET title = ?, annotation = ?, description = ?, category_id = ?,
			location_lat = ?, location_lon = ?, paid = ?, participant_limit = ?,
			request_moderation = ?, state = ?, event_date = ?, published_on = ?
		WHERE id = ?
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.Location.Lat, e.Location.Lon, e.Paid,
		e.ParticipantLimit, e.RequestModeration, string(e.State), toMillis(e.EventDate), publishedMillis(e), e.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *eventRepository) SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE events SET confirmed_requests = ? WHERE id = ?`, confirmed, id)
	if err != nil {
		return fmt.Errorf("set confirmed requests: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
