package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"explorewithme/internal/domain"
)

const requestColumns = `id, event_id, requester_id, status, created_at`

type requestRepository struct {
	DB dbtx
}

func NewParticipationRequestRepository(db *sql.DB) domain.ParticipationRequestRepository {
	return &requestRepository{
		DB: db,
	}
}

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	var status string
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.CreatedAt); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return req, nil
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, req.EventID, req.RequesterID, string(req.Status), req.CreatedAt).Scan(&req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: active request already exists", domain.ErrValidation)
		}
		return err
	}
	return nil
}

func (r *requestRepository) GetByIDAndRequester(ctx context.Context, id, requesterID int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1 AND requester_id = $2`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id, requesterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) ExistsActive(ctx context.Context, eventID, requesterID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM participation_requests WHERE event_id = $1 AND requester_id = $2 AND status <> $3)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, requesterID, string(domain.RequestStatusCanceled)).Scan(&exists)
	return exists, err
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, eventID)
}

func (r *requestRepository) ListByEventAndIDs(ctx context.Context, eventID int64, ids []int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = $1 AND id = ANY($2) ORDER BY created_at, id`
	return r.list(ctx, query, eventID, pq.Array(ids))
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE requester_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, requesterID)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `UPDATE participation_requests SET status = $1 WHERE id = ANY($2)`, string(status), pq.Array(ids))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: active request already exists", domain.ErrValidation)
		}
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

func (r *requestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ParticipationRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
