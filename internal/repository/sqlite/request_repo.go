package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"explorewithme/internal/domain"
)

const requestColumns = `id, event_id, requester_id, status, created_at`

type requestRepository struct {
	DB dbtx
}

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	var (
		status    string
		createdAt int64
	)
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &createdAt); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	req.CreatedAt = fromMillis(createdAt)
	return req, nil
}

// inList returns "?, ?, ?" for ids and the matching args appended to prefix.
func inList(prefix []any, ids []int64) (string, []any) {
	args := append([]any{}, prefix...)
	marks := make([]string, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args = append(args, id)
	}
	return strings.Join(marks, ", "), args
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, status, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, req.EventID, req.RequesterID, string(req.Status), toMillis(req.CreatedAt)).Scan(&req.ID)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: active request already exists", domain.ErrValidation)
		}
		return err
	}
	return nil
}

func (r *requestRepository) GetByIDAndRequester(ctx context.Context, id, requesterID int64) (*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = ? AND requester_id = ?`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id, requesterID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return req, err
}

func (r *requestRepository) ExistsActive(ctx context.Context, eventID, requesterID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM participation_requests WHERE event_id = ? AND requester_id = ? AND status <> ?)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, requesterID, string(domain.RequestStatusCanceled)).Scan(&exists)
	return exists, err
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, eventID)
}

func (r *requestRepository) ListByEventAndIDs(ctx context.Context, eventID int64, ids []int64) ([]*domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []*domain.ParticipationRequest{}, nil
	}
	marks, args := inList([]any{eventID}, ids)
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE event_id = ? AND id IN (` + marks + `) ORDER BY created_at, id`
	return r.list(ctx, query, args...)
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE requester_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, requesterID)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	marks, args := inList([]any{string(status)}, ids)
	_, err := r.DB.ExecContext(ctx, `UPDATE participation_requests SET status = ? WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		if isConstraintError(err) {
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
