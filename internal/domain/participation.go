package domain

import (
	"context"
	"time"
)

// RequestStatus is the lifecycle status of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is a requester's ask to attend an event.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event_id"`
	RequesterID int64         `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewParticipationRequest returns a request with the given status. ID is set by the repository on create.
func NewParticipationRequest(eventID, requesterID int64, status RequestStatus, createdAt time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		CreatedAt:   createdAt,
	}
}

// ModerationResult is the outcome of a batch moderation: every targeted request ends up in exactly one list.
// swagger:model ModerationResult
type ModerationResult struct {
	Confirmed []*ParticipationRequest `json:"confirmed_requests"`
	Rejected  []*ParticipationRequest `json:"rejected_requests"`
}

// ParticipationRequestRepository defines the interface for participation request storage.
type ParticipationRequestRepository interface {
	Create(ctx context.Context, req *ParticipationRequest) error
	GetByIDAndRequester(ctx context.Context, id, requesterID int64) (*ParticipationRequest, error)
	ExistsActive(ctx context.Context, eventID, requesterID int64) (bool, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	ListByEventAndIDs(ctx context.Context, eventID int64, ids []int64) ([]*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, ids []int64, status RequestStatus) error
}

// ParticipationService defines the business logic for participation requests and moderation.
type ParticipationService interface {
	CreateRequest(ctx context.Context, requesterID, eventID int64) (*ParticipationRequest, error)
	CancelOwnRequest(ctx context.Context, requesterID, requestID int64) (*ParticipationRequest, error)
	ListOwnRequests(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListRequestsForEvent(ctx context.Context, initiatorID, eventID int64) ([]*ParticipationRequest, error)
	ResolveBatch(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, status RequestStatus) (*ModerationResult, error)
}
