package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"explorewithme/internal/delivery/http/middleware"
	"explorewithme/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err    error
	event  *domain.Event
	events []*domain.Event
	total  int

	lastInitiatorID int64
	lastEventID     int64
	lastInput       domain.NewEventInput
	lastParams      domain.PaginationParams
	lastFilter      domain.EventFilter
	lastUserUpdate  domain.InitiatorEventUpdate
	lastAdminUpdate domain.AdminEventUpdate
	lastView        domain.PublicEventView
	lastCall        string
}

func (f *fakeEventService) result(call string) (*domain.Event, error) {
	f.lastCall = call
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) CreateEvent(ctx context.Context, initiatorID int64, in domain.NewEventInput) (*domain.Event, error) {
	f.lastInitiatorID, f.lastInput = initiatorID, in
	return f.result("create")
}

func (f *fakeEventService) ListInitiatorEvents(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastInitiatorID, f.lastParams, f.lastCall = initiatorID, params, "list"
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	f.lastInitiatorID, f.lastEventID = initiatorID, eventID
	return f.result("get")
}

func (f *fakeEventService) UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, upd domain.InitiatorEventUpdate) (*domain.Event, error) {
	f.lastInitiatorID, f.lastEventID, f.lastUserUpdate = initiatorID, eventID, upd
	return f.result("update_user")
}

func (f *fakeEventService) UpdateEventByAdmin(ctx context.Context, eventID int64, upd domain.AdminEventUpdate) (*domain.Event, error) {
	f.lastEventID, f.lastAdminUpdate = eventID, upd
	return f.result("update_admin")
}

func (f *fakeEventService) PublishEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	f.lastEventID = eventID
	return f.result("publish")
}

func (f *fakeEventService) SearchEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter, f.lastParams, f.lastCall = filter, params, "search"
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) RejectEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	f.lastEventID = eventID
	return f.result("reject")
}

func (f *fakeEventService) GetPublishedEvent(ctx context.Context, eventID int64, view domain.PublicEventView) (*domain.Event, error) {
	f.lastEventID, f.lastView = eventID, view
	return f.result("public")
}

// fakeParticipationService implements domain.ParticipationService for handler tests.
type fakeParticipationService struct {
	err        error
	request    *domain.ParticipationRequest
	requests   []*domain.ParticipationRequest
	moderation *domain.ModerationResult

	lastUserID    int64
	lastEventID   int64
	lastRequestID int64
	lastIDs       []int64
	lastStatus    domain.RequestStatus
}

func (f *fakeParticipationService) CreateRequest(ctx context.Context, requesterID, eventID int64) (*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastEventID = requesterID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.request, nil
}

func (f *fakeParticipationService) CancelOwnRequest(ctx context.Context, requesterID, requestID int64) (*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastRequestID = requesterID, requestID
	if f.err != nil {
		return nil, f.err
	}
	return f.request, nil
}

func (f *fakeParticipationService) ListOwnRequests(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	f.lastUserID = requesterID
	if f.err != nil {
		return nil, f.err
	}
	return f.requests, nil
}

func (f *fakeParticipationService) ListRequestsForEvent(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastEventID = initiatorID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.requests, nil
}

func (f *fakeParticipationService) ResolveBatch(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, status domain.RequestStatus) (*domain.ModerationResult, error) {
	f.lastUserID, f.lastEventID, f.lastIDs, f.lastStatus = initiatorID, eventID, requestIDs, status
	if f.err != nil {
		return nil, f.err
	}
	return f.moderation, nil
}

// newRequest builds a request with path values and, when userID > 0, an authenticated principal.
func newRequest(method, target, body string, userID int64, pathValues map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	if userID > 0 {
		r = r.WithContext(middleware.SetPrincipal(r.Context(), domain.Principal{UserID: userID}))
	}
	return r
}
