package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCreateBody = `{
	"title": "Jazz night",
	"annotation": "Live jazz quartet in the park",
	"description": "Bring a blanket, the music starts at sunset.",
	"category_id": 3,
	"event_date": "2030-06-01T18:00:00Z",
	"location": {"lat": 55.75, "lon": 37.61},
	"participant_limit": 10
}`

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     int64
		svc        *fakeEventService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       validCreateBody,
			userID:     7,
			svc:        &fakeEventService{event: &domain.Event{ID: 41, Title: "Jazz night"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unauthenticated",
			body:       validCreateBody,
			svc:        &fakeEventService{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "unknown field",
			body:       `{"title":"Jazz night","state":"PUBLISHED"}`,
			userID:     7,
			svc:        &fakeEventService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "short annotation",
			body:       `{"title":"Jazz","annotation":"short","description":"Bring a blanket, the music starts at sunset.","category_id":3,"event_date":"2030-06-01T18:00:00Z"}`,
			userID:     7,
			svc:        &fakeEventService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "date too soon",
			body:       validCreateBody,
			userID:     7,
			svc:        &fakeEventService{err: fmt.Errorf("%w: too soon", domain.ErrDateConstraintViolation)},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeDateConstraint,
		},
		{
			name:       "unknown category",
			body:       validCreateBody,
			userID:     7,
			svc:        &fakeEventService{err: fmt.Errorf("category 3: %w", domain.ErrNotFound)},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEventController(testLogger, tt.svc)
			rr := httptest.NewRecorder()
			c.CreateEvent(rr, newRequest(http.MethodPost, "/users/me/events", tt.body, tt.userID, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			assert.Nil(t, env.Error)
			assert.Equal(t, int64(7), tt.svc.lastInitiatorID)
			assert.Equal(t, "Jazz night", tt.svc.lastInput.Title)
			assert.Equal(t, time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC), tt.svc.lastInput.EventDate.UTC())
			require.NotNil(t, tt.svc.lastInput.ParticipantLimit)
			assert.Equal(t, 10, *tt.svc.lastInput.ParticipantLimit)
			assert.Nil(t, tt.svc.lastInput.RequestModeration)
		})
	}
}

func TestEventController_ListMyEvents(t *testing.T) {
	svc := &fakeEventService{events: []*domain.Event{{ID: 1}, {ID: 2}}, total: 5}
	c := NewEventController(testLogger, svc)
	rr := httptest.NewRecorder()
	c.ListMyEvents(rr, newRequest(http.MethodGet, "/users/me/events?from=2&size=2", "", 7, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{From: 2, Size: 2}, svc.lastParams)

	var env struct {
		Data EventListData `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Len(t, env.Data.Items, 2)
	assert.Equal(t, helpers.PaginationMeta{From: 2, Size: 2, Total: 5, HasMore: true}, env.Data.Pagination)

	svc.lastCall = ""
	rr = httptest.NewRecorder()
	c.ListMyEvents(rr, newRequest(http.MethodGet, "/users/me/events?size=0", "", 7, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.lastCall)
}

func TestEventController_GetMyEvent(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		svc        *fakeEventService
		wantStatus int
	}{
		{name: "found", eventID: "41", svc: &fakeEventService{event: &domain.Event{ID: 41}}, wantStatus: http.StatusOK},
		{name: "bad id", eventID: "abc", svc: &fakeEventService{}, wantStatus: http.StatusBadRequest},
		{name: "someone else's", eventID: "41", svc: &fakeEventService{err: domain.ErrNotFound}, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEventController(testLogger, tt.svc)
			rr := httptest.NewRecorder()
			c.GetMyEvent(rr, newRequest(http.MethodGet, "/users/me/events/"+tt.eventID, "", 7, map[string]string{"eventID": tt.eventID}))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestEventController_UpdateMyEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeEventService
		wantStatus int
		wantCode   string
		check      func(t *testing.T, svc *fakeEventService)
	}{
		{
			name:       "fields and cancel review",
			body:       `{"title":"Jazz evening","location":{"lat":1,"lon":2},"state_action":"CANCEL_REVIEW"}`,
			svc:        &fakeEventService{event: &domain.Event{ID: 41, State: domain.EventStateCanceled}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, svc *fakeEventService) {
				upd := svc.lastUserUpdate
				require.NotNil(t, upd.Fields.Title)
				assert.Equal(t, "Jazz evening", *upd.Fields.Title)
				assert.Equal(t, &domain.Location{Lat: 1, Lon: 2}, upd.Fields.Location)
				assert.Nil(t, upd.Fields.Description)
				require.NotNil(t, upd.Action)
				assert.Equal(t, domain.ActionCancelReview, *upd.Action)
			},
		},
		{
			name:       "admin action rejected",
			body:       `{"state_action":"PUBLISH_EVENT"}`,
			svc:        &fakeEventService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "negative limit",
			body:       `{"participant_limit":-1}`,
			svc:        &fakeEventService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "published event",
			body:       `{"title":"Jazz evening"}`,
			svc:        &fakeEventService{err: domain.ErrValidation},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeValidation,
		},
		{
			name:       "lock busy",
			body:       `{"title":"Jazz evening"}`,
			svc:        &fakeEventService{err: domain.ErrConflict},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEventController(testLogger, tt.svc)
			rr := httptest.NewRecorder()
			c.UpdateMyEvent(rr, newRequest(http.MethodPatch, "/users/me/events/41", tt.body, 7, map[string]string{"eventID": "41"}))
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				env := decodeEnvelope(t, rr)
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
			}
			if tt.check != nil {
				assert.Equal(t, int64(41), tt.svc.lastEventID)
				tt.check(t, tt.svc)
			}
		})
	}
}

func TestEventController_GetPublishedEvent(t *testing.T) {
	svc := &fakeEventService{event: &domain.Event{ID: 41, State: domain.EventStatePublished, Views: 3}}
	c := NewEventController(testLogger, svc)
	req := newRequest(http.MethodGet, "/events/41", "", 0, map[string]string{"eventID": "41"})
	req.RemoteAddr = "10.1.2.3:5555"
	rr := httptest.NewRecorder()
	c.GetPublishedEvent(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PublicEventView{URI: "/events/41", IP: "10.1.2.3"}, svc.lastView)

	svc.err = domain.ErrNotFound
	rr = httptest.NewRecorder()
	c.GetPublishedEvent(rr, newRequest(http.MethodGet, "/events/41", "", 0, map[string]string{"eventID": "41"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
