package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"explorewithme/internal/domain"
)

// testLogger discards output so tests don't assert on logs.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// memStore is an in-memory store whose WithEventLock serializes transactions and rolls
// back every change when the callback fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events        map[int64]*domain.Event
	requests      map[int64]*domain.ParticipationRequest
	users         map[int64]*domain.User
	categories    map[int64]bool
	nextEventID   int64
	nextRequestID int64

	conflicts int // WithEventLock fails with ErrConflict this many times before succeeding
	lockCalls int
}

func newMemStore() *memStore {
	return &memStore{
		events:        make(map[int64]*domain.Event),
		requests:      make(map[int64]*domain.ParticipationRequest),
		users:         make(map[int64]*domain.User),
		categories:    make(map[int64]bool),
		nextEventID:   1,
		nextRequestID: 1,
	}
}

func (m *memStore) addUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &domain.User{ID: id, Name: fmt.Sprintf("user %d", id), Email: fmt.Sprintf("user%d@example.com", id)}
}

func (m *memStore) addEvent(e domain.Event) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextEventID
	m.nextEventID++
	m.events[e.ID] = &e
	return e.ID
}

func (m *memStore) addRequest(r domain.ParticipationRequest) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextRequestID
	m.nextRequestID++
	m.requests[r.ID] = &r
	return r.ID
}

func (m *memStore) event(id int64) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *memStore) request(id int64) domain.ParticipationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.requests[id]
}

func (m *memStore) countByStatus(eventID int64, status domain.RequestStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.EventID == eventID && r.Status == status {
			n++
		}
	}
	return n
}

func (m *memStore) WithEventLock(ctx context.Context, eventID int64, fn domain.LockedFunc) error {
	m.mu.Lock()
	m.lockCalls++
	if m.conflicts > 0 {
		m.conflicts--
		m.mu.Unlock()
		return fmt.Errorf("%w: lock timeout", domain.ErrConflict)
	}
	m.mu.Unlock()

	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	events, requests, nextRequestID := m.snapshot()
	ev, ok := m.events[eventID]
	var locked *domain.Event
	if ok {
		c := *ev
		locked = &c
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: event %d", domain.ErrNotFound, eventID)
	}

	if err := fn(ctx, memTx{m}, locked); err != nil {
		m.mu.Lock()
		m.events, m.requests, m.nextRequestID = events, requests, nextRequestID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) snapshot() (map[int64]*domain.Event, map[int64]*domain.ParticipationRequest, int64) {
	events := make(map[int64]*domain.Event, len(m.events))
	for id, e := range m.events {
		c := *e
		events[id] = &c
	}
	requests := make(map[int64]*domain.ParticipationRequest, len(m.requests))
	for id, r := range m.requests {
		c := *r
		requests[id] = &c
	}
	return events, requests, m.nextRequestID
}

type memTx struct{ m *memStore }

func (t memTx) Events() domain.EventRepository                   { return memEvents{t.m} }
func (t memTx) Requests() domain.ParticipationRequestRepository { return memRequests{t.m} }

type memEvents struct{ m *memStore }

func (r memEvents) Create(ctx context.Context, e *domain.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e.ID = r.m.nextEventID
	r.m.nextEventID++
	c := *e
	r.m.events[e.ID] = &c
	return nil
}

func (r memEvents) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r memEvents) GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r memEvents) ListByInitiator(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []*domain.Event
	for _, e := range r.m.events {
		if e.InitiatorID == initiatorID {
			c := *e
			all = append(all, &c)
		}
	}
	slices.SortFunc(all, func(a, b *domain.Event) int { return int(a.ID - b.ID) })
	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (r memEvents) Search(ctx context.Context, f domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []*domain.Event
	for _, e := range r.m.events {
		switch {
		case len(f.InitiatorIDs) > 0 && !slices.Contains(f.InitiatorIDs, e.InitiatorID),
			len(f.States) > 0 && !slices.Contains(f.States, e.State),
			len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, e.CategoryID),
			f.RangeStart != nil && e.EventDate.Before(*f.RangeStart),
			f.RangeEnd != nil && !e.EventDate.Before(*f.RangeEnd):
			continue
		}
		c := *e
		all = append(all, &c)
	}
	slices.SortFunc(all, func(a, b *domain.Event) int { return int(a.ID - b.ID) })
	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (r memEvents) Update(ctx context.Context, e *domain.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.events[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	c := *e
	c.ConfirmedRequests = cur.ConfirmedRequests
	r.m.events[e.ID] = &c
	return nil
}

func (r memEvents) SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.ConfirmedRequests = confirmed
	return nil
}

type memRequests struct{ m *memStore }

func (r memRequests) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.requests {
		if existing.EventID == req.EventID && existing.RequesterID == req.RequesterID && existing.Status != domain.RequestStatusCanceled {
			return fmt.Errorf("%w: duplicate request", domain.ErrValidation)
		}
	}
	req.ID = r.m.nextRequestID
	r.m.nextRequestID++
	c := *req
	r.m.requests[req.ID] = &c
	return nil
}

func (r memRequests) GetByIDAndRequester(ctx context.Context, id, requesterID int64) (*domain.ParticipationRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.requests[id]
	if !ok || req.RequesterID != requesterID {
		return nil, domain.ErrNotFound
	}
	c := *req
	return &c, nil
}

func (r memRequests) ExistsActive(ctx context.Context, eventID, requesterID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, req := range r.m.requests {
		if req.EventID == eventID && req.RequesterID == requesterID && req.Status != domain.RequestStatusCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (r memRequests) list(keep func(*domain.ParticipationRequest) bool) []*domain.ParticipationRequest {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, req := range r.m.requests {
		if keep(req) {
			c := *req
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.ParticipationRequest) int { return int(a.ID - b.ID) })
	return out
}

func (r memRequests) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return r.list(func(req *domain.ParticipationRequest) bool { return req.EventID == eventID }), nil
}

func (r memRequests) ListByEventAndIDs(ctx context.Context, eventID int64, ids []int64) ([]*domain.ParticipationRequest, error) {
	return r.list(func(req *domain.ParticipationRequest) bool {
		return req.EventID == eventID && slices.Contains(ids, req.ID)
	}), nil
}

func (r memRequests) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return r.list(func(req *domain.ParticipationRequest) bool { return req.RequesterID == requesterID }), nil
}

func (r memRequests) UpdateStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, id := range ids {
		req, ok := r.m.requests[id]
		if !ok {
			return domain.ErrNotFound
		}
		req.Status = status
	}
	return nil
}

type memUsers struct{ m *memStore }

func (u memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	user, ok := u.m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *user
	return &c, nil
}

func (u memUsers) Exists(ctx context.Context, id int64) (bool, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	_, ok := u.m.users[id]
	return ok, nil
}

type memCategories struct{ m *memStore }

func (c memCategories) Exists(ctx context.Context, id int64) (bool, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.m.categories[id], nil
}

// fakeNotifications records every decision it is asked to send.
type fakeNotifications struct {
	mu   sync.Mutex
	sent []domain.RequestDecisionEmailData
	err  error
}

func (f *fakeNotifications) SendRequestDecision(ctx context.Context, data *domain.RequestDecisionEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, *data)
	return nil
}

func (f *fakeNotifications) byRequest() map[int64]domain.RequestStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]domain.RequestStatus, len(f.sent))
	for _, d := range f.sent {
		out[d.RequestID] = d.Status
	}
	return out
}

// fakeStats is an in-memory StatsClient.
type fakeStats struct {
	mu        sync.Mutex
	hits      []domain.EndpointHit
	views     []domain.ViewStats
	getErr    error
	saveErr   error
	lastQuery domain.StatsQuery
	// hitsAtQuery is how many hits were saved when GetStats last ran.
	hitsAtQuery int
}

func (f *fakeStats) SaveHit(ctx context.Context, hit domain.EndpointHit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.hits = append(f.hits, hit)
	return nil
}

func (f *fakeStats) GetStats(ctx context.Context, q domain.StatsQuery) ([]domain.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	f.hitsAtQuery = len(f.hits)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.views, nil
}

func (f *fakeStats) savedHits() []domain.EndpointHit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.EndpointHit(nil), f.hits...)
}

// stepClock advances by step on every call so creation order is strictly increasing.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{t: start, step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}
