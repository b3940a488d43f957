package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"explorewithme/internal/domain"
	"explorewithme/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created   = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	eventDate = time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC)
)

func openStore(t *testing.T, lockTimeout time.Duration) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "ewm.db"), lockTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seed inserts users 1..users and category 1.
func seed(t *testing.T, store *Store, users int) {
	t.Helper()
	ctx := context.Background()
	_, err := store.DB().ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (1, 'concerts')`)
	require.NoError(t, err)
	for i := 1; i <= users; i++ {
		_, err := store.DB().ExecContext(ctx, `INSERT INTO users (id, name, email) VALUES (?, ?, ?)`,
			i, fmt.Sprintf("user %d", i), fmt.Sprintf("user%d@example.com", i))
		require.NoError(t, err)
	}
}

func createEvent(t *testing.T, store *Store, limit int) *domain.Event {
	t.Helper()
	e := domain.NewEvent(1, "Jazz night", "Live jazz", "Live jazz in the park", 1, eventDate, created)
	e.ParticipantLimit = limit
	e.State = domain.EventStatePublished
	pub := created.Add(time.Hour)
	e.PublishedOn = &pub
	require.NoError(t, store.Events().Create(context.Background(), e))
	return e
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ", time.Second)
	require.Error(t, err)
}

func TestEventRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 2)

	e := createEvent(t, store, 10)
	require.NotZero(t, e.ID)

	got, err := store.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	_, err = store.Events().GetByIDAndInitiator(ctx, e.ID, 2)
	require.ErrorIs(t, err, domain.ErrNotFound)

	got.Title = "Jazz evening"
	got.ConfirmedRequests = 9
	require.NoError(t, store.Events().Update(ctx, got))

	reread, err := store.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jazz evening", reread.Title)
	assert.Equal(t, 0, reread.ConfirmedRequests, "update leaves the counter alone")

	require.NoError(t, store.Events().SetConfirmedRequests(ctx, e.ID, 3))
	reread, err = store.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reread.ConfirmedRequests)

	require.ErrorIs(t, store.Events().SetConfirmedRequests(ctx, 999, 1), domain.ErrNotFound)
}

func TestEventRepository_ListByInitiator(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 1)
	for range 3 {
		createEvent(t, store, 0)
	}

	page, total, err := store.Events().ListByInitiator(ctx, 1, domain.PaginationParams{From: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, int64(3), page[0].ID)
}

func TestEventRepository_Search(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 2)
	_, err := store.DB().ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (2, 'talks')`)
	require.NoError(t, err)

	e1 := createEvent(t, store, 0)
	e2 := domain.NewEvent(2, "Book talk", "Authors", "Authors on stage", 2, eventDate.Add(48*time.Hour), created)
	require.NoError(t, store.Events().Create(ctx, e2))
	e3 := domain.NewEvent(2, "Late jazz", "More jazz", "More jazz in the park", 1, eventDate.Add(96*time.Hour), created)
	e3.State = domain.EventStateCanceled
	require.NoError(t, store.Events().Create(ctx, e3))

	start := eventDate.Add(48 * time.Hour)
	end := eventDate.Add(96 * time.Hour)
	tests := []struct {
		name      string
		filter    domain.EventFilter
		params    domain.PaginationParams
		wantIDs   []int64
		wantTotal int
	}{
		{name: "everything", params: domain.PaginationParams{Size: 10}, wantIDs: []int64{e1.ID, e2.ID, e3.ID}, wantTotal: 3},
		{name: "window", params: domain.PaginationParams{From: 1, Size: 1}, wantIDs: []int64{e2.ID}, wantTotal: 3},
		{
			name:      "by initiator",
			filter:    domain.EventFilter{InitiatorIDs: []int64{2}},
			params:    domain.PaginationParams{Size: 10},
			wantIDs:   []int64{e2.ID, e3.ID},
			wantTotal: 2,
		},
		{
			name:      "by states",
			filter:    domain.EventFilter{States: []domain.EventState{domain.EventStatePublished, domain.EventStateCanceled}},
			params:    domain.PaginationParams{Size: 10},
			wantIDs:   []int64{e1.ID, e3.ID},
			wantTotal: 2,
		},
		{
			name:      "by category",
			filter:    domain.EventFilter{CategoryIDs: []int64{2}},
			params:    domain.PaginationParams{Size: 10},
			wantIDs:   []int64{e2.ID},
			wantTotal: 1,
		},
		{
			name:      "start inclusive end exclusive",
			filter:    domain.EventFilter{RangeStart: &start, RangeEnd: &end},
			params:    domain.PaginationParams{Size: 10},
			wantIDs:   []int64{e2.ID},
			wantTotal: 1,
		},
		{
			name:      "no match",
			filter:    domain.EventFilter{InitiatorIDs: []int64{1}, CategoryIDs: []int64{2}},
			params:    domain.PaginationParams{Size: 10},
			wantIDs:   []int64{},
			wantTotal: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := store.Events().Search(ctx, tt.filter, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			ids := make([]int64, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRequestRepository_ActiveUniqueness(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 2)
	e := createEvent(t, store, 0)
	repo := store.Requests()

	first := domain.NewParticipationRequest(e.ID, 2, domain.RequestStatusPending, created)
	require.NoError(t, repo.Create(ctx, first))

	dup := domain.NewParticipationRequest(e.ID, 2, domain.RequestStatusPending, created)
	require.ErrorIs(t, repo.Create(ctx, dup), domain.ErrValidation)

	exists, err := repo.ExistsActive(ctx, e.ID, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.UpdateStatus(ctx, []int64{first.ID}, domain.RequestStatusCanceled))
	exists, err = repo.ExistsActive(ctx, e.ID, 2)
	require.NoError(t, err)
	assert.False(t, exists)

	again := domain.NewParticipationRequest(e.ID, 2, domain.RequestStatusPending, created.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, again))

	mine, err := repo.ListByRequester(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, domain.RequestStatusCanceled, mine[0].Status)
	assert.Equal(t, domain.RequestStatusPending, mine[1].Status)
}

func TestRequestRepository_ListByEventAndIDs(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 4)
	e := createEvent(t, store, 0)
	other := createEvent(t, store, 0)
	repo := store.Requests()

	var ids []int64
	for i := int64(2); i <= 4; i++ {
		req := domain.NewParticipationRequest(e.ID, i, domain.RequestStatusPending, created.Add(time.Duration(5-i)*time.Minute))
		require.NoError(t, repo.Create(ctx, req))
		ids = append(ids, req.ID)
	}
	foreign := domain.NewParticipationRequest(other.ID, 2, domain.RequestStatusPending, created)
	require.NoError(t, repo.Create(ctx, foreign))

	got, err := repo.ListByEventAndIDs(ctx, e.ID, append(ids, foreign.ID))
	require.NoError(t, err)
	require.Len(t, got, 3)
	// oldest first
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{got[0].ID, got[1].ID, got[2].ID})

	empty, err := repo.ListByEventAndIDs(ctx, e.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDirectories(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 1)

	u, err := store.Users().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = store.Users().GetByID(ctx, 2)
	require.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := store.Categories().Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Categories().Exists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithEventLock(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, time.Second)
	seed(t, store, 2)
	e := createEvent(t, store, 3)
	tx := store.Transactor()

	t.Run("missing event", func(t *testing.T) {
		err := tx.WithEventLock(ctx, 999, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
			return nil
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rollback on error", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := tx.WithEventLock(ctx, e.ID, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
			require.NoError(t, repos.Events().SetConfirmedRequests(ctx, event.ID, 2))
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		got, err := store.Events().GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.ConfirmedRequests)
	})

	t.Run("lock wait times out as conflict", func(t *testing.T) {
		short := &Store{db: store.db, lockTimeout: 20 * time.Millisecond}
		held := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- tx.WithEventLock(ctx, e.ID, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
				close(held)
				<-release
				return nil
			})
		}()
		<-held
		err := short.WithEventLock(ctx, e.ID, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
			return nil
		})
		close(release)
		require.ErrorIs(t, err, domain.ErrConflict)
		require.NoError(t, <-done)
	})
}

func TestCapacity_ConcurrentAdmissionsNeverOverbook(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, 5*time.Second)
	const limit, requesters = 5, 20
	seed(t, store, requesters+1)
	e := createEvent(t, store, limit)
	accountant := services.NewCapacityAccountant(store.Transactor(), 3)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		refused  int
	)
	for i := 2; i <= requesters+1; i++ {
		wg.Add(1)
		go func(requesterID int64) {
			defer wg.Done()
			err := accountant.WithinRetrying(ctx, e.ID, func(ctx context.Context, l *services.Ledger) error {
				if _, err := l.Reserve(ctx, 1); err != nil {
					return err
				}
				req := domain.NewParticipationRequest(e.ID, requesterID, domain.RequestStatusConfirmed, time.Now())
				return l.Requests().Create(ctx, req)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, domain.ErrCapacityExceeded):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, limit, admitted)
	assert.Equal(t, requesters-limit, refused)

	got, err := store.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, got.ConfirmedRequests)

	reqs, err := store.Requests().ListByEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, limit)
}
