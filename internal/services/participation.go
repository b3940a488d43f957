package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"explorewithme/internal/domain"
)

type participationService struct {
	accountant     *CapacityAccountant
	eventRepo      domain.EventRepository
	requestRepo    domain.ParticipationRequestRepository
	users          domain.UserDirectory
	notifications  domain.NotificationService
	background     *Background
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewParticipationService returns the participation request processor and moderation resolver.
// notifications may be nil, in which case requesters are not emailed.
func NewParticipationService(
	accountant *CapacityAccountant,
	eventRepo domain.EventRepository,
	requestRepo domain.ParticipationRequestRepository,
	users domain.UserDirectory,
	notifications domain.NotificationService,
	background *Background,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ParticipationService {
	return &participationService{
		accountant:     accountant,
		eventRepo:      eventRepo,
		requestRepo:    requestRepo,
		users:          users,
		notifications:  notifications,
		background:     background,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *participationService) CreateRequest(ctx context.Context, requesterID, eventID int64) (_ *domain.ParticipationRequest, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "ParticipationService.CreateRequest", trace.WithAttributes(
		attribute.Int64("event.id", eventID),
		attribute.Int64("requester.id", requesterID),
	))
	defer func() { endSpan(span, err) }()

	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	var created *domain.ParticipationRequest
	err = s.accountant.WithinRetrying(ctx, eventID, func(ctx context.Context, l *Ledger) error {
		created = nil
		event := l.Event()
		if event.InitiatorID == requesterID {
			return fmt.Errorf("%w: initiator cannot request participation in own event", domain.ErrValidation)
		}
		exists, err := l.Requests().ExistsActive(ctx, eventID, requesterID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: request for event %d already exists", domain.ErrValidation, eventID)
		}
		if event.State != domain.EventStatePublished {
			return fmt.Errorf("%w: event %d is not published", domain.ErrValidation, eventID)
		}
		if event.Full() {
			return fmt.Errorf("%w: event %d is full", domain.ErrCapacityExceeded, eventID)
		}

		status := domain.RequestStatusPending
		if event.ParticipantLimit == 0 || !event.RequestModeration {
			status = domain.RequestStatusConfirmed
		}
		req := domain.NewParticipationRequest(eventID, requesterID, status, s.now().UTC())
		if err := l.Requests().Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if status == domain.RequestStatusConfirmed {
			if _, err := l.Reserve(ctx, 1); err != nil {
				return err
			}
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "participation request created",
		"request_id", created.ID, "event_id", eventID, "status", created.Status)
	return created, nil
}

// CancelOwnRequest withdraws a request. Canceling a confirmed request gives its slot back.
func (s *participationService) CancelOwnRequest(ctx context.Context, requesterID, requestID int64) (_ *domain.ParticipationRequest, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "ParticipationService.CancelOwnRequest", trace.WithAttributes(
		attribute.Int64("request.id", requestID),
		attribute.Int64("requester.id", requesterID),
	))
	defer func() { endSpan(span, err) }()

	existing, err := s.requestRepo.GetByIDAndRequester(ctx, requestID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	var canceled *domain.ParticipationRequest
	err = s.accountant.WithinRetrying(ctx, existing.EventID, func(ctx context.Context, l *Ledger) error {
		req, err := l.Requests().GetByIDAndRequester(ctx, requestID, requesterID)
		if err != nil {
			return err
		}
		if req.Status == domain.RequestStatusCanceled {
			canceled = req
			return nil
		}
		wasConfirmed := req.Status == domain.RequestStatusConfirmed
		if err := l.Requests().UpdateStatus(ctx, []int64{req.ID}, domain.RequestStatusCanceled); err != nil {
			return fmt.Errorf("cancel request: %w", err)
		}
		req.Status = domain.RequestStatusCanceled
		if wasConfirmed {
			if err := l.Release(ctx, 1); err != nil {
				return err
			}
		}
		canceled = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return canceled, nil
}

func (s *participationService) ListOwnRequests(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	reqs, err := s.requestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

func (s *participationService) ListRequestsForEvent(ctx context.Context, initiatorID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, initiatorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	reqs, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.ParticipationRequest{}
	}
	return reqs, nil
}

// ResolveBatch applies an initiator's decision to pending requests of one event.
// Confirmation admits the earliest-created requests that fit and rejects the overflow.
// The call is atomic and is not retried on ErrConflict.
func (s *participationService) ResolveBatch(ctx context.Context, initiatorID, eventID int64, requestIDs []int64, status domain.RequestStatus) (_ *domain.ModerationResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "ParticipationService.ResolveBatch", trace.WithAttributes(
		attribute.Int64("event.id", eventID),
		attribute.Int("batch.size", len(requestIDs)),
		attribute.String("batch.status", string(status)),
	))
	defer func() { endSpan(span, err) }()

	if status != domain.RequestStatusConfirmed && status != domain.RequestStatusRejected {
		return nil, fmt.Errorf("%w: status must be CONFIRMED or REJECTED", domain.ErrValidation)
	}
	ids := uniqueIDs(requestIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: request ids are required", domain.ErrValidation)
	}

	var (
		result     *domain.ModerationResult
		eventTitle string
	)
	err = s.accountant.Within(ctx, eventID, func(ctx context.Context, l *Ledger) error {
		result = nil
		event := l.Event()
		if event.InitiatorID != initiatorID {
			return fmt.Errorf("%w: event %d", domain.ErrNotFound, eventID)
		}
		if !event.Moderated() {
			return fmt.Errorf("%w: event %d does not require moderation", domain.ErrValidation, eventID)
		}

		reqs, err := l.Requests().ListByEventAndIDs(ctx, eventID, ids)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		if len(reqs) != len(ids) {
			return fmt.Errorf("%w: %d of %d requests do not belong to event %d",
				domain.ErrNotFound, len(ids)-len(reqs), len(ids), eventID)
		}
		for _, r := range reqs {
			if r.Status != domain.RequestStatusPending {
				return fmt.Errorf("%w: request %d is %s, only pending requests can be moderated",
					domain.ErrValidation, r.ID, r.Status)
			}
		}
		sortByCreation(reqs)

		admitted := 0
		if status == domain.RequestStatusConfirmed {
			admitted, err = l.Reserve(ctx, len(reqs))
			if err != nil {
				return err
			}
		}
		confirmed, rejected := reqs[:admitted], reqs[admitted:]
		if err := setStatus(ctx, l.Requests(), confirmed, domain.RequestStatusConfirmed); err != nil {
			return err
		}
		if err := setStatus(ctx, l.Requests(), rejected, domain.RequestStatusRejected); err != nil {
			return err
		}

		result = &domain.ModerationResult{
			Confirmed: append([]*domain.ParticipationRequest{}, confirmed...),
			Rejected:  append([]*domain.ParticipationRequest{}, rejected...),
		}
		eventTitle = event.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "requests moderated", "event_id", eventID,
		"confirmed", len(result.Confirmed), "rejected", len(result.Rejected))
	s.notifyDecisions(ctx, eventID, eventTitle, result)
	return result, nil
}

func (s *participationService) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}
	return nil
}

func (s *participationService) notifyDecisions(ctx context.Context, eventID int64, eventTitle string, result *domain.ModerationResult) {
	if s.notifications == nil || s.background == nil {
		return
	}
	decided := slices.Concat(result.Confirmed, result.Rejected)
	for _, r := range decided {
		req := *r
		s.background.Go(ctx, "notify request decision", func(ctx context.Context) error {
			user, err := s.users.GetByID(ctx, req.RequesterID)
			if err != nil {
				return fmt.Errorf("get requester %d: %w", req.RequesterID, err)
			}
			return s.notifications.SendRequestDecision(ctx, &domain.RequestDecisionEmailData{
				Email:      user.Email,
				Name:       user.Name,
				EventID:    eventID,
				EventTitle: eventTitle,
				RequestID:  req.ID,
				Status:     req.Status,
			})
		})
	}
}

func setStatus(ctx context.Context, repo domain.ParticipationRequestRepository, reqs []*domain.ParticipationRequest, status domain.RequestStatus) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	if err := repo.UpdateStatus(ctx, ids, status); err != nil {
		return fmt.Errorf("set requests %s: %w", status, err)
	}
	for _, r := range reqs {
		r.Status = status
	}
	return nil
}

// sortByCreation orders requests earliest first, breaking ties by id.
func sortByCreation(reqs []*domain.ParticipationRequest) {
	slices.SortFunc(reqs, func(a, b *domain.ParticipationRequest) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
