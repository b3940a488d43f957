package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"explorewithme/internal/domain"
)

type eventService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	users          domain.UserDirectory
	categories     domain.CategoryDirectory
	stats          domain.StatsClient
	background     *Background
	logger         *slog.Logger
	appName        string
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService returns the event lifecycle service. stats may be nil, in which case
// public reads record no hits and report zero views.
func NewEventService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	users domain.UserDirectory,
	categories domain.CategoryDirectory,
	stats domain.StatsClient,
	background *Background,
	logger *slog.Logger,
	appName string,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		tx:             tx,
		eventRepo:      eventRepo,
		users:          users,
		categories:     categories,
		stats:          stats,
		background:     background,
		logger:         logger,
		appName:        appName,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, initiatorID int64, in domain.NewEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now().UTC()
	if err := domain.ValidateEventDate(in.EventDate, now); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, initiatorID); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	event := domain.NewEvent(initiatorID, in.Title, in.Annotation, in.Description, in.CategoryID, in.EventDate.UTC(), now)
	event.Location = in.Location
	if in.Paid != nil {
		event.Paid = *in.Paid
	}
	if in.RequestModeration != nil {
		event.RequestModeration = *in.RequestModeration
	}
	if in.ParticipantLimit != nil {
		if *in.ParticipantLimit < 0 {
			return nil, fmt.Errorf("%w: participant limit must not be negative", domain.ErrValidation)
		}
		event.ParticipantLimit = *in.ParticipantLimit
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "initiator_id", initiatorID)
	return event, nil
}

func (s *eventService) ListInitiatorEvents(ctx context.Context, initiatorID int64, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, initiatorID); err != nil {
		return nil, 0, err
	}
	events, total, err := s.eventRepo.ListByInitiator(ctx, initiatorID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

// SearchEvents lists events across all initiators. A missing RangeStart defaults to now;
// a RangeEnd before RangeStart is a date error.
func (s *eventService) SearchEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) (_ []*domain.Event, _ int, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.SearchEvents", trace.WithAttributes(
		attribute.Int("filter.users", len(filter.InitiatorIDs)),
		attribute.Int("filter.categories", len(filter.CategoryIDs)),
	))
	defer func() { endSpan(span, err) }()

	if filter.RangeStart == nil {
		now := s.now().UTC()
		filter.RangeStart = &now
	}
	if filter.RangeEnd != nil && filter.RangeEnd.Before(*filter.RangeStart) {
		return nil, 0, fmt.Errorf("%w: range end %s is before range start %s", domain.ErrDateConstraintViolation,
			filter.RangeEnd.Format(time.RFC3339), filter.RangeStart.Format(time.RFC3339))
	}
	events, total, err := s.eventRepo.Search(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("search events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, initiatorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEventByInitiator edits an unpublished event owned by initiatorID.
func (s *eventService) UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, upd domain.InitiatorEventUpdate) (_ *domain.Event, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.UpdateEventByInitiator", trace.WithAttributes(attribute.Int64("event.id", eventID)))
	defer func() { endSpan(span, err) }()

	if upd.Fields.CategoryID != nil {
		if err := s.requireCategory(ctx, *upd.Fields.CategoryID); err != nil {
			return nil, err
		}
	}

	var updated *domain.Event
	err = s.tx.WithEventLock(ctx, eventID, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
		if event.InitiatorID != initiatorID {
			return fmt.Errorf("%w: event %d", domain.ErrNotFound, eventID)
		}
		if event.State == domain.EventStatePublished {
			return fmt.Errorf("%w: published events cannot be changed by the initiator", domain.ErrValidation)
		}
		if err := event.ApplyFields(upd.Fields, s.now().UTC()); err != nil {
			return err
		}
		if upd.Action != nil {
			switch *upd.Action {
			case domain.ActionSendToReview:
				if event.State != domain.EventStatePending {
					return fmt.Errorf("%w: cannot send %s event to review", domain.ErrInvalidStateTransition, event.State)
				}
			case domain.ActionCancelReview:
				if err := event.RejectOrWithdraw(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown state action %q", domain.ErrValidation, *upd.Action)
			}
		}
		if err := repos.Events().Update(ctx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateEventByAdmin edits any event and optionally publishes or rejects it.
// The date rule is checked against the state the event had before the action.
func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID int64, upd domain.AdminEventUpdate) (_ *domain.Event, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "EventService.UpdateEventByAdmin", trace.WithAttributes(attribute.Int64("event.id", eventID)))
	defer func() { endSpan(span, err) }()

	if upd.Fields.CategoryID != nil {
		if err := s.requireCategory(ctx, *upd.Fields.CategoryID); err != nil {
			return nil, err
		}
	}

	var updated *domain.Event
	err = s.tx.WithEventLock(ctx, eventID, func(ctx context.Context, repos domain.TxRepositories, event *domain.Event) error {
		now := s.now().UTC()
		if err := event.ApplyFields(upd.Fields, now); err != nil {
			return err
		}
		if upd.Action != nil {
			switch *upd.Action {
			case domain.ActionPublishEvent:
				if err := event.Publish(now); err != nil {
					return err
				}
			case domain.ActionRejectEvent:
				if err := event.RejectOrWithdraw(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown state action %q", domain.ErrValidation, *upd.Action)
			}
		}
		if err := repos.Events().Update(ctx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	if upd.Action != nil {
		s.logger.InfoContext(ctx, "event state changed", "event_id", eventID, "action", *upd.Action, "state", updated.State)
	}
	return updated, nil
}

func (s *eventService) PublishEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	action := domain.ActionPublishEvent
	return s.UpdateEventByAdmin(ctx, eventID, domain.AdminEventUpdate{Action: &action})
}

func (s *eventService) RejectEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	action := domain.ActionRejectEvent
	return s.UpdateEventByAdmin(ctx, eventID, domain.AdminEventUpdate{Action: &action})
}

// GetPublishedEvent returns a published event to anonymous readers, fills Views from the
// stats service and then records the page view. Stats failures only cost the view count.
func (s *eventService) GetPublishedEvent(ctx context.Context, eventID int64, view domain.PublicEventView) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.State != domain.EventStatePublished {
		return nil, fmt.Errorf("%w: event %d", domain.ErrNotFound, eventID)
	}
	if s.stats == nil {
		return event, nil
	}

	uri := view.URI
	if uri == "" {
		uri = eventURI(eventID)
	}
	// Views are read before this hit is recorded, so they count earlier readers only.
	event.Views = s.views(ctx, event, uri)
	hit := domain.EndpointHit{App: s.appName, URI: uri, IP: view.IP, Timestamp: s.now().UTC()}
	if s.background != nil {
		s.background.Go(ctx, "record event view", func(ctx context.Context) error {
			return s.stats.SaveHit(ctx, hit)
		})
	}
	return event, nil
}

func (s *eventService) views(ctx context.Context, event *domain.Event, uri string) int64 {
	start := event.CreatedOn
	if event.PublishedOn != nil {
		start = *event.PublishedOn
	}
	stats, err := s.stats.GetStats(ctx, domain.StatsQuery{
		Start:  start,
		End:    s.now().UTC(),
		URIs:   []string{uri},
		Unique: true,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "view stats unavailable", "event_id", event.ID, "err", err)
		return 0
	}
	var hits int64
	for _, v := range stats {
		if v.URI == uri {
			hits += v.Hits
		}
	}
	return hits
}

func (s *eventService) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
	}
	return nil
}

func (s *eventService) requireCategory(ctx context.Context, categoryID int64) error {
	ok, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: category %d", domain.ErrNotFound, categoryID)
	}
	return nil
}

func eventURI(eventID int64) string {
	return "/events/" + strconv.FormatInt(eventID, 10)
}
