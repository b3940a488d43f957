package domain

import (
	"context"
	"fmt"
	"time"
)

// EventState is the publication lifecycle state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// ParseEventState accepts the upper-case state names only.
func ParseEventState(s string) (EventState, error) {
	switch st := EventState(s); st {
	case EventStatePending, EventStatePublished, EventStateCanceled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown event state %q", ErrValidation, s)
}

// Location is the geographic point where an event takes place.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is a publishable activity with a participant limit and an optional moderation step.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        int64      `json:"category_id"`
	InitiatorID       int64      `json:"initiator_id"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	State             EventState `json:"state"`
	EventDate         time.Time  `json:"event_date"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on"`
	Views             int64      `json:"views"`
}

// NewEvent returns a PENDING event with the default limit (unlimited), moderation on and unpaid.
// ID is set by the repository on create.
func NewEvent(initiatorID int64, title, annotation, description string, categoryID int64, eventDate, createdOn time.Time) *Event {
	return &Event{
		Title:             title,
		Annotation:        annotation,
		Description:       description,
		CategoryID:        categoryID,
		InitiatorID:       initiatorID,
		RequestModeration: true,
		State:             EventStatePending,
		EventDate:         eventDate,
		CreatedOn:         createdOn,
	}
}

// EventFields holds the optional editable fields of an event. Nil means unchanged.
type EventFields struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	EventDate         *time.Time
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// InitiatorStateAction is the lifecycle action an initiator may attach to an edit.
type InitiatorStateAction string

const (
	ActionSendToReview InitiatorStateAction = "SEND_TO_REVIEW"
	ActionCancelReview InitiatorStateAction = "CANCEL_REVIEW"
)

// AdminStateAction is the lifecycle action an administrator may attach to an edit.
type AdminStateAction string

const (
	ActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	ActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

// InitiatorEventUpdate is an initiator's edit of their own unpublished event.
type InitiatorEventUpdate struct {
	Fields EventFields
	Action *InitiatorStateAction
}

// AdminEventUpdate is an administrator's edit of any event.
type AdminEventUpdate struct {
	Fields EventFields
	Action *AdminStateAction
}

// EventRepository defines the interface for event storage.
// SetConfirmedRequests is reserved for the capacity accountant.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, params PaginationParams) ([]*Event, int, error)
	Search(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, event *Event) error
	SetConfirmedRequests(ctx context.Context, id int64, confirmed int) error
}

// EventFilter narrows an administrator's event search. Empty slices and nil bounds match everything.
// RangeStart is inclusive, RangeEnd exclusive.
type EventFilter struct {
	InitiatorIDs []int64
	States       []EventState
	CategoryIDs  []int64
	RangeStart   *time.Time
	RangeEnd     *time.Time
}

// NewEventInput carries the fields needed to create an event.
type NewEventInput struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	EventDate         time.Time
	Location          Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// PublicEventView identifies the public read that produced a page view.
type PublicEventView struct {
	URI string
	IP  string
}

// EventService defines the business logic for the event lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, initiatorID int64, in NewEventInput) (*Event, error)
	ListInitiatorEvents(ctx context.Context, initiatorID int64, params PaginationParams) ([]*Event, int, error)
	GetInitiatorEvent(ctx context.Context, initiatorID, eventID int64) (*Event, error)
	UpdateEventByInitiator(ctx context.Context, initiatorID, eventID int64, upd InitiatorEventUpdate) (*Event, error)
	UpdateEventByAdmin(ctx context.Context, eventID int64, upd AdminEventUpdate) (*Event, error)
	PublishEvent(ctx context.Context, eventID int64) (*Event, error)
	RejectEvent(ctx context.Context, eventID int64) (*Event, error)
	SearchEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	GetPublishedEvent(ctx context.Context, eventID int64, view PublicEventView) (*Event, error)
}
