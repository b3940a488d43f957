package controllers

import (
	"fmt"
	"time"
	"unicode/utf8"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// LocationDTO is a point on the map.
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (l LocationDTO) validate() []string {
	var errs []string
	if l.Lat < -90 || l.Lat > 90 {
		errs = append(errs, "location.lat must be between -90 and 90")
	}
	if l.Lon < -180 || l.Lon > 180 {
		errs = append(errs, "location.lon must be between -180 and 180")
	}
	return errs
}

func checkLen(field, value string, minLen, maxLen int) []string {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		return []string{fmt.Sprintf("%s must be between %d and %d characters", field, minLen, maxLen)}
	}
	return nil
}

// CreateEventRequest is the request body for POST /users/me/events.
type CreateEventRequest struct {
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	CategoryID        int64       `json:"category_id"`
	EventDate         *time.Time  `json:"event_date"`
	Location          LocationDTO `json:"location"`
	Paid              *bool       `json:"paid"`
	ParticipantLimit  *int        `json:"participant_limit"`
	RequestModeration *bool       `json:"request_moderation"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	errs = append(errs, checkLen("title", c.Title, 3, 120)...)
	errs = append(errs, checkLen("annotation", c.Annotation, 20, 2000)...)
	errs = append(errs, checkLen("description", c.Description, 20, 7000)...)
	if c.CategoryID <= 0 {
		errs = append(errs, "category_id is required")
	}
	if c.EventDate == nil {
		errs = append(errs, "event_date is required")
	}
	if c.ParticipantLimit != nil && *c.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must not be negative")
	}
	return append(errs, c.Location.validate()...)
}

func (c CreateEventRequest) toInput() domain.NewEventInput {
	return domain.NewEventInput{
		Title:             c.Title,
		Annotation:        c.Annotation,
		Description:       c.Description,
		CategoryID:        c.CategoryID,
		EventDate:         *c.EventDate,
		Location:          domain.Location{Lat: c.Location.Lat, Lon: c.Location.Lon},
		Paid:              c.Paid,
		ParticipantLimit:  c.ParticipantLimit,
		RequestModeration: c.RequestModeration,
	}
}

// UpdateEventFields are the optional fields shared by initiator and admin edits.
// Omitted fields are unchanged.
type UpdateEventFields struct {
	Title             *string      `json:"title"`
	Annotation        *string      `json:"annotation"`
	Description       *string      `json:"description"`
	CategoryID        *int64       `json:"category_id"`
	EventDate         *time.Time   `json:"event_date"`
	Location          *LocationDTO `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participant_limit"`
	RequestModeration *bool        `json:"request_moderation"`
}

func (u UpdateEventFields) validate() []string {
	var errs []string
	if u.Title != nil {
		errs = append(errs, checkLen("title", *u.Title, 3, 120)...)
	}
	if u.Annotation != nil {
		errs = append(errs, checkLen("annotation", *u.Annotation, 20, 2000)...)
	}
	if u.Description != nil {
		errs = append(errs, checkLen("description", *u.Description, 20, 7000)...)
	}
	if u.CategoryID != nil && *u.CategoryID <= 0 {
		errs = append(errs, "category_id must be positive")
	}
	if u.ParticipantLimit != nil && *u.ParticipantLimit < 0 {
		errs = append(errs, "participant_limit must not be negative")
	}
	if u.Location != nil {
		errs = append(errs, u.Location.validate()...)
	}
	return errs
}

func (u UpdateEventFields) toDomain() domain.EventFields {
	f := domain.EventFields{
		Title:             u.Title,
		Annotation:        u.Annotation,
		Description:       u.Description,
		CategoryID:        u.CategoryID,
		EventDate:         u.EventDate,
		Paid:              u.Paid,
		ParticipantLimit:  u.ParticipantLimit,
		RequestModeration: u.RequestModeration,
	}
	if u.Location != nil {
		f.Location = &domain.Location{Lat: u.Location.Lat, Lon: u.Location.Lon}
	}
	return f
}

// UpdateEventUserRequest is the request body for PATCH /users/me/events/{eventID}.
type UpdateEventUserRequest struct {
	UpdateEventFields
	StateAction *string `json:"state_action" enums:"SEND_TO_REVIEW,CANCEL_REVIEW"`
}

// Validate implements Validator.
func (u UpdateEventUserRequest) Validate() []string {
	errs := u.validate()
	if u.StateAction != nil {
		switch domain.InitiatorStateAction(*u.StateAction) {
		case domain.ActionSendToReview, domain.ActionCancelReview:
		default:
			errs = append(errs, "state_action must be SEND_TO_REVIEW or CANCEL_REVIEW")
		}
	}
	return errs
}

func (u UpdateEventUserRequest) toDomain() domain.InitiatorEventUpdate {
	upd := domain.InitiatorEventUpdate{Fields: u.UpdateEventFields.toDomain()}
	if u.StateAction != nil {
		a := domain.InitiatorStateAction(*u.StateAction)
		upd.Action = &a
	}
	return upd
}

// UpdateEventAdminRequest is the request body for PATCH /admin/events/{eventID}.
type UpdateEventAdminRequest struct {
	UpdateEventFields
	StateAction *string `json:"state_action" enums:"PUBLISH_EVENT,REJECT_EVENT"`
}

// Validate implements Validator.
func (u UpdateEventAdminRequest) Validate() []string {
	errs := u.validate()
	if u.StateAction != nil {
		switch domain.AdminStateAction(*u.StateAction) {
		case domain.ActionPublishEvent, domain.ActionRejectEvent:
		default:
			errs = append(errs, "state_action must be PUBLISH_EVENT or REJECT_EVENT")
		}
	}
	return errs
}

func (u UpdateEventAdminRequest) toDomain() domain.AdminEventUpdate {
	upd := domain.AdminEventUpdate{Fields: u.UpdateEventFields.toDomain()}
	if u.StateAction != nil {
		a := domain.AdminStateAction(*u.StateAction)
		upd.Action = &a
	}
	return upd
}

// ResolveRequestsRequest is the request body for PATCH /users/me/events/{eventID}/requests.
type ResolveRequestsRequest struct {
	RequestIDs []int64 `json:"request_ids"`
	Status     string  `json:"status" enums:"CONFIRMED,REJECTED"`
}

// Validate implements Validator. An empty id list is left to the service.
func (r ResolveRequestsRequest) Validate() []string {
	switch domain.RequestStatus(r.Status) {
	case domain.RequestStatusConfirmed, domain.RequestStatusRejected:
		return nil
	default:
		return []string{"status must be CONFIRMED or REJECTED"}
	}
}

// EventSuccessResponse is the success envelope carrying one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListData is a paginated window of events.
type EventListData struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventListSuccessResponse is the success envelope for GET /users/me/events and GET /admin/events.
type EventListSuccessResponse struct {
	Data  EventListData     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestSuccessResponse is the success envelope carrying one participation request.
type RequestSuccessResponse struct {
	Data  *domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// RequestListSuccessResponse is the success envelope carrying participation requests.
type RequestListSuccessResponse struct {
	Data  []*domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// ModerationSuccessResponse is the success envelope for a batch moderation.
type ModerationSuccessResponse struct {
	Data  *domain.ModerationResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}
