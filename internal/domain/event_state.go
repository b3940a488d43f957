package domain

import (
	"fmt"
	"time"
)

const (
	// MinLeadTime is how far ahead of now an unpublished event must be scheduled.
	MinLeadTime = 2 * time.Hour
	// MinPublishedLeadTime is how far after publication a published event must start.
	MinPublishedLeadTime = time.Hour
)

// ValidateEventDate enforces the creation rule: the event starts at least MinLeadTime after now.
func ValidateEventDate(date, now time.Time) error {
	if date.Before(now.Add(MinLeadTime)) {
		return fmt.Errorf("%w: event date must be at least %s from now", ErrDateConstraintViolation, MinLeadTime)
	}
	return nil
}

// Publish moves a PENDING event to PUBLISHED and stamps publishedOn.
func (e *Event) Publish(now time.Time) error {
	if e.State != EventStatePending {
		return fmt.Errorf("%w: cannot publish event in state %s", ErrInvalidStateTransition, e.State)
	}
	e.State = EventStatePublished
	published := now
	e.PublishedOn = &published
	return nil
}

// RejectOrWithdraw moves a PENDING event to CANCELED.
func (e *Event) RejectOrWithdraw() error {
	if e.State != EventStatePending {
		return fmt.Errorf("%w: cannot cancel event in state %s", ErrInvalidStateTransition, e.State)
	}
	e.State = EventStateCanceled
	return nil
}

// Reschedule changes the event date. A published event must start more than
// MinPublishedLeadTime after publication, an unpublished one more than MinLeadTime after now.
// Both bounds are exclusive, unlike the creation rule.
func (e *Event) Reschedule(date, now time.Time) error {
	if e.State == EventStatePublished && e.PublishedOn != nil {
		if !date.After(e.PublishedOn.Add(MinPublishedLeadTime)) {
			return fmt.Errorf("%w: event date must be more than %s after publication", ErrDateConstraintViolation, MinPublishedLeadTime)
		}
		e.EventDate = date
		return nil
	}
	if !date.After(now.Add(MinLeadTime)) {
		return fmt.Errorf("%w: event date must be more than %s from now", ErrDateConstraintViolation, MinLeadTime)
	}
	e.EventDate = date
	return nil
}

// ApplyFields copies the non-nil fields onto the event. The date goes through Reschedule,
// and the participant limit may not drop below the confirmed count.
func (e *Event) ApplyFields(f EventFields, now time.Time) error {
	if f.ParticipantLimit != nil {
		limit := *f.ParticipantLimit
		if limit < 0 {
			return fmt.Errorf("%w: participant limit must not be negative", ErrValidation)
		}
		if limit > 0 && limit < e.ConfirmedRequests {
			return fmt.Errorf("%w: participant limit %d is below %d confirmed requests", ErrValidation, limit, e.ConfirmedRequests)
		}
	}
	if f.EventDate != nil {
		if err := e.Reschedule(*f.EventDate, now); err != nil {
			return err
		}
	}
	if f.Title != nil {
		e.Title = *f.Title
	}
	if f.Annotation != nil {
		e.Annotation = *f.Annotation
	}
	if f.Description != nil {
		e.Description = *f.Description
	}
	if f.CategoryID != nil {
		e.CategoryID = *f.CategoryID
	}
	if f.Location != nil {
		e.Location = *f.Location
	}
	if f.Paid != nil {
		e.Paid = *f.Paid
	}
	if f.ParticipantLimit != nil {
		e.ParticipantLimit = *f.ParticipantLimit
	}
	if f.RequestModeration != nil {
		e.RequestModeration = *f.RequestModeration
	}
	return nil
}

// Moderated reports whether requests wait for the initiator's decision.
func (e *Event) Moderated() bool {
	return e.RequestModeration && e.ParticipantLimit > 0
}

// Full reports whether a positive limit has been reached.
func (e *Event) Full() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}
