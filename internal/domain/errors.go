package domain

import "errors"

// Sentinel errors shared by services, repositories and the HTTP layer.
// Match them with errors.Is; services wrap them with context.
var (
	// ErrNotFound is returned when an event, request or user does not resolve,
	// or does not belong to the caller.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned on a business-rule violation.
	ErrValidation = errors.New("validation failed")
	// ErrCapacityExceeded is returned when an admission would exceed the participant limit.
	ErrCapacityExceeded = errors.New("participant limit reached")
	// ErrDateConstraintViolation is returned when an event date is too close to now or to publication.
	ErrDateConstraintViolation = errors.New("event date constraint violated")
	// ErrInvalidStateTransition is returned when a lifecycle action is not allowed from the current state.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrConflict is transient: a concurrent mutation held the event lock for too long.
	ErrConflict = errors.New("concurrent modification, retry")
	// ErrForbidden is returned when the caller lacks a required role.
	ErrForbidden = errors.New("forbidden")
)
