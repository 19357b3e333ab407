package domain

import "errors"

var (
	ErrInvalidRange         = errors.New("end date must be after start date")
	ErrNotAvailable         = errors.New("dates not available")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrLockTimeout          = errors.New("resource lock timeout")
	ErrInvalidID            = errors.New("invalid id")
	ErrHoldExpired          = errors.New("hold expired")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrResourceNameRequired = errors.New("resource name required")
	ErrInvalidDailyRate     = errors.New("invalid daily rate")
	ErrInvalidStatus        = errors.New("invalid status")
)
