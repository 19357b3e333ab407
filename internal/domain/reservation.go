package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusHeld          ReservationStatus = "held"
	ReservationStatusConfirmed     ReservationStatus = "confirmed"
	ReservationStatusPaymentFailed ReservationStatus = "payment_failed"
	ReservationStatusCancelled     ReservationStatus = "cancelled"
	ReservationStatusCompleted     ReservationStatus = "completed"
)

// CanTransitionTo reports whether the status may move to next.
// Terminal states are cancelled and completed.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationStatusHeld:
		return next == ReservationStatusConfirmed ||
			next == ReservationStatusPaymentFailed ||
			next == ReservationStatusCancelled
	case ReservationStatusConfirmed:
		return next == ReservationStatusCompleted || next == ReservationStatusCancelled
	case ReservationStatusPaymentFailed:
		return next == ReservationStatusCancelled
	default:
		return false
	}
}

// Blocks reports whether a reservation in this status keeps its date range
// unavailable to other callers.
func (s ReservationStatus) Blocks() bool {
	return s == ReservationStatusHeld || s == ReservationStatusConfirmed
}

// Reservation represents a stay booked for a contiguous range of days on one
// resource. The date range is half-open: EndDate is the checkout day and is
// not occupied.
type Reservation struct {
	ID           string
	ResourceID   string
	HolderID     string
	StartDate    time.Time
	EndDate      time.Time
	TotalPrice   int64
	Status       ReservationStatus
	ExpiresAt    *time.Time
	CancelledAt  *time.Time
	CancelledBy  string // empty for system-driven cancellations
	CancelReason string
	CreatedAt    time.Time
}

func (r Reservation) Nights() int {
	return Nights(r.StartDate, r.EndDate)
}

func (r Reservation) Overlaps(start, end time.Time) bool {
	return Overlaps(r.StartDate, r.EndDate, start, end)
}
