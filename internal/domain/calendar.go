package domain

import "time"

type DayStatus string

const (
	DayStatusFree        DayStatus = "free"
	DayStatusBooked      DayStatus = "booked"
	DayStatusOccupied    DayStatus = "occupied"
	DayStatusBlocked     DayStatus = "blocked"
	DayStatusCleaning    DayStatus = "cleaning"
	DayStatusMaintenance DayStatus = "maintenance"
)

// BlocksBooking reports whether a day in this status denies new reservations.
func (s DayStatus) BlocksBooking() bool {
	switch s {
	case DayStatusBooked, DayStatusOccupied, DayStatusBlocked, DayStatusCleaning, DayStatusMaintenance:
		return true
	}
	return false
}

// CalendarDay is the per-resource, per-day availability record. Exactly one
// row exists per (ResourceID, Date); rows are created lazily on first write.
type CalendarDay struct {
	ResourceID    string
	Date          time.Time
	Status        DayStatus
	ReservationID string // back-reference, empty when not reservation-driven
	Notes         string
}

// DateRange is a half-open [Start, End) range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Nights() int {
	return Nights(r.Start, r.End)
}

// Date builds a calendar day at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ToDate truncates t to its calendar day at UTC midnight.
func ToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights counts the days in the half-open range [start, end).
func Nights(start, end time.Time) int {
	return int(ToDate(end).Sub(ToDate(start)) / (24 * time.Hour))
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
