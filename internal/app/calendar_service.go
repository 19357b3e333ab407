package app

import (
	"context"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

type CalendarRepository interface {
	ListDays(ctx context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error)
	BlockDaysWithNotes(ctx context.Context, resourceID string, start, end time.Time, status domain.DayStatus, notes string) (int, error)
	UnblockDays(ctx context.Context, resourceID string, start, end time.Time) (int, error)
	SeedDays(ctx context.Context, resourceID string, from time.Time, days int) error
	DeleteDaysBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CalendarService covers the operator-facing calendar operations: manual
// blocks with no backing reservation, the month/window view, lazy seeding for
// UI convenience and retention cleanup. Reservation-driven day mutations stay
// with the reservation service.
type CalendarService struct {
	repo  CalendarRepository
	clock clock.Clock
}

func NewCalendarService(repo CalendarRepository, clk clock.Clock) *CalendarService {
	return &CalendarService{repo: repo, clock: clk}
}

// BlockDates marks [start, end) blocked with an operator note. Returns the
// number of days written.
func (s *CalendarService) BlockDates(ctx context.Context, resourceID string, start, end time.Time, notes string) (int, error) {
	if resourceID == "" {
		return 0, domain.ErrInvalidID
	}
	start, end = domain.ToDate(start), domain.ToDate(end)
	if !end.After(start) {
		return 0, domain.ErrInvalidRange
	}
	return s.repo.BlockDaysWithNotes(ctx, resourceID, start, end, domain.DayStatusBlocked, notes)
}

// UnblockDates releases operator-owned days in [start, end), whatever their
// status. Days tied to a reservation are left alone; those are released by
// cancellation or rewritten by the lifecycle sweep.
func (s *CalendarService) UnblockDates(ctx context.Context, resourceID string, start, end time.Time) (int, error) {
	if resourceID == "" {
		return 0, domain.ErrInvalidID
	}
	start, end = domain.ToDate(start), domain.ToDate(end)
	if !end.After(start) {
		return 0, domain.ErrInvalidRange
	}
	return s.repo.UnblockDays(ctx, resourceID, start, end)
}

func (s *CalendarService) View(ctx context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error) {
	if resourceID == "" {
		return nil, domain.ErrInvalidID
	}
	start, end = domain.ToDate(start), domain.ToDate(end)
	if !end.After(start) {
		return nil, domain.ErrInvalidRange
	}
	return s.repo.ListDays(ctx, resourceID, start, end)
}

// Seed pre-populates free rows daysAhead into the future. Rows are otherwise
// created lazily on first write; seeding only helps calendar UIs.
func (s *CalendarService) Seed(ctx context.Context, resourceID string, daysAhead int) error {
	if resourceID == "" {
		return domain.ErrInvalidID
	}
	if daysAhead <= 0 {
		return nil
	}
	today := domain.ToDate(s.clock.Now())
	return s.repo.SeedDays(ctx, resourceID, today, daysAhead)
}

// CleanupOld hard-deletes calendar rows older than the retention cutoff.
func (s *CalendarService) CleanupOld(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := domain.ToDate(s.clock.Now()).AddDate(0, 0, -retentionDays)
	return s.repo.DeleteDaysBefore(ctx, cutoff)
}
