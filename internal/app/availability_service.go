package app

import (
	"context"
	"sort"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

type AvailabilityRepository interface {
	HasOverlappingReservations(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
	HasBlockingDays(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
	ListBlockingReservations(ctx context.Context, resourceID string, start, end time.Time) ([]domain.Reservation, error)
	ListBlockingDays(ctx context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error)
	ReservedNights(ctx context.Context, resourceID string, start, end time.Time) (int, error)
}

// AvailabilityService answers read-side questions about a resource's
// calendar. It is side-effect free and never takes the resource lock, so it
// is safe for advisory/UI use; CreateReservation re-runs the same checks
// under the lock before writing.
type AvailabilityService struct {
	repo AvailabilityRepository
}

func NewAvailabilityService(repo AvailabilityRepository) *AvailabilityService {
	return &AvailabilityService{repo: repo}
}

// IsAvailable reports whether the resource is free for [start, end). Both the
// reservation table and the day calendar are consulted; either one denies.
func (s *AvailabilityService) IsAvailable(ctx context.Context, resourceID string, start, end time.Time) (bool, error) {
	if resourceID == "" {
		return false, domain.ErrInvalidID
	}
	start, end = domain.ToDate(start), domain.ToDate(end)
	if !end.After(start) {
		return false, domain.ErrInvalidRange
	}

	if overlapping, err := s.repo.HasOverlappingReservations(ctx, resourceID, start, end); err != nil {
		return false, err
	} else if overlapping {
		return false, nil
	}
	if blocked, err := s.repo.HasBlockingDays(ctx, resourceID, start, end); err != nil {
		return false, err
	} else if blocked {
		return false, nil
	}
	return true, nil
}

// OccupancyRate returns the percentage of nights in [start, end) covered by
// confirmed or completed reservations.
func (s *AvailabilityService) OccupancyRate(ctx context.Context, resourceID string, start, end time.Time) (float64, error) {
	if resourceID == "" {
		return 0, domain.ErrInvalidID
	}
	start, end = domain.ToDate(start), domain.ToDate(end)
	total := domain.Nights(start, end)
	if total <= 0 {
		return 0, domain.ErrInvalidRange
	}

	reserved, err := s.repo.ReservedNights(ctx, resourceID, start, end)
	if err != nil {
		return 0, err
	}
	return float64(reserved) / float64(total) * 100, nil
}

// FindFreeRanges suggests bookable ranges inside the search window: one range
// per free gap of at least minNights, capped at maxNights.
func (s *AvailabilityService) FindFreeRanges(ctx context.Context, resourceID string, minNights, maxNights int, window domain.DateRange) ([]domain.DateRange, error) {
	if resourceID == "" {
		return nil, domain.ErrInvalidID
	}
	from, to := domain.ToDate(window.Start), domain.ToDate(window.End)
	if !to.After(from) {
		return nil, domain.ErrInvalidRange
	}
	if minNights < 1 {
		minNights = 1
	}
	if maxNights < minNights {
		maxNights = minNights
	}

	busy, err := s.busyIntervals(ctx, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	var out []domain.DateRange
	cursor := from
	emit := func(gapStart, gapEnd time.Time) {
		if domain.Nights(gapStart, gapEnd) < minNights {
			return
		}
		end := gapEnd
		if capped := gapStart.AddDate(0, 0, maxNights); capped.Before(end) {
			end = capped
		}
		out = append(out, domain.DateRange{Start: gapStart, End: end})
	}
	for _, iv := range busy {
		if cursor.Before(iv.Start) {
			emit(cursor, iv.Start)
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if cursor.Before(to) {
		emit(cursor, to)
	}
	return out, nil
}

// busyIntervals merges reservation ranges and blocking calendar days inside
// [from, to) into a sorted, non-overlapping interval list.
func (s *AvailabilityService) busyIntervals(ctx context.Context, resourceID string, from, to time.Time) ([]domain.DateRange, error) {
	reservations, err := s.repo.ListBlockingReservations(ctx, resourceID, from, to)
	if err != nil {
		return nil, err
	}
	days, err := s.repo.ListBlockingDays(ctx, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	intervals := make([]domain.DateRange, 0, len(reservations)+len(days))
	for _, r := range reservations {
		intervals = append(intervals, domain.DateRange{Start: r.StartDate, End: r.EndDate})
	}
	for _, d := range days {
		intervals = append(intervals, domain.DateRange{Start: d.Date, End: d.Date.AddDate(0, 0, 1)})
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	merged := intervals[:0]
	for _, iv := range intervals {
		if n := len(merged); n > 0 && !iv.Start.After(merged[n-1].End) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged, nil
}
