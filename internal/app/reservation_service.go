package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// ReservationRepository is the storage surface the reservation service needs.
// GetResourceForUpdate takes the exclusive per-resource lock; every method
// called after it inside the same WithTx runs under that lock.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResourceForUpdate(ctx context.Context, resourceID string) (domain.Resource, error)
	HasOverlappingReservations(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
	HasBlockingDays(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
	CreateReservation(ctx context.Context, res domain.Reservation) error
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error)
	UpdateReservation(ctx context.Context, res domain.Reservation) error
	BlockDays(ctx context.Context, resourceID string, start, end time.Time, status domain.DayStatus, reservationID string) error
	ReleaseDays(ctx context.Context, resourceID string, start, end time.Time, reservationID string) error
	SetResourceStatus(ctx context.Context, resourceID string, status domain.ResourceStatus) error
}

// ReservationService owns every Reservation and reservation-driven
// CalendarDay mutation. All create/cancel/confirm paths serialize on the
// resource row lock, so per resource there is a total order of effects.
type ReservationService struct {
	repo     ReservationRepository
	clock    clock.Clock
	notifier Notifier
	logger   *log.Logger
	holdTTL  time.Duration
}

const defaultHoldTTL = 15 * time.Minute

// ReasonHoldExpired is stamped on reservations cancelled by the expiry path.
const ReasonHoldExpired = "hold expired"

func NewReservationService(repo ReservationRepository, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		repo:     repo,
		clock:    clk,
		notifier: NopNotifier{},
		logger:   log.Default(),
		holdTTL:  defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithHoldTTL overrides the default TTL applied when a caller does not
// request one.
func WithHoldTTL(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithNotifier wires the fire-and-forget notification collaborator.
func WithNotifier(n Notifier) ReservationServiceOption {
	return func(s *ReservationService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		if l != nil {
			s.logger = l
		}
	}
}

type CreateReservationInput struct {
	ResourceID string
	HolderID   string
	StartDate  time.Time
	EndDate    time.Time
	// HoldTTL bounds how long the hold survives unconfirmed; zero means the
	// service default. Bot-driven offline-payment flows pass a longer TTL.
	HoldTTL time.Duration
	// HoldCalendar marks the date range booked in the calendar immediately,
	// so the hold is honored even before payment confirms.
	HoldCalendar bool
}

func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (domain.Reservation, error) {
	if in.ResourceID == "" || in.HolderID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}
	start := domain.ToDate(in.StartDate)
	end := domain.ToDate(in.EndDate)
	if !end.After(start) {
		return domain.Reservation{}, domain.ErrInvalidRange
	}

	ttl := in.HoldTTL
	if ttl <= 0 {
		ttl = s.holdTTL
	}

	now := s.clock.Now()
	var result domain.Reservation

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		resource, err := s.repo.GetResourceForUpdate(txCtx, in.ResourceID)
		if err != nil {
			return err
		}

		// Re-check availability under the lock; the advisory standalone
		// check may have raced another caller.
		if err := s.ensureAvailable(txCtx, in.ResourceID, start, end); err != nil {
			return err
		}

		expiresAt := now.Add(ttl)
		res := domain.Reservation{
			ID:         uuid.NewString(),
			ResourceID: in.ResourceID,
			HolderID:   in.HolderID,
			StartDate:  start,
			EndDate:    end,
			TotalPrice: int64(domain.Nights(start, end)) * resource.DailyRate,
			Status:     domain.ReservationStatusHeld,
			ExpiresAt:  &expiresAt,
			CreatedAt:  now,
		}

		if err := s.repo.CreateReservation(txCtx, res); err != nil {
			return err
		}
		if in.HoldCalendar {
			if err := s.repo.BlockDays(txCtx, in.ResourceID, start, end, domain.DayStatusBooked, res.ID); err != nil {
				return err
			}
		}

		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.setResourceStatus(ctx, result.ResourceID, domain.ResourceStatusReserved)
	s.notifier.ReservationCreated(ctx, result)
	return result, nil
}

type CancelReservationInput struct {
	ReservationID string
	ActorID       string // empty denotes a system-driven cancellation
	Reason        string
}

// Cancel cancels a reservation and releases its calendar range. Cancelling an
// already-cancelled reservation is a no-op returning the row unchanged.
func (s *ReservationService) Cancel(ctx context.Context, in CancelReservationInput) (domain.Reservation, error) {
	if in.ReservationID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	var result domain.Reservation
	var alreadyCancelled bool

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.lockReservation(txCtx, in.ReservationID)
		if err != nil {
			return err
		}
		if res.Status == domain.ReservationStatusCancelled {
			result = res
			alreadyCancelled = true
			return nil
		}
		if !res.Status.CanTransitionTo(domain.ReservationStatusCancelled) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		res.Status = domain.ReservationStatusCancelled
		res.CancelledAt = &now
		res.CancelledBy = in.ActorID
		res.CancelReason = in.Reason

		if err := s.repo.UpdateReservation(txCtx, res); err != nil {
			return err
		}
		if err := s.repo.ReleaseDays(txCtx, res.ResourceID, res.StartDate, res.EndDate, res.ID); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	if !alreadyCancelled {
		s.setResourceStatus(ctx, result.ResourceID, domain.ResourceStatusAvailable)
		s.notifier.ReservationCancelled(ctx, result)
	}
	return result, nil
}

// Confirm moves a held, unexpired reservation to confirmed. The payment
// collaborator calls this exactly once per successful payment.
func (s *ReservationService) Confirm(ctx context.Context, reservationID string) (domain.Reservation, error) {
	if reservationID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Reservation

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.lockReservation(txCtx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationStatusHeld {
			return domain.ErrInvalidTransition
		}
		if res.ExpiresAt != nil && !res.ExpiresAt.After(now) {
			return domain.ErrHoldExpired
		}

		res.Status = domain.ReservationStatusConfirmed
		res.ExpiresAt = nil
		if err := s.repo.UpdateReservation(txCtx, res); err != nil {
			return err
		}
		// Confirmed stays are always reflected in the calendar, whether or
		// not the hold blocked it at creation time.
		if err := s.repo.BlockDays(txCtx, res.ResourceID, res.StartDate, res.EndDate, domain.DayStatusBooked, res.ID); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.notifier.ReservationConfirmed(ctx, result)
	return result, nil
}

// Fail moves a held reservation to payment_failed. The calendar range is left
// as-is for operator review; a retry flow or a human decides what to release.
func (s *ReservationService) Fail(ctx context.Context, reservationID string) (domain.Reservation, error) {
	if reservationID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	var result domain.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.lockReservation(txCtx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationStatusHeld {
			return domain.ErrInvalidTransition
		}

		res.Status = domain.ReservationStatusPaymentFailed
		if err := s.repo.UpdateReservation(txCtx, res); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return result, nil
}

// Expire cancels the reservation only if it is still held and the hold has
// lapsed. It is safe to call from both the deferred one-shot job and the
// periodic sweeper; the second caller sees a no-op.
func (s *ReservationService) Expire(ctx context.Context, reservationID string) (domain.Reservation, bool, error) {
	if reservationID == "" {
		return domain.Reservation{}, false, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Reservation
	var expired bool

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.lockReservation(txCtx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationStatusHeld || res.ExpiresAt == nil || res.ExpiresAt.After(now) {
			result = res
			return nil
		}

		res.Status = domain.ReservationStatusCancelled
		res.CancelledAt = &now
		res.CancelledBy = ""
		res.CancelReason = ReasonHoldExpired

		if err := s.repo.UpdateReservation(txCtx, res); err != nil {
			return err
		}
		if err := s.repo.ReleaseDays(txCtx, res.ResourceID, res.StartDate, res.EndDate, res.ID); err != nil {
			return err
		}

		result = res
		expired = true
		return nil
	})
	if err != nil {
		return domain.Reservation{}, false, err
	}

	if expired {
		s.setResourceStatus(ctx, result.ResourceID, domain.ResourceStatusAvailable)
		s.notifier.ReservationExpired(ctx, result)
	}
	return result, expired, nil
}

func (s *ReservationService) Get(ctx context.Context, reservationID string) (domain.Reservation, error) {
	if reservationID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}
	return s.repo.GetReservation(ctx, reservationID)
}

func (s *ReservationService) ensureAvailable(ctx context.Context, resourceID string, start, end time.Time) error {
	// The reservation table is the authoritative overlap source; the day
	// calendar additionally carries operator blocks with no backing
	// reservation row. Either one denies.
	if overlapping, err := s.repo.HasOverlappingReservations(ctx, resourceID, start, end); err != nil {
		return err
	} else if overlapping {
		return domain.ErrNotAvailable
	}
	if blocked, err := s.repo.HasBlockingDays(ctx, resourceID, start, end); err != nil {
		return err
	} else if blocked {
		return domain.ErrNotAvailable
	}
	return nil
}

// lockReservation takes the per-resource lock first, then re-reads the
// reservation under it, so cancel/confirm cannot race a concurrent create on
// the same resource.
func (s *ReservationService) lockReservation(ctx context.Context, reservationID string) (domain.Reservation, error) {
	res, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if _, err := s.repo.GetResourceForUpdate(ctx, res.ResourceID); err != nil {
		return domain.Reservation{}, err
	}
	return s.repo.GetReservationForUpdate(ctx, reservationID)
}

func (s *ReservationService) setResourceStatus(ctx context.Context, resourceID string, status domain.ResourceStatus) {
	if err := s.repo.SetResourceStatus(ctx, resourceID, status); err != nil {
		s.logger.Printf("WARN: set resource %s status %s: %v", resourceID, status, err)
	}
}
