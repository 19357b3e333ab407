package app

import (
	"context"
	"log"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

const sweepBatchSize = 100

type ExpirySweepRepository interface {
	ListExpiredHeld(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error)
}

// Expirer is implemented by the reservation service.
type Expirer interface {
	Expire(ctx context.Context, reservationID string) (domain.Reservation, bool, error)
}

// ExpirySweeper is the durable backstop for lapsed holds: whatever happens to
// the deferred per-reservation job, the sweeper eventually cancels the hold.
// Safe to run concurrently with itself and with user cancellations; each
// item re-checks state under the resource lock.
type ExpirySweeper struct {
	repo   ExpirySweepRepository
	svc    Expirer
	clock  clock.Clock
	logger *log.Logger
}

func NewExpirySweeper(repo ExpirySweepRepository, svc Expirer, clk clock.Clock, logger *log.Logger) *ExpirySweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &ExpirySweeper{repo: repo, svc: svc, clock: clk, logger: logger}
}

// RunOnce expires one batch of lapsed holds and returns how many were
// cancelled. A failing item is logged and skipped; it never halts the batch.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	due, err := s.repo.ListExpiredHeld(ctx, s.clock.Now(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, res := range due {
		if _, ok, err := s.svc.Expire(ctx, res.ID); err != nil {
			s.logger.Printf("expiry sweep: reservation %s: %v", res.ID, err)
		} else if ok {
			expired++
		}
	}
	if expired > 0 {
		s.logger.Printf("expiry sweep: cancelled %d lapsed holds", expired)
	}
	return expired, nil
}

type LifecycleSweepRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListFinishedConfirmed(ctx context.Context, today time.Time, limit int) ([]domain.Reservation, error)
	ListInStayConfirmed(ctx context.Context, today time.Time, limit int) ([]domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, status domain.ReservationStatus) error
	BlockDays(ctx context.Context, resourceID string, start, end time.Time, status domain.DayStatus, reservationID string) error
	SetResourceStatus(ctx context.Context, resourceID string, status domain.ResourceStatus) error
}

// LifecycleSweeper drives post-checkout transitions: confirmed stays whose
// end date has passed become completed and a cleaning buffer is written over
// the turnover days. It also marks in-stay days occupied. It deliberately
// skips the per-resource lock; a racing create self-heals on its next
// availability check once the cleaning rows land.
type LifecycleSweeper struct {
	repo               LifecycleSweepRepository
	clock              clock.Clock
	notifier           Notifier
	logger             *log.Logger
	cleaningBufferDays int
}

func NewLifecycleSweeper(repo LifecycleSweepRepository, clk clock.Clock, opts ...LifecycleSweeperOption) *LifecycleSweeper {
	s := &LifecycleSweeper{
		repo:               repo,
		clock:              clk,
		notifier:           NopNotifier{},
		logger:             log.Default(),
		cleaningBufferDays: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LifecycleSweeperOption func(*LifecycleSweeper)

// WithCleaningBufferDays sets how many days after checkout stay blocked for
// turnover.
func WithCleaningBufferDays(days int) LifecycleSweeperOption {
	return func(s *LifecycleSweeper) {
		if days > 0 {
			s.cleaningBufferDays = days
		}
	}
}

func WithLifecycleNotifier(n Notifier) LifecycleSweeperOption {
	return func(s *LifecycleSweeper) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLifecycleLogger(l *log.Logger) LifecycleSweeperOption {
	return func(s *LifecycleSweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// RunOnce is idempotent on any cadence; a daily schedule is the baseline.
func (s *LifecycleSweeper) RunOnce(ctx context.Context) (int, error) {
	today := domain.ToDate(s.clock.Now())
	completed := 0

	finished, err := s.repo.ListFinishedConfirmed(ctx, today, sweepBatchSize)
	if err != nil {
		return 0, err
	}
	for _, res := range finished {
		res := res
		err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.repo.UpdateReservationStatus(txCtx, res.ID, domain.ReservationStatusCompleted); err != nil {
				return err
			}
			buffer := res.EndDate.AddDate(0, 0, s.cleaningBufferDays)
			return s.repo.BlockDays(txCtx, res.ResourceID, res.EndDate, buffer, domain.DayStatusCleaning, res.ID)
		})
		if err != nil {
			s.logger.Printf("lifecycle sweep: complete reservation %s: %v", res.ID, err)
			continue
		}
		if err := s.repo.SetResourceStatus(ctx, res.ResourceID, domain.ResourceStatusAvailable); err != nil {
			s.logger.Printf("WARN: lifecycle sweep: set resource %s status: %v", res.ResourceID, err)
		}
		s.notifier.ReservationCompleted(ctx, res)
		completed++
	}

	inStay, err := s.repo.ListInStayConfirmed(ctx, today, sweepBatchSize)
	if err != nil {
		return completed, err
	}
	for _, res := range inStay {
		if err := s.repo.BlockDays(ctx, res.ResourceID, res.StartDate, res.EndDate, domain.DayStatusOccupied, res.ID); err != nil {
			s.logger.Printf("lifecycle sweep: mark stay %s occupied: %v", res.ID, err)
			continue
		}
		if err := s.repo.SetResourceStatus(ctx, res.ResourceID, domain.ResourceStatusOccupied); err != nil {
			s.logger.Printf("WARN: lifecycle sweep: set resource %s status: %v", res.ResourceID, err)
		}
	}

	if completed > 0 {
		s.logger.Printf("lifecycle sweep: completed %d finished stays", completed)
	}
	return completed, nil
}
