package app

import (
	"context"
	"io"
	"log"
	"sort"
	"testing"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

func TestReservationService_Create(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	resource := domain.Resource{ID: "res-1", Name: "Cabin A", DailyRate: 10000, Status: domain.ResourceStatusAvailable}

	makeSvc := func(repo *fakeRepo) (*ReservationService, *recordingNotifier) {
		notifier := &recordingNotifier{}
		svc := NewReservationService(repo, clock.NewFixed(now),
			WithHoldTTL(ttl),
			WithNotifier(notifier),
			WithLogger(discardLogger()),
		)
		return svc, notifier
	}

	t.Run("creates held reservation with computed price", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc, notifier := makeSvc(repo)

		res, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.ID == "" {
			t.Fatalf("expected reservation ID to be set")
		}
		if res.Status != domain.ReservationStatusHeld {
			t.Fatalf("expected status %s, got %s", domain.ReservationStatusHeld, res.Status)
		}
		if res.TotalPrice != 30000 {
			t.Fatalf("expected price 30000 for 3 nights, got %d", res.TotalPrice)
		}
		if res.ExpiresAt == nil || !res.ExpiresAt.Equal(now.Add(ttl)) {
			t.Fatalf("expected expires_at %v, got %v", now.Add(ttl), res.ExpiresAt)
		}
		if got := repo.resources["res-1"].Status; got != domain.ResourceStatusReserved {
			t.Fatalf("expected resource status reserved, got %s", got)
		}
		if got := notifier.events; len(got) != 1 || got[0] != "created" {
			t.Fatalf("expected single created event, got %v", got)
		}
		// Calendar stays untouched unless the hold asks for it.
		if n := repo.countDays("res-1", domain.DayStatusBooked); n != 0 {
			t.Fatalf("expected no booked days, got %d", n)
		}
	})

	t.Run("hold_calendar blocks the range immediately", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc, _ := makeSvc(repo)

		res, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID:   "res-1",
			HolderID:     "guest-1",
			StartDate:    domain.Date(2025, 6, 10),
			EndDate:      domain.Date(2025, 6, 13),
			HoldCalendar: true,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := repo.countDays("res-1", domain.DayStatusBooked); n != 3 {
			t.Fatalf("expected 3 booked days, got %d", n)
		}
		day := repo.days[dayKey("res-1", domain.Date(2025, 6, 10))]
		if day.ReservationID != res.ID {
			t.Fatalf("expected day to reference reservation %s, got %q", res.ID, day.ReservationID)
		}
	})

	t.Run("caller TTL overrides the default", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc, _ := makeSvc(repo)

		res, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 11),
			HoldTTL:    2 * time.Hour,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.ExpiresAt == nil || !res.ExpiresAt.Equal(now.Add(2*time.Hour)) {
			t.Fatalf("expected expires_at %v, got %v", now.Add(2*time.Hour), res.ExpiresAt)
		}
	})

	t.Run("rejects invalid ranges", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc, _ := makeSvc(repo)

		for _, tc := range []struct{ start, end time.Time }{
			{domain.Date(2025, 6, 10), domain.Date(2025, 6, 10)},
			{domain.Date(2025, 6, 13), domain.Date(2025, 6, 10)},
		} {
			_, err := svc.Create(context.Background(), CreateReservationInput{
				ResourceID: "res-1",
				HolderID:   "guest-1",
				StartDate:  tc.start,
				EndDate:    tc.end,
			})
			if err != domain.ErrInvalidRange {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
		}
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc, _ := makeSvc(repo)

		_, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 11),
		})
		if err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _ := makeSvc(repo)

		_, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "nope",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 11),
		})
		if err != domain.ErrResourceNotFound {
			t.Fatalf("expected ErrResourceNotFound, got %v", err)
		}
	})

	t.Run("denied by overlapping reservation", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(domain.Reservation{
			ID:         "existing",
			ResourceID: "res-1",
			HolderID:   "guest-0",
			StartDate:  domain.Date(2025, 6, 12),
			EndDate:    domain.Date(2025, 6, 15),
			Status:     domain.ReservationStatusConfirmed,
		})
		svc, _ := makeSvc(repo)

		_, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
		})
		if err != domain.ErrNotAvailable {
			t.Fatalf("expected ErrNotAvailable, got %v", err)
		}
	})

	t.Run("denied by blocked calendar day", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putDay(domain.CalendarDay{
			ResourceID: "res-1",
			Date:       domain.Date(2025, 6, 11),
			Status:     domain.DayStatusMaintenance,
		})
		svc, _ := makeSvc(repo)

		_, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
		})
		if err != domain.ErrNotAvailable {
			t.Fatalf("expected ErrNotAvailable, got %v", err)
		}
	})

	t.Run("second overlapping create loses", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc, _ := makeSvc(repo)

		first, err := svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
		})
		if err != nil {
			t.Fatalf("first create: %v", err)
		}

		_, err = svc.Create(context.Background(), CreateReservationInput{
			ResourceID: "res-1",
			HolderID:   "guest-2",
			StartDate:  domain.Date(2025, 6, 12),
			EndDate:    domain.Date(2025, 6, 14),
		})
		if err != domain.ErrNotAvailable {
			t.Fatalf("expected ErrNotAvailable for second create, got %v", err)
		}
		if len(repo.reservations) != 1 {
			t.Fatalf("expected single reservation, got %d", len(repo.reservations))
		}
		if _, ok := repo.reservations[first.ID]; !ok {
			t.Fatalf("expected first reservation to survive")
		}
	})
}

func TestReservationService_Cancel(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resource := domain.Resource{ID: "res-1", Name: "Cabin A", DailyRate: 10000, Status: domain.ResourceStatusReserved}

	held := domain.Reservation{
		ID:         "rsv-1",
		ResourceID: "res-1",
		HolderID:   "guest-1",
		StartDate:  domain.Date(2025, 6, 10),
		EndDate:    domain.Date(2025, 6, 13),
		Status:     domain.ReservationStatusHeld,
	}

	t.Run("cancels and releases only own days", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(held)
		repo.blockRange("res-1", held.StartDate, held.EndDate, domain.DayStatusBooked, held.ID)
		// Operator block inside the range, not tied to the reservation.
		repo.putDay(domain.CalendarDay{
			ResourceID: "res-1",
			Date:       domain.Date(2025, 6, 12),
			Status:     domain.DayStatusBlocked,
			Notes:      "deep clean",
		})

		notifier := &recordingNotifier{}
		svc := NewReservationService(repo, clock.NewFixed(now), WithNotifier(notifier), WithLogger(discardLogger()))

		res, err := svc.Cancel(context.Background(), CancelReservationInput{
			ReservationID: "rsv-1",
			ActorID:       "guest-1",
			Reason:        "change of plans",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Status != domain.ReservationStatusCancelled {
			t.Fatalf("expected cancelled, got %s", res.Status)
		}
		if res.CancelledAt == nil || !res.CancelledAt.Equal(now) {
			t.Fatalf("expected cancelled_at %v, got %v", now, res.CancelledAt)
		}
		if res.CancelledBy != "guest-1" || res.CancelReason != "change of plans" {
			t.Fatalf("unexpected audit fields: %q %q", res.CancelledBy, res.CancelReason)
		}

		if got := repo.days[dayKey("res-1", domain.Date(2025, 6, 10))].Status; got != domain.DayStatusFree {
			t.Fatalf("expected day freed, got %s", got)
		}
		if got := repo.days[dayKey("res-1", domain.Date(2025, 6, 12))].Status; got != domain.DayStatusBlocked {
			t.Fatalf("expected operator block to survive, got %s", got)
		}
		if got := repo.resources["res-1"].Status; got != domain.ResourceStatusAvailable {
			t.Fatalf("expected resource available, got %s", got)
		}
		if got := notifier.events; len(got) != 1 || got[0] != "cancelled" {
			t.Fatalf("expected single cancelled event, got %v", got)
		}
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(held)

		notifier := &recordingNotifier{}
		svc := NewReservationService(repo, clock.NewFixed(now), WithNotifier(notifier), WithLogger(discardLogger()))

		if _, err := svc.Cancel(context.Background(), CancelReservationInput{ReservationID: "rsv-1", ActorID: "guest-1"}); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		res, err := svc.Cancel(context.Background(), CancelReservationInput{ReservationID: "rsv-1", ActorID: "guest-1"})
		if err != nil {
			t.Fatalf("second cancel: %v", err)
		}
		if res.Status != domain.ReservationStatusCancelled {
			t.Fatalf("expected cancelled, got %s", res.Status)
		}
		if len(notifier.events) != 1 {
			t.Fatalf("expected one cancelled event, got %v", notifier.events)
		}
	})

	t.Run("completed stays cannot be cancelled", func(t *testing.T) {
		done := held
		done.Status = domain.ReservationStatusCompleted

		repo := newFakeRepo(resource)
		repo.putReservation(done)
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		_, err := svc.Cancel(context.Background(), CancelReservationInput{ReservationID: "rsv-1"})
		if err != domain.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		repo := newFakeRepo(resource)
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		_, err := svc.Cancel(context.Background(), CancelReservationInput{ReservationID: "missing"})
		if err != domain.ErrReservationNotFound {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})
}

func TestReservationService_Confirm(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resource := domain.Resource{ID: "res-1", Name: "Cabin A", DailyRate: 10000, Status: domain.ResourceStatusReserved}

	held := func(expiresAt time.Time) domain.Reservation {
		return domain.Reservation{
			ID:         "rsv-1",
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
			Status:     domain.ReservationStatusHeld,
			ExpiresAt:  &expiresAt,
		}
	}

	t.Run("confirms an unexpired hold and books the calendar", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(held(now.Add(5 * time.Minute)))

		notifier := &recordingNotifier{}
		svc := NewReservationService(repo, clock.NewFixed(now), WithNotifier(notifier), WithLogger(discardLogger()))

		res, err := svc.Confirm(context.Background(), "rsv-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Status != domain.ReservationStatusConfirmed {
			t.Fatalf("expected confirmed, got %s", res.Status)
		}
		if res.ExpiresAt != nil {
			t.Fatalf("expected expires_at cleared, got %v", res.ExpiresAt)
		}
		if n := repo.countDays("res-1", domain.DayStatusBooked); n != 3 {
			t.Fatalf("expected 3 booked days after confirm, got %d", n)
		}
		if got := notifier.events; len(got) != 1 || got[0] != "confirmed" {
			t.Fatalf("expected confirmed event, got %v", got)
		}
	})

	t.Run("lapsed hold cannot confirm", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(held(now.Add(-time.Minute)))
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		_, err := svc.Confirm(context.Background(), "rsv-1")
		if err != domain.ErrHoldExpired {
			t.Fatalf("expected ErrHoldExpired, got %v", err)
		}
	})

	t.Run("only held reservations confirm", func(t *testing.T) {
		cancelled := held(now.Add(5 * time.Minute))
		cancelled.Status = domain.ReservationStatusCancelled

		repo := newFakeRepo(resource)
		repo.putReservation(cancelled)
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		_, err := svc.Confirm(context.Background(), "rsv-1")
		if err != domain.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestReservationService_Fail(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resource := domain.Resource{ID: "res-1", Name: "Cabin A", DailyRate: 10000}
	expiry := now.Add(5 * time.Minute)

	t.Run("marks held payment_failed and keeps the calendar", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(domain.Reservation{
			ID:         "rsv-1",
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
			Status:     domain.ReservationStatusHeld,
			ExpiresAt:  &expiry,
		})
		repo.blockRange("res-1", domain.Date(2025, 6, 10), domain.Date(2025, 6, 13), domain.DayStatusBooked, "rsv-1")

		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		res, err := svc.Fail(context.Background(), "rsv-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Status != domain.ReservationStatusPaymentFailed {
			t.Fatalf("expected payment_failed, got %s", res.Status)
		}
		if n := repo.countDays("res-1", domain.DayStatusBooked); n != 3 {
			t.Fatalf("expected booked days kept, got %d", n)
		}
	})

	t.Run("only held reservations fail", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(domain.Reservation{
			ID:         "rsv-1",
			ResourceID: "res-1",
			Status:     domain.ReservationStatusConfirmed,
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
		})
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		_, err := svc.Fail(context.Background(), "rsv-1")
		if err != domain.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestReservationService_Expire(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resource := domain.Resource{ID: "res-1", Name: "Cabin A", DailyRate: 10000, Status: domain.ResourceStatusReserved}

	heldAt := func(expiresAt time.Time) domain.Reservation {
		return domain.Reservation{
			ID:         "rsv-1",
			ResourceID: "res-1",
			HolderID:   "guest-1",
			StartDate:  domain.Date(2025, 6, 10),
			EndDate:    domain.Date(2025, 6, 13),
			Status:     domain.ReservationStatusHeld,
			ExpiresAt:  &expiresAt,
		}
	}

	t.Run("cancels a lapsed hold", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(heldAt(now.Add(-time.Minute)))
		repo.blockRange("res-1", domain.Date(2025, 6, 10), domain.Date(2025, 6, 13), domain.DayStatusBooked, "rsv-1")

		notifier := &recordingNotifier{}
		svc := NewReservationService(repo, clock.NewFixed(now), WithNotifier(notifier), WithLogger(discardLogger()))

		res, expired, err := svc.Expire(context.Background(), "rsv-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !expired {
			t.Fatalf("expected expired=true")
		}
		if res.Status != domain.ReservationStatusCancelled {
			t.Fatalf("expected cancelled, got %s", res.Status)
		}
		if res.CancelReason != ReasonHoldExpired || res.CancelledBy != "" {
			t.Fatalf("unexpected audit fields: %q %q", res.CancelledBy, res.CancelReason)
		}
		if n := repo.countDays("res-1", domain.DayStatusBooked); n != 0 {
			t.Fatalf("expected days released, got %d booked", n)
		}
		if got := notifier.events; len(got) != 1 || got[0] != "expired" {
			t.Fatalf("expected expired event, got %v", got)
		}
	})

	t.Run("unexpired hold is left alone", func(t *testing.T) {
		repo := newFakeRepo(resource)
		repo.putReservation(heldAt(now.Add(time.Minute)))
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		res, expired, err := svc.Expire(context.Background(), "rsv-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if expired {
			t.Fatalf("expected expired=false")
		}
		if res.Status != domain.ReservationStatusHeld {
			t.Fatalf("expected status unchanged, got %s", res.Status)
		}
	})

	t.Run("confirmed reservation is never expired", func(t *testing.T) {
		confirmed := heldAt(now.Add(-time.Minute))
		confirmed.Status = domain.ReservationStatusConfirmed

		repo := newFakeRepo(resource)
		repo.putReservation(confirmed)
		svc := NewReservationService(repo, clock.NewFixed(now), WithLogger(discardLogger()))

		_, expired, err := svc.Expire(context.Background(), "rsv-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if expired {
			t.Fatalf("expected expired=false for confirmed reservation")
		}
	})
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) ReservationCreated(context.Context, domain.Reservation) {
	n.events = append(n.events, "created")
}

func (n *recordingNotifier) ReservationConfirmed(context.Context, domain.Reservation) {
	n.events = append(n.events, "confirmed")
}

func (n *recordingNotifier) ReservationCancelled(context.Context, domain.Reservation) {
	n.events = append(n.events, "cancelled")
}

func (n *recordingNotifier) ReservationExpired(context.Context, domain.Reservation) {
	n.events = append(n.events, "expired")
}

func (n *recordingNotifier) ReservationCompleted(context.Context, domain.Reservation) {
	n.events = append(n.events, "completed")
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakeRepo is an in-memory stand-in for the Postgres repository, shared by the
// service and sweeper tests in this package.
type fakeRepo struct {
	resources    map[string]domain.Resource
	reservations map[string]domain.Reservation
	days         map[string]domain.CalendarDay
}

func newFakeRepo(resources ...domain.Resource) *fakeRepo {
	f := &fakeRepo{
		resources:    make(map[string]domain.Resource),
		reservations: make(map[string]domain.Reservation),
		days:         make(map[string]domain.CalendarDay),
	}
	for _, r := range resources {
		f.resources[r.ID] = r
	}
	return f
}

func dayKey(resourceID string, date time.Time) string {
	return resourceID + "|" + date.Format("2006-01-02")
}

func (f *fakeRepo) putReservation(res domain.Reservation) {
	f.reservations[res.ID] = res
}

func (f *fakeRepo) putDay(day domain.CalendarDay) {
	f.days[dayKey(day.ResourceID, day.Date)] = day
}

func (f *fakeRepo) blockRange(resourceID string, start, end time.Time, status domain.DayStatus, reservationID string) {
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		f.putDay(domain.CalendarDay{ResourceID: resourceID, Date: d, Status: status, ReservationID: reservationID})
	}
}

func (f *fakeRepo) countDays(resourceID string, status domain.DayStatus) int {
	n := 0
	for _, d := range f.days {
		if d.ResourceID == resourceID && d.Status == status {
			n++
		}
	}
	return n
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) GetResourceForUpdate(_ context.Context, resourceID string) (domain.Resource, error) {
	res, ok := f.resources[resourceID]
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return res, nil
}

func (f *fakeRepo) HasOverlappingReservations(_ context.Context, resourceID string, start, end time.Time) (bool, error) {
	for _, res := range f.reservations {
		if res.ResourceID == resourceID && res.Status.Blocks() && res.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) HasBlockingDays(_ context.Context, resourceID string, start, end time.Time) (bool, error) {
	for _, d := range f.days {
		if d.ResourceID == resourceID && d.Status.BlocksBooking() &&
			!d.Date.Before(start) && d.Date.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateReservation(_ context.Context, res domain.Reservation) error {
	f.reservations[res.ID] = res
	return nil
}

func (f *fakeRepo) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	res, ok := f.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return res, nil
}

func (f *fakeRepo) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	return f.GetReservation(ctx, id)
}

func (f *fakeRepo) UpdateReservation(_ context.Context, res domain.Reservation) error {
	if _, ok := f.reservations[res.ID]; !ok {
		return domain.ErrReservationNotFound
	}
	f.reservations[res.ID] = res
	return nil
}

func (f *fakeRepo) UpdateReservationStatus(_ context.Context, id string, status domain.ReservationStatus) error {
	res, ok := f.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	res.Status = status
	f.reservations[id] = res
	return nil
}

func (f *fakeRepo) BlockDays(_ context.Context, resourceID string, start, end time.Time, status domain.DayStatus, reservationID string) error {
	f.blockRange(resourceID, start, end, status, reservationID)
	return nil
}

func (f *fakeRepo) ReleaseDays(_ context.Context, resourceID string, start, end time.Time, reservationID string) error {
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := dayKey(resourceID, d)
		day, ok := f.days[key]
		if !ok || day.ReservationID != reservationID {
			continue
		}
		day.Status = domain.DayStatusFree
		day.ReservationID = ""
		f.days[key] = day
	}
	return nil
}

func (f *fakeRepo) SetResourceStatus(_ context.Context, resourceID string, status domain.ResourceStatus) error {
	res, ok := f.resources[resourceID]
	if !ok {
		return domain.ErrResourceNotFound
	}
	res.Status = status
	f.resources[resourceID] = res
	return nil
}

func (f *fakeRepo) ListBlockingReservations(_ context.Context, resourceID string, start, end time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range f.reservations {
		if res.ResourceID == resourceID && res.Status.Blocks() && res.Overlaps(start, end) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeRepo) ListBlockingDays(_ context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error) {
	var out []domain.CalendarDay
	for _, d := range f.days {
		if d.ResourceID == resourceID && d.Status.BlocksBooking() &&
			!d.Date.Before(start) && d.Date.Before(end) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeRepo) ReservedNights(_ context.Context, resourceID string, start, end time.Time) (int, error) {
	total := 0
	for _, res := range f.reservations {
		if res.ResourceID != resourceID {
			continue
		}
		if res.Status != domain.ReservationStatusConfirmed && res.Status != domain.ReservationStatusCompleted {
			continue
		}
		if !res.Overlaps(start, end) {
			continue
		}
		s, e := res.StartDate, res.EndDate
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		total += domain.Nights(s, e)
	}
	return total, nil
}

func (f *fakeRepo) ListExpiredHeld(_ context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range f.reservations {
		if res.Status == domain.ReservationStatusHeld && res.ExpiresAt != nil && !res.ExpiresAt.After(now) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListFinishedConfirmed(_ context.Context, today time.Time, limit int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range f.reservations {
		if res.Status == domain.ReservationStatusConfirmed && res.EndDate.Before(today) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListInStayConfirmed(_ context.Context, today time.Time, limit int) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range f.reservations {
		if res.Status == domain.ReservationStatusConfirmed &&
			!res.StartDate.After(today) && res.EndDate.After(today) {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
