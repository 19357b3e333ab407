package sweep

import (
	"context"
	"log"

	"github.com/talasbekov/rental-project-sub000/internal/app"
	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// ExpiryTimers is a notifier decorator that arms a one-shot expiry timer for
// every hold created while the process is up, then forwards the event to the
// wrapped notifier. Timers are bounded by the context given at construction;
// request contexts end long before a hold's TTL, so the process context is
// the right bound.
type ExpiryTimers struct {
	ctx    context.Context
	next   app.Notifier
	svc    app.Expirer
	clock  clock.Clock
	logger *log.Logger
}

func NewExpiryTimers(ctx context.Context, clk clock.Clock, next app.Notifier, logger *log.Logger) *ExpiryTimers {
	if next == nil {
		next = app.NopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ExpiryTimers{ctx: ctx, next: next, clock: clk, logger: logger}
}

// Bind sets the service the timers call. The reservation service takes its
// notifier at construction, so the back-reference lands one step later.
func (e *ExpiryTimers) Bind(svc app.Expirer) {
	e.svc = svc
}

func (e *ExpiryTimers) ReservationCreated(ctx context.Context, res domain.Reservation) {
	e.next.ReservationCreated(ctx, res)
	if e.svc != nil && res.ExpiresAt != nil {
		ScheduleExpiry(e.ctx, e.svc, e.clock, res.ID, *res.ExpiresAt, e.logger)
	}
}

func (e *ExpiryTimers) ReservationConfirmed(ctx context.Context, res domain.Reservation) {
	e.next.ReservationConfirmed(ctx, res)
}

func (e *ExpiryTimers) ReservationCancelled(ctx context.Context, res domain.Reservation) {
	e.next.ReservationCancelled(ctx, res)
}

func (e *ExpiryTimers) ReservationExpired(ctx context.Context, res domain.Reservation) {
	e.next.ReservationExpired(ctx, res)
}

func (e *ExpiryTimers) ReservationCompleted(ctx context.Context, res domain.Reservation) {
	e.next.ReservationCompleted(ctx, res)
}
