package app

import (
	"context"
	"log"

	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// Notifier is the fire-and-forget notification collaborator. Implementations
// must never block the calling operation; a delivery failure is logged by the
// implementation, not propagated.
type Notifier interface {
	ReservationCreated(ctx context.Context, res domain.Reservation)
	ReservationConfirmed(ctx context.Context, res domain.Reservation)
	ReservationCancelled(ctx context.Context, res domain.Reservation)
	ReservationExpired(ctx context.Context, res domain.Reservation)
	ReservationCompleted(ctx context.Context, res domain.Reservation)
}

// LogNotifier writes notification events to a logger. It stands in for the
// external dispatch pipeline (email, chat bots) which is out of scope here.
type LogNotifier struct {
	Logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) ReservationCreated(_ context.Context, res domain.Reservation) {
	n.log("reservation_created", res)
}

func (n *LogNotifier) ReservationConfirmed(_ context.Context, res domain.Reservation) {
	n.log("reservation_confirmed", res)
}

func (n *LogNotifier) ReservationCancelled(_ context.Context, res domain.Reservation) {
	n.log("reservation_cancelled", res)
}

func (n *LogNotifier) ReservationExpired(_ context.Context, res domain.Reservation) {
	n.log("reservation_expired", res)
}

func (n *LogNotifier) ReservationCompleted(_ context.Context, res domain.Reservation) {
	n.log("reservation_completed", res)
}

func (n *LogNotifier) log(event string, res domain.Reservation) {
	n.Logger.Printf(
		"notify event=%s reservation=%s resource=%s holder=%s range=%s..%s",
		event,
		res.ID,
		res.ResourceID,
		res.HolderID,
		res.StartDate.Format("2006-01-02"),
		res.EndDate.Format("2006-01-02"),
	)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ReservationCreated(context.Context, domain.Reservation)   {}
func (NopNotifier) ReservationConfirmed(context.Context, domain.Reservation) {}
func (NopNotifier) ReservationCancelled(context.Context, domain.Reservation) {}
func (NopNotifier) ReservationExpired(context.Context, domain.Reservation)   {}
func (NopNotifier) ReservationCompleted(context.Context, domain.Reservation) {}
