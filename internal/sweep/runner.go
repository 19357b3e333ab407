package sweep

import (
	"context"
	"log"
	"time"

	"github.com/talasbekov/rental-project-sub000/internal/app"
	"github.com/talasbekov/rental-project-sub000/internal/clock"
)

// Sweeper is a single pass over the store, returning how many rows it touched.
type Sweeper interface {
	RunOnce(ctx context.Context) (int, error)
}

// Runner drives a sweeper on a fixed interval until the context is cancelled.
// The first pass runs immediately so a restarted process catches up without
// waiting a full interval.
type Runner struct {
	name     string
	sweeper  Sweeper
	interval time.Duration
	logger   *log.Logger
}

func NewRunner(name string, sweeper Sweeper, interval time.Duration, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{name: name, sweeper: sweeper, interval: interval, logger: logger}
}

func (r *Runner) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	n, err := r.sweeper.RunOnce(ctx)
	if err != nil {
		r.logger.Printf("sweep %s: %v", r.name, err)
		return
	}
	if n > 0 {
		r.logger.Printf("sweep %s: processed %d", r.name, n)
	}
}

// ScheduleExpiry arms a one-shot timer that expires a single hold when its
// TTL lapses. Expire re-checks state under the resource lock, so a hold that
// was confirmed or cancelled in the meantime is left alone. The periodic
// expiry runner remains the backstop if the process dies before the timer
// fires.
func ScheduleExpiry(ctx context.Context, svc app.Expirer, clk clock.Clock, reservationID string, expiresAt time.Time, logger *log.Logger) *time.Timer {
	if logger == nil {
		logger = log.Default()
	}
	delay := expiresAt.Sub(clk.Now())
	if delay < 0 {
		delay = 0
	}
	return time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		if _, expired, err := svc.Expire(ctx, reservationID); err != nil {
			logger.Printf("sweep expiry timer: reservation %s: %v", reservationID, err)
		} else if expired {
			logger.Printf("sweep expiry timer: reservation %s expired", reservationID)
		}
	})
}
