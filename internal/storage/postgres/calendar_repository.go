package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talasbekov/rental-project-sub000/internal/domain"
)

// CalendarRepository serves the operator-facing calendar operations: manual
// blocks, the day view, seeding and retention cleanup.
type CalendarRepository struct {
	pool *pgxpool.Pool
}

func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

func (r *CalendarRepository) ListDays(ctx context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error) {
	const query = `
SELECT resource_id, date, status, COALESCE(reservation_id::text, ''), notes
FROM calendar_days
WHERE resource_id = $1 AND date >= $2 AND date < $3
ORDER BY date`

	rows, err := r.query(ctx, query, resourceID, start, end)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []domain.CalendarDay
	for rows.Next() {
		var d domain.CalendarDay
		if err := rows.Scan(&d.ResourceID, &d.Date, &d.Status, &d.ReservationID, &d.Notes); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// BlockDaysWithNotes upserts operator blocks over [start, end) and returns
// how many days were written.
func (r *CalendarRepository) BlockDaysWithNotes(ctx context.Context, resourceID string, start, end time.Time, status domain.DayStatus, notes string) (int, error) {
	const stmt = `
INSERT INTO calendar_days (resource_id, date, status, notes)
SELECT $1, d::date, $4, $5
FROM generate_series($2::date, $3::date - 1, interval '1 day') AS d
ON CONFLICT (resource_id, date)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes`

	tag, err := r.exec(ctx, stmt, resourceID, start, end, status, notes)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("block days: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// UnblockDays frees operator-owned rows of any status (blocked, maintenance,
// manually placed cleaning). Reservation-owned days carry a reservation_id and
// are released through cancellation or rewritten by the lifecycle sweep.
func (r *CalendarRepository) UnblockDays(ctx context.Context, resourceID string, start, end time.Time) (int, error) {
	const stmt = `
UPDATE calendar_days
SET status = 'free', notes = ''
WHERE resource_id = $1 AND date >= $2 AND date < $3
  AND reservation_id IS NULL AND status <> 'free'`

	tag, err := r.exec(ctx, stmt, resourceID, start, end)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("unblock days: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SeedDays lazily pre-populates free rows without touching existing ones.
func (r *CalendarRepository) SeedDays(ctx context.Context, resourceID string, from time.Time, days int) error {
	const stmt = `
INSERT INTO calendar_days (resource_id, date, status)
SELECT $1, d::date, 'free'
FROM generate_series($2::date, $2::date + ($3 - 1), interval '1 day') AS d
ON CONFLICT (resource_id, date) DO NOTHING`

	if _, err := r.exec(ctx, stmt, resourceID, from, days); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("seed days: %w", err)
	}
	return nil
}

func (r *CalendarRepository) DeleteDaysBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const stmt = `DELETE FROM calendar_days WHERE date < $1`

	tag, err := r.exec(ctx, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old days: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CalendarRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CalendarRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
