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

const reservationColumns = `
id, resource_id, holder_id, start_date, end_date, total_price, status,
expires_at, cancelled_at, COALESCE(cancelled_by, ''), COALESCE(cancel_reason, ''), created_at`

// ReservationRepository backs the reservation service, the availability
// checker and both sweepers. Reservation rows, their calendar side effects
// and the resource row lock live behind one repository because they must
// mutate inside one transaction.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetResourceForUpdate takes the exclusive per-resource row lock that
// serializes all create/cancel calls for the resource.
func (r *ReservationRepository) GetResourceForUpdate(ctx context.Context, resourceID string) (domain.Resource, error) {
	const query = `SELECT id, name, daily_rate, status, created_at FROM resources WHERE id = $1 FOR UPDATE`

	var res domain.Resource
	err := r.queryRow(ctx, query, resourceID).
		Scan(&res.ID, &res.Name, &res.DailyRate, &res.Status, &res.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Resource{}, domain.ErrInvalidID
		}
		if isLockTimeout(err) {
			return domain.Resource{}, domain.ErrLockTimeout
		}
		if err == pgx.ErrNoRows {
			return domain.Resource{}, domain.ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("get resource for update: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) HasOverlappingReservations(ctx context.Context, resourceID string, start, end time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM reservations
	WHERE resource_id = $1
	  AND status IN ('held', 'confirmed')
	  AND start_date < $3 AND end_date > $2
)`

	var exists bool
	if err := r.queryRow(ctx, query, resourceID, start, end).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("overlapping reservations: %w", err)
	}
	return exists, nil
}

func (r *ReservationRepository) HasBlockingDays(ctx context.Context, resourceID string, start, end time.Time) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM calendar_days
	WHERE resource_id = $1
	  AND date >= $2 AND date < $3
	  AND status IN ('booked', 'occupied', 'blocked', 'cleaning', 'maintenance')
)`

	var exists bool
	if err := r.queryRow(ctx, query, resourceID, start, end).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("blocking days: %w", err)
	}
	return exists, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations
	(id, resource_id, holder_id, start_date, end_date, total_price, status, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.ResourceID,
		res.HolderID,
		res.StartDate,
		res.EndDate,
		res.TotalPrice,
		res.Status,
		res.ExpiresAt,
		res.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.scanReservation(r.queryRow(ctx, query, id))
}

func (r *ReservationRepository) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return r.scanReservation(r.queryRow(ctx, query, id))
}

func (r *ReservationRepository) UpdateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
UPDATE reservations
SET status = $2,
    expires_at = $3,
    cancelled_at = $4,
    cancelled_by = NULLIF($5, ''),
    cancel_reason = NULLIF($6, '')
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		res.ID,
		res.Status,
		res.ExpiresAt,
		res.CancelledAt,
		res.CancelledBy,
		res.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) UpdateReservationStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	const stmt = `UPDATE reservations SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// BlockDays upserts one row per day in [start, end), preserving the unique
// (resource_id, date) invariant.
func (r *ReservationRepository) BlockDays(ctx context.Context, resourceID string, start, end time.Time, status domain.DayStatus, reservationID string) error {
	const stmt = `
INSERT INTO calendar_days (resource_id, date, status, reservation_id)
SELECT $1, d::date, $4, NULLIF($5, '')::uuid
FROM generate_series($2::date, $3::date - 1, interval '1 day') AS d
ON CONFLICT (resource_id, date)
DO UPDATE SET status = EXCLUDED.status, reservation_id = EXCLUDED.reservation_id`

	if _, err := r.exec(ctx, stmt, resourceID, start, end, status, reservationID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("block days: %w", err)
	}
	return nil
}

// ReleaseDays frees only the rows the given reservation holds, so an
// operator block inside the range survives a cancellation.
func (r *ReservationRepository) ReleaseDays(ctx context.Context, resourceID string, start, end time.Time, reservationID string) error {
	const stmt = `
UPDATE calendar_days
SET status = 'free', reservation_id = NULL
WHERE resource_id = $1 AND date >= $2 AND date < $3 AND reservation_id = $4`

	if _, err := r.exec(ctx, stmt, resourceID, start, end, reservationID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("release days: %w", err)
	}
	return nil
}

func (r *ReservationRepository) SetResourceStatus(ctx context.Context, resourceID string, status domain.ResourceStatus) error {
	const stmt = `UPDATE resources SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, resourceID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set resource status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *ReservationRepository) ListExpiredHeld(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'held' AND expires_at IS NOT NULL AND expires_at <= $1
ORDER BY expires_at
LIMIT $2`

	return r.listReservations(ctx, query, now, limit)
}

func (r *ReservationRepository) ListFinishedConfirmed(ctx context.Context, today time.Time, limit int) ([]domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'confirmed' AND end_date < $1
ORDER BY end_date
LIMIT $2`

	return r.listReservations(ctx, query, today, limit)
}

func (r *ReservationRepository) ListInStayConfirmed(ctx context.Context, today time.Time, limit int) ([]domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'confirmed' AND start_date <= $1 AND end_date > $1
ORDER BY start_date
LIMIT $2`

	return r.listReservations(ctx, query, today, limit)
}

func (r *ReservationRepository) ListBlockingReservations(ctx context.Context, resourceID string, start, end time.Time) ([]domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE resource_id = $1
  AND status IN ('held', 'confirmed')
  AND start_date < $3 AND end_date > $2
ORDER BY start_date`

	return r.listReservations(ctx, query, resourceID, start, end)
}

func (r *ReservationRepository) ListBlockingDays(ctx context.Context, resourceID string, start, end time.Time) ([]domain.CalendarDay, error) {
	const query = `
SELECT resource_id, date, status, COALESCE(reservation_id::text, ''), notes
FROM calendar_days
WHERE resource_id = $1
  AND date >= $2 AND date < $3
  AND status IN ('booked', 'occupied', 'blocked', 'cleaning', 'maintenance')
ORDER BY date`

	rows, err := r.query(ctx, query, resourceID, start, end)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list blocking days: %w", err)
	}
	defer rows.Close()

	var days []domain.CalendarDay
	for rows.Next() {
		var d domain.CalendarDay
		if err := rows.Scan(&d.ResourceID, &d.Date, &d.Status, &d.ReservationID, &d.Notes); err != nil {
			return nil, fmt.Errorf("scan calendar day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ReservedNights sums the nights of confirmed/completed stays clipped to
// [start, end); date subtraction in Postgres yields whole days.
func (r *ReservationRepository) ReservedNights(ctx context.Context, resourceID string, start, end time.Time) (int, error) {
	const query = `
SELECT COALESCE(SUM(LEAST(end_date, $3::date) - GREATEST(start_date, $2::date)), 0)
FROM reservations
WHERE resource_id = $1
  AND status IN ('confirmed', 'completed')
  AND start_date < $3 AND end_date > $2`

	var nights int
	if err := r.queryRow(ctx, query, resourceID, start, end).Scan(&nights); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("reserved nights: %w", err)
	}
	return nights, nil
}

func (r *ReservationRepository) listReservations(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.ResourceID,
			&res.HolderID,
			&res.StartDate,
			&res.EndDate,
			&res.TotalPrice,
			&res.Status,
			&res.ExpiresAt,
			&res.CancelledAt,
			&res.CancelledBy,
			&res.CancelReason,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepository) scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.ResourceID,
		&res.HolderID,
		&res.StartDate,
		&res.EndDate,
		&res.TotalPrice,
		&res.Status,
		&res.ExpiresAt,
		&res.CancelledAt,
		&res.CancelledBy,
		&res.CancelReason,
		&res.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if isLockTimeout(err) {
			return domain.Reservation{}, domain.ErrLockTimeout
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
