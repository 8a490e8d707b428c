package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository over SQLite.
type ReservationRepository struct {
	pool *Pool
}

// NewReservationRepository creates a SQLite backed reservation repository.
func NewReservationRepository(pool *Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// CreateReservation inserts a reservation template and returns it with its
// assigned id.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) (persistence.Reservation, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO reservations
			(resource_id, user_id, home_id, title, description, start_utc, end_utc, recurrence_rule, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.ResourceID,
		reservation.UserID,
		nullableID(reservation.HomeID),
		reservation.Title,
		reservation.Description,
		formatTime(reservation.StartUTC),
		formatTime(reservation.EndUTC),
		reservation.RecurrenceRule,
		formatTime(reservation.CreatedAt),
		formatTime(reservation.UpdatedAt),
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Reservation{}, fmt.Errorf("sqlite: reservation insert id: %w", err)
	}
	reservation.ID = id
	return reservation, nil
}

// GetReservation retrieves a reservation template by id.
func (r *ReservationRepository) GetReservation(ctx context.Context, id int64) (persistence.Reservation, error) {
	row := r.pool.db.QueryRowContext(ctx, reservationSelect+" WHERE id = ?", id)
	return scanReservation(row)
}

// ListReservations returns templates matching the filter, ordered by start.
// With a window set, one-off templates are restricted to those overlapping
// [Start, End); recurring templates are always returned for expansion.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if filter.ResourceID != nil {
		conditions = append(conditions, "resource_id = ?")
		args = append(args, *filter.ResourceID)
	}
	if filter.HomeID != nil {
		conditions = append(conditions, "home_id = ?")
		args = append(args, *filter.HomeID)
	}
	if filter.Start != nil && filter.End != nil {
		// Mirrors booking.Overlaps for the stored one-off intervals.
		conditions = append(conditions, "(recurrence_rule <> '' OR (end_utc > ? AND start_utc < ?))")
		args = append(args, formatTime(*filter.Start), formatTime(*filter.End))
	}

	query := reservationSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_utc ASC, id ASC"

	return r.listReservations(ctx, query, args...)
}

// ListReservationsForResource returns every template for a resource.
func (r *ReservationRepository) ListReservationsForResource(ctx context.Context, resourceID int64) ([]persistence.Reservation, error) {
	return r.listReservations(ctx,
		reservationSelect+" WHERE resource_id = ? ORDER BY start_utc ASC, id ASC", resourceID)
}

// DeleteReservation removes a reservation template by id.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id int64) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// DeleteReservationsForHome removes every template in a home and reports how
// many were deleted. Used by feed reconciliation's full-replace step.
func (r *ReservationRepository) DeleteReservationsForHome(ctx context.Context, homeID int64) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM reservations WHERE home_id = ?", homeID)
	if err != nil {
		return 0, mapError(err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return deleted, nil
}

const reservationSelect = `
	SELECT id, resource_id, user_id, home_id, title, description,
		start_utc, end_utc, recurrence_rule, created_at, updated_at
	FROM reservations`

func (r *ReservationRepository) listReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var homeID sql.NullInt64
	var startUTC, endUTC, createdAt, updatedAt string

	err := row.Scan(
		&reservation.ID,
		&reservation.ResourceID,
		&reservation.UserID,
		&homeID,
		&reservation.Title,
		&reservation.Description,
		&startUTC,
		&endUTC,
		&reservation.RecurrenceRule,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, mapError(err)
	}

	reservation.HomeID = idPointer(homeID)
	if reservation.StartUTC, err = parseTime(startUTC); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.EndUTC, err = parseTime(endUTC); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}
