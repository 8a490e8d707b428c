package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// HomeRepository implements persistence.HomeRepository over SQLite.
type HomeRepository struct {
	pool *Pool
}

// NewHomeRepository creates a SQLite backed home repository.
func NewHomeRepository(pool *Pool) *HomeRepository {
	return &HomeRepository{pool: pool}
}

// CreateHome inserts a home and enrolls the owner as its first member.
func (r *HomeRepository) CreateHome(ctx context.Context, home persistence.Home) (persistence.Home, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO homes (name, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?)`,
			home.Name, home.OwnerID, formatTime(home.CreatedAt), formatTime(home.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: home insert id: %w", err)
		}
		home.ID = id

		if _, err := tx.Exec(
			"INSERT INTO home_members (home_id, user_id) VALUES (?, ?)",
			home.ID, home.OwnerID,
		); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return persistence.Home{}, err
	}
	return home, nil
}

// GetHome retrieves a home by id.
func (r *HomeRepository) GetHome(ctx context.Context, id int64) (persistence.Home, error) {
	var home persistence.Home
	var createdAt, updatedAt string

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at, updated_at FROM homes WHERE id = ?`, id,
	).Scan(&home.ID, &home.Name, &home.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Home{}, persistence.ErrNotFound
		}
		return persistence.Home{}, mapError(err)
	}

	if home.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Home{}, err
	}
	if home.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Home{}, err
	}
	return home, nil
}

// ListHomesForUser returns the homes the user is a member of, ordered by name.
func (r *HomeRepository) ListHomesForUser(ctx context.Context, userID int64) ([]persistence.Home, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT h.id, h.name, h.owner_id, h.created_at, h.updated_at
		FROM homes h
		JOIN home_members m ON m.home_id = h.id
		WHERE m.user_id = ?
		ORDER BY h.name ASC, h.id ASC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var homes []persistence.Home
	for rows.Next() {
		var home persistence.Home
		var createdAt, updatedAt string
		if err := rows.Scan(&home.ID, &home.Name, &home.OwnerID, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if home.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if home.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		homes = append(homes, home)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return homes, nil
}

// AddMember grants a user membership of a home. Adding an existing member is
// a no-op.
func (r *HomeRepository) AddMember(ctx context.Context, homeID, userID int64) error {
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO home_members (home_id, user_id) VALUES (?, ?)",
		homeID, userID,
	)
	return mapError(err)
}

// RemoveMember revokes a user's membership of a home.
func (r *HomeRepository) RemoveMember(ctx context.Context, homeID, userID int64) error {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM home_members WHERE home_id = ? AND user_id = ?",
		homeID, userID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// IsMember reports whether the user belongs to the home.
func (r *HomeRepository) IsMember(ctx context.Context, homeID, userID int64) (bool, error) {
	var count int64
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM home_members WHERE home_id = ? AND user_id = ?",
		homeID, userID,
	).Scan(&count)
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// ListMembers returns the member users of a home ordered by display name.
func (r *HomeRepository) ListMembers(ctx context.Context, homeID int64) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.display_name, u.password_hash, u.is_admin, u.created_at, u.updated_at
		FROM users u
		JOIN home_members m ON m.user_id = u.id
		WHERE m.home_id = ?
		ORDER BY u.display_name ASC, u.id ASC`, homeID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

// DeleteHome removes a home. Resources still scoped to the home block the
// delete through the foreign key constraint.
func (r *HomeRepository) DeleteHome(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM reservations WHERE home_id = ?", id); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec("DELETE FROM resources WHERE home_id = ?", id); err != nil {
			return mapError(err)
		}
		result, err := tx.Exec("DELETE FROM homes WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		return requireRowAffected(result)
	})
}
