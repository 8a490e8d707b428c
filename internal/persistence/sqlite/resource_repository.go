package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository over SQLite.
type ResourceRepository struct {
	pool *Pool
}

// NewResourceRepository creates a SQLite backed resource repository.
func NewResourceRepository(pool *Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// CreateResource inserts a resource after checking name uniqueness within its
// scope. SQLite treats NULL home ids as distinct in unique indexes, so the
// scope check runs in application SQL instead.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error) {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := nameTakenInScope(tx, resource.HomeID, resource.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrDuplicate
		}

		result, err := tx.Exec(`
			INSERT INTO resources (home_id, name, color, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			nullableID(resource.HomeID),
			resource.Name,
			resource.Color,
			formatTime(resource.CreatedAt),
			formatTime(resource.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: resource insert id: %w", err)
		}
		resource.ID = id
		return nil
	})
	if err != nil {
		return persistence.Resource{}, err
	}
	return resource, nil
}

// GetResource retrieves a resource by id.
func (r *ResourceRepository) GetResource(ctx context.Context, id int64) (persistence.Resource, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, home_id, name, color, created_at, updated_at
		FROM resources WHERE id = ?`, id)
	return scanResource(row)
}

// GetResourceByName retrieves a resource by exact, case-sensitive name within
// a scope.
func (r *ResourceRepository) GetResourceByName(ctx context.Context, scope persistence.ResourceScope, name string) (persistence.Resource, error) {
	query := `
		SELECT id, home_id, name, color, created_at, updated_at
		FROM resources WHERE name = ? AND home_id IS NULL`
	args := []any{name}
	if scope.HomeID != nil {
		query = `
			SELECT id, home_id, name, color, created_at, updated_at
			FROM resources WHERE name = ? AND home_id = ?`
		args = append(args, *scope.HomeID)
	}
	return scanResource(r.pool.db.QueryRowContext(ctx, query, args...))
}

// ListResources returns the resources in a scope ordered by name.
func (r *ResourceRepository) ListResources(ctx context.Context, scope persistence.ResourceScope) ([]persistence.Resource, error) {
	query := `
		SELECT id, home_id, name, color, created_at, updated_at
		FROM resources WHERE home_id IS NULL ORDER BY name ASC, id ASC`
	args := []any{}
	if scope.HomeID != nil {
		query = `
			SELECT id, home_id, name, color, created_at, updated_at
			FROM resources WHERE home_id = ? ORDER BY name ASC, id ASC`
		args = append(args, *scope.HomeID)
	}
	return r.listResources(ctx, query, args...)
}

// ListAllResources returns every resource regardless of scope.
func (r *ResourceRepository) ListAllResources(ctx context.Context) ([]persistence.Resource, error) {
	return r.listResources(ctx, `
		SELECT id, home_id, name, color, created_at, updated_at
		FROM resources ORDER BY name ASC, id ASC`)
}

// UpdateResource updates a resource's name and color.
func (r *ResourceRepository) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := nameTakenInScope(tx, resource.HomeID, resource.Name, resource.ID)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrDuplicate
		}

		result, err := tx.Exec(`
			UPDATE resources SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
			resource.Name, resource.Color, formatTime(resource.UpdatedAt), resource.ID,
		)
		if err != nil {
			return mapError(err)
		}
		return requireRowAffected(result)
	})
}

// DeleteResource removes a resource, refusing while reservations reference it.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int64
		if err := tx.QueryRow(
			"SELECT COUNT(*) FROM reservations WHERE resource_id = ?", id,
		).Scan(&count); err != nil {
			return mapError(err)
		}
		if count > 0 {
			return persistence.ErrForeignKeyViolation
		}

		result, err := tx.Exec("DELETE FROM resources WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		return requireRowAffected(result)
	})
}

func (r *ResourceRepository) listResources(ctx context.Context, query string, args ...any) ([]persistence.Resource, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var resources []persistence.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

func nameTakenInScope(tx *sql.Tx, homeID *int64, name string, excludeID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM resources WHERE name = ? AND home_id IS NULL AND id <> ?"
	args := []any{name, excludeID}
	if homeID != nil {
		query = "SELECT COUNT(*) FROM resources WHERE name = ? AND home_id = ? AND id <> ?"
		args = []any{name, *homeID, excludeID}
	}

	var count int64
	if err := tx.QueryRow(query, args...).Scan(&count); err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

func scanResource(row rowScanner) (persistence.Resource, error) {
	var resource persistence.Resource
	var homeID sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&resource.ID, &homeID, &resource.Name, &resource.Color, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Resource{}, persistence.ErrNotFound
		}
		return persistence.Resource{}, mapError(err)
	}

	resource.HomeID = idPointer(homeID)
	if resource.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Resource{}, err
	}
	if resource.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Resource{}, err
	}
	return resource, nil
}
