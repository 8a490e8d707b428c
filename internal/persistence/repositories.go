package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id int64) error
}

// HomeRepository exposes CRUD and membership operations for homes.
type HomeRepository interface {
	CreateHome(ctx context.Context, home Home) (Home, error)
	GetHome(ctx context.Context, id int64) (Home, error)
	ListHomesForUser(ctx context.Context, userID int64) ([]Home, error)
	AddMember(ctx context.Context, homeID, userID int64) error
	RemoveMember(ctx context.Context, homeID, userID int64) error
	IsMember(ctx context.Context, homeID, userID int64) (bool, error)
	ListMembers(ctx context.Context, homeID int64) ([]User, error)
	DeleteHome(ctx context.Context, id int64) error
}

// ResourceScope narrows resource queries to a home or to the global scope.
// A nil HomeID means the global scope.
type ResourceScope struct {
	HomeID *int64
}

// ResourceRepository exposes CRUD operations for bookable resources.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) (Resource, error)
	GetResource(ctx context.Context, id int64) (Resource, error)
	GetResourceByName(ctx context.Context, scope ResourceScope, name string) (Resource, error)
	ListResources(ctx context.Context, scope ResourceScope) ([]Resource, error)
	ListAllResources(ctx context.Context) ([]Resource, error)
	UpdateResource(ctx context.Context, resource Resource) error
	DeleteResource(ctx context.Context, id int64) error
}

// ReservationFilter narrows reservation queries. When Start and End are both
// set, one-off templates are restricted to those overlapping the half-open
// window; recurring templates are always included so callers can expand them.
type ReservationFilter struct {
	ResourceID *int64
	HomeID     *int64
	Start      *time.Time
	End        *time.Time
}

// ReservationRepository stores reservation templates.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id int64) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	ListReservationsForResource(ctx context.Context, resourceID int64) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
	DeleteReservationsForHome(ctx context.Context, homeID int64) (int64, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
