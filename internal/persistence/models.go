package persistence

import "time"

// User represents a member account.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Home is a tenant scope owning resources, members and reservations.
type Home struct {
	ID        int64
	Name      string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resource is a bookable asset scoped to a home, or to the global scope when
// HomeID is nil (legacy non-home resources).
type Resource struct {
	ID        int64
	HomeID    *int64
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation is a reservation template: one occurrence, or the first
// occurrence of a recurring series when RecurrenceRule is non-empty.
// StartUTC and EndUTC are naive UTC instants.
type Reservation struct {
	ID             int64
	ResourceID     int64
	UserID         int64
	HomeID         *int64
	Title          string
	Description    string
	StartUTC       time.Time
	EndUTC         time.Time
	RecurrenceRule string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Session is an authentication session persisted for a user.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
