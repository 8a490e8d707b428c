package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

// RegisterInput captures caller provided account fields.
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

// AuthenticateParams wraps the credentials presented at login.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult carries the issued session token and its holder.
type AuthenticateResult struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// UserUpdateInput captures the mutable account fields.
type UserUpdateInput struct {
	DisplayName string
	Password    string
	IsAdmin     *bool
}

// HomeInput captures caller provided home fields.
type HomeInput struct {
	Name string
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	HomeID *int64
	Name   string
	Color  string
}

// BookingInput captures caller provided reservation fields. Start and End
// are naive UTC instants produced by the request normalizer.
type BookingInput struct {
	ResourceID     int64
	Title          string
	Description    string
	Start          time.Time
	End            time.Time
	RecurrenceRule string
}

// OccurrenceView is one expanded calendar entry returned to clients.
type OccurrenceView struct {
	TemplateID   int64
	ResourceID   int64
	ResourceName string
	Color        string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	Recurring    bool
	CanDelete    bool
}

// OccurrenceQuery bounds a calendar listing to a half-open window, optionally
// narrowed to one resource or one home.
type OccurrenceQuery struct {
	Start      time.Time
	End        time.Time
	ResourceID *int64
	HomeID     *int64
}

// FeedScope narrows an exported calendar feed. The zero value exports
// everything.
type FeedScope struct {
	ResourceID *int64
	HomeID     *int64
}

// ReconcileParams identifies the home to reconcile and the peer to pull from.
type ReconcileParams struct {
	HomeID    int64
	ServerURL string
}

// ReconcileReport summarizes the outcome of a reconciliation run.
type ReconcileReport struct {
	ResourcesCreated int
	ResourcesUpdated int
	EventsImported   int
}
