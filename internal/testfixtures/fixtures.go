package testfixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

var tokenCounter uint64

// SequentialTokens returns a deterministic token generator for tests.
func SequentialTokens() func() string {
	return func() string {
		return fmt.Sprintf("token-%04d", atomic.AddUint64(&tokenCounter, 1))
	}
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Harness wires the application services over an in-memory store with a
// controllable clock, for service-level tests.
type Harness struct {
	Store     *MemoryStore
	Clock     *Clock
	Locks     *application.LockRegistry
	Auth      *application.AuthService
	Users     *application.UserService
	Homes     *application.HomeService
	Resources *application.ResourceService
	Bookings  *application.BookingService
	Calendar  *application.CalendarService
}

// NewHarness builds a Harness with a one-day session TTL and a one-year
// export horizon.
func NewHarness(tb testing.TB) *Harness {
	tb.Helper()

	store := NewMemoryStore()
	clock := NewClock(time.Time{})
	locks := application.NewLockRegistry()
	logger := QuietLogger()

	return &Harness{
		Store:     store,
		Clock:     clock,
		Locks:     locks,
		Auth:      application.NewAuthService(store, store, SequentialTokens(), clock.NowFunc(), 24*time.Hour, logger),
		Users:     application.NewUserService(store, clock.NowFunc(), logger),
		Homes:     application.NewHomeService(store, store, clock.NowFunc(), logger),
		Resources: application.NewResourceService(store, store, clock.NowFunc(), logger),
		Bookings:  application.NewBookingService(store, store, store, locks, clock.NowFunc(), logger),
		Calendar:  application.NewCalendarService(store, store, store, 365*24*time.Hour, clock.NowFunc(), logger),
	}
}

// SeedUser inserts a user directly into the store.
func (h *Harness) SeedUser(tb testing.TB, email string, isAdmin bool) persistence.User {
	tb.Helper()

	user, err := h.Store.CreateUser(context.Background(), persistence.User{
		Email:        email,
		DisplayName:  email,
		PasswordHash: "fixture-hash",
		IsAdmin:      isAdmin,
		CreatedAt:    h.Clock.Now(),
		UpdatedAt:    h.Clock.Now(),
	})
	if err != nil {
		tb.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

// SeedHome inserts a home owned by ownerID directly into the store.
func (h *Harness) SeedHome(tb testing.TB, name string, ownerID int64) persistence.Home {
	tb.Helper()

	home, err := h.Store.CreateHome(context.Background(), persistence.Home{
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: h.Clock.Now(),
		UpdatedAt: h.Clock.Now(),
	})
	if err != nil {
		tb.Fatalf("seed home %s: %v", name, err)
	}
	return home
}

// SeedResource inserts a resource directly into the store.
func (h *Harness) SeedResource(tb testing.TB, homeID *int64, name string) persistence.Resource {
	tb.Helper()

	resource, err := h.Store.CreateResource(context.Background(), persistence.Resource{
		HomeID:    homeID,
		Name:      name,
		Color:     "#3788d8",
		CreatedAt: h.Clock.Now(),
		UpdatedAt: h.Clock.Now(),
	})
	if err != nil {
		tb.Fatalf("seed resource %s: %v", name, err)
	}
	return resource
}

// SeedReservation inserts a reservation template directly into the store.
func (h *Harness) SeedReservation(tb testing.TB, resource persistence.Resource, userID int64, title string, start, end time.Time, rule string) persistence.Reservation {
	tb.Helper()

	reservation, err := h.Store.CreateReservation(context.Background(), persistence.Reservation{
		ResourceID:     resource.ID,
		UserID:         userID,
		HomeID:         resource.HomeID,
		Title:          title,
		StartUTC:       start,
		EndUTC:         end,
		RecurrenceRule: rule,
		CreatedAt:      h.Clock.Now(),
		UpdatedAt:      h.Clock.Now(),
	})
	if err != nil {
		tb.Fatalf("seed reservation %s: %v", title, err)
	}
	return reservation
}
