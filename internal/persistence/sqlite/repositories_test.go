package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

func openTestPool(t *testing.T) *Pool {
	t.Helper()

	pool, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("close test database: %v", err)
		}
	})
	return pool
}

func createTestUser(t *testing.T, pool *Pool, email string) persistence.User {
	t.Helper()

	user, err := NewUserRepository(pool).CreateUser(context.Background(), persistence.User{
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func createTestHome(t *testing.T, pool *Pool, name string, ownerID int64) persistence.Home {
	t.Helper()

	home, err := NewHomeRepository(pool).CreateHome(context.Background(), persistence.Home{
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("create home %s: %v", name, err)
	}
	return home
}

func TestUserRepositoryCRUD(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, persistence.User{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "hash",
		IsAdmin:      true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	fetched, err := repo.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if fetched.ID != created.ID || !fetched.IsAdmin {
		t.Fatalf("unexpected user %+v", fetched)
	}

	if _, err := repo.CreateUser(ctx, persistence.User{
		Email:        "alice@example.com",
		DisplayName:  "Duplicate",
		PasswordHash: "hash",
	}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicate", err)
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 1 {
		t.Fatalf("CountUsers = %d, want 1", count)
	}

	fetched.DisplayName = "Alice Updated"
	if err := repo.UpdateUser(ctx, fetched); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	if err := repo.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetUser(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetUser after delete: got %v, want ErrNotFound", err)
	}
}

func TestHomeRepositoryMembership(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	repo := NewHomeRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, pool, "owner@example.com")
	guest := createTestUser(t, pool, "guest@example.com")
	home := createTestHome(t, pool, "Lakehouse", owner.ID)

	// Creating a home enrolls the owner as a member.
	isMember, err := repo.IsMember(ctx, home.ID, owner.ID)
	if err != nil {
		t.Fatalf("IsMember owner: %v", err)
	}
	if !isMember {
		t.Fatal("owner should be a member of the new home")
	}

	if err := repo.AddMember(ctx, home.ID, guest.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	// Adding twice is a no-op.
	if err := repo.AddMember(ctx, home.ID, guest.ID); err != nil {
		t.Fatalf("AddMember repeat: %v", err)
	}

	members, err := repo.ListMembers(ctx, home.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("ListMembers = %d members, want 2", len(members))
	}

	homes, err := repo.ListHomesForUser(ctx, guest.ID)
	if err != nil {
		t.Fatalf("ListHomesForUser: %v", err)
	}
	if len(homes) != 1 || homes[0].ID != home.ID {
		t.Fatalf("ListHomesForUser = %+v, want [%d]", homes, home.ID)
	}

	if err := repo.RemoveMember(ctx, home.ID, guest.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	isMember, err = repo.IsMember(ctx, home.ID, guest.ID)
	if err != nil {
		t.Fatalf("IsMember after removal: %v", err)
	}
	if isMember {
		t.Fatal("guest should no longer be a member")
	}
}

func TestResourceRepositoryScopedNames(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	repo := NewResourceRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, pool, "owner@example.com")
	homeA := createTestHome(t, pool, "Home A", owner.ID)
	homeB := createTestHome(t, pool, "Home B", owner.ID)

	sauna, err := repo.CreateResource(ctx, persistence.Resource{
		HomeID: &homeA.ID,
		Name:   "Sauna",
		Color:  "#1e90ff",
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	// Same name in another home is fine.
	if _, err := repo.CreateResource(ctx, persistence.Resource{
		HomeID: &homeB.ID,
		Name:   "Sauna",
		Color:  "#28a745",
	}); err != nil {
		t.Fatalf("CreateResource in second home: %v", err)
	}

	// Same name in the same home is rejected.
	if _, err := repo.CreateResource(ctx, persistence.Resource{
		HomeID: &homeA.ID,
		Name:   "Sauna",
		Color:  "#ffc107",
	}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("duplicate scoped name: got %v, want ErrDuplicate", err)
	}

	found, err := repo.GetResourceByName(ctx, persistence.ResourceScope{HomeID: &homeA.ID}, "Sauna")
	if err != nil {
		t.Fatalf("GetResourceByName: %v", err)
	}
	if found.ID != sauna.ID {
		t.Fatalf("GetResourceByName = %d, want %d", found.ID, sauna.ID)
	}

	scoped, err := repo.ListResources(ctx, persistence.ResourceScope{HomeID: &homeA.ID})
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("ListResources = %d resources, want 1", len(scoped))
	}

	all, err := repo.ListAllResources(ctx)
	if err != nil {
		t.Fatalf("ListAllResources: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAllResources = %d resources, want 2", len(all))
	}
}

func TestResourceRepositoryDeleteWithReservations(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	resources := NewResourceRepository(pool)
	reservations := NewReservationRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, pool, "owner@example.com")
	home := createTestHome(t, pool, "Lakehouse", owner.ID)

	resource, err := resources.CreateResource(ctx, persistence.Resource{
		HomeID: &home.ID,
		Name:   "Boat",
		Color:  "#3788d8",
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	reservation, err := reservations.CreateReservation(ctx, persistence.Reservation{
		ResourceID: resource.ID,
		UserID:     owner.ID,
		HomeID:     &home.ID,
		Title:      "Fishing",
		StartUTC:   start,
		EndUTC:     start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if err := resources.DeleteResource(ctx, resource.ID); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("delete booked resource: got %v, want ErrForeignKeyViolation", err)
	}

	if err := reservations.DeleteReservation(ctx, reservation.ID); err != nil {
		t.Fatalf("DeleteReservation: %v", err)
	}
	if err := resources.DeleteResource(ctx, resource.ID); err != nil {
		t.Fatalf("delete freed resource: %v", err)
	}
}

func TestReservationRepositoryWindowFilter(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	resources := NewResourceRepository(pool)
	reservations := NewReservationRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, pool, "owner@example.com")
	home := createTestHome(t, pool, "Lakehouse", owner.ID)

	resource, err := resources.CreateResource(ctx, persistence.Resource{
		HomeID: &home.ID,
		Name:   "Sauna",
		Color:  "#1e90ff",
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	day := func(d, hour int) time.Time {
		return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
	}
	create := func(title string, start, end time.Time, rule string) persistence.Reservation {
		t.Helper()
		created, err := reservations.CreateReservation(ctx, persistence.Reservation{
			ResourceID:     resource.ID,
			UserID:         owner.ID,
			HomeID:         &home.ID,
			Title:          title,
			StartUTC:       start,
			EndUTC:         end,
			RecurrenceRule: rule,
		})
		if err != nil {
			t.Fatalf("create reservation %s: %v", title, err)
		}
		return created
	}

	create("inside", day(10, 10), day(10, 12), "")
	create("before", day(1, 10), day(1, 12), "")
	// Touches the window start, half-open semantics exclude it.
	create("touching", day(8, 10), day(9, 0), "")
	weekly := create("weekly", day(1, 18), day(1, 19), "FREQ=WEEKLY")

	windowStart := day(9, 0)
	windowEnd := day(16, 0)
	listed, err := reservations.ListReservations(ctx, persistence.ReservationFilter{
		ResourceID: &resource.ID,
		Start:      &windowStart,
		End:        &windowEnd,
	})
	if err != nil {
		t.Fatalf("ListReservations: %v", err)
	}

	titles := make([]string, 0, len(listed))
	for _, r := range listed {
		titles = append(titles, r.Title)
	}
	if len(listed) != 2 || titles[0] != "weekly" || titles[1] != "inside" {
		t.Fatalf("ListReservations = %v, want [weekly inside]", titles)
	}

	forResource, err := reservations.ListReservationsForResource(ctx, resource.ID)
	if err != nil {
		t.Fatalf("ListReservationsForResource: %v", err)
	}
	if len(forResource) != 4 {
		t.Fatalf("ListReservationsForResource = %d templates, want 4", len(forResource))
	}

	if weekly.RecurrenceRule != "FREQ=WEEKLY" {
		t.Fatalf("stored rule %q, want FREQ=WEEKLY", weekly.RecurrenceRule)
	}
}

func TestReservationRepositoryKeepsCallerTimestamps(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	reservations := NewReservationRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, pool, "owner@example.com")
	home := createTestHome(t, pool, "Lakehouse", owner.ID)
	resource, err := NewResourceRepository(pool).CreateResource(ctx, persistence.Resource{
		HomeID: &home.ID,
		Name:   "Sauna",
		Color:  "#1e90ff",
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	// The service layer stamps rows from its injected clock, so the
	// repository must store what it is given.
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created, err := reservations.CreateReservation(ctx, persistence.Reservation{
		ResourceID: resource.ID,
		UserID:     owner.ID,
		HomeID:     &home.ID,
		Title:      "Stamped",
		StartUTC:   createdAt.Add(time.Hour),
		EndUTC:     createdAt.Add(2 * time.Hour),
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	stored, err := reservations.GetReservation(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReservation: %v", err)
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, createdAt)
	}
	if !stored.UpdatedAt.Equal(createdAt) {
		t.Errorf("UpdatedAt = %v, want %v", stored.UpdatedAt, createdAt)
	}
}

func TestReservationRepositoryDeleteForHome(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	resources := NewResourceRepository(pool)
	reservations := NewReservationRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, pool, "owner@example.com")
	homeA := createTestHome(t, pool, "Home A", owner.ID)
	homeB := createTestHome(t, pool, "Home B", owner.ID)

	resourceA, err := resources.CreateResource(ctx, persistence.Resource{HomeID: &homeA.ID, Name: "Sauna", Color: "#1e90ff"})
	if err != nil {
		t.Fatalf("CreateResource A: %v", err)
	}
	resourceB, err := resources.CreateResource(ctx, persistence.Resource{HomeID: &homeB.ID, Name: "Sauna", Color: "#28a745"})
	if err != nil {
		t.Fatalf("CreateResource B: %v", err)
	}

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := reservations.CreateReservation(ctx, persistence.Reservation{
			ResourceID: resourceA.ID,
			UserID:     owner.ID,
			HomeID:     &homeA.ID,
			Title:      "A",
			StartUTC:   start.Add(time.Duration(i) * 24 * time.Hour),
			EndUTC:     start.Add(time.Duration(i)*24*time.Hour + time.Hour),
		}); err != nil {
			t.Fatalf("create reservation in home A: %v", err)
		}
	}
	if _, err := reservations.CreateReservation(ctx, persistence.Reservation{
		ResourceID: resourceB.ID,
		UserID:     owner.ID,
		HomeID:     &homeB.ID,
		Title:      "B",
		StartUTC:   start,
		EndUTC:     start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("create reservation in home B: %v", err)
	}

	deleted, err := reservations.DeleteReservationsForHome(ctx, homeA.ID)
	if err != nil {
		t.Fatalf("DeleteReservationsForHome: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted %d reservations, want 3", deleted)
	}

	remaining, err := reservations.ListReservations(ctx, persistence.ReservationFilter{HomeID: &homeB.ID})
	if err != nil {
		t.Fatalf("ListReservations home B: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("home B kept %d reservations, want 1", len(remaining))
	}
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t)
	repo := NewSessionRepository(pool)
	ctx := context.Background()

	user := createTestUser(t, pool, "alice@example.com")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.CreateSession(ctx, persistence.Session{
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	fetched, err := repo.GetSessionByToken(ctx, "token-1")
	if err != nil {
		t.Fatalf("GetSessionByToken: %v", err)
	}
	if fetched.UserID != user.ID || fetched.RevokedAt != nil {
		t.Fatalf("unexpected session %+v", fetched)
	}

	if err := repo.RevokeSession(ctx, "token-1", now); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	fetched, err = repo.GetSessionByToken(ctx, "token-1")
	if err != nil {
		t.Fatalf("GetSessionByToken after revoke: %v", err)
	}
	if fetched.RevokedAt == nil || !fetched.RevokedAt.Equal(now) {
		t.Fatalf("RevokedAt = %v, want %v", fetched.RevokedAt, now)
	}

	// Revoking twice has nothing left to update.
	if err := repo.RevokeSession(ctx, "token-1", now); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("second revoke: got %v, want ErrNotFound", err)
	}

	if _, err := repo.CreateSession(ctx, persistence.Session{
		UserID:    user.ID,
		Token:     "token-2",
		ExpiresAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("CreateSession expired: %v", err)
	}
	if err := repo.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if _, err := repo.GetSessionByToken(ctx, "token-2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expired session lookup: got %v, want ErrNotFound", err)
	}
}
