package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/testfixtures"
)

func TestCreateResourceScopes(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	outsider := h.SeedUser(t, "outsider@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)

	resource, err := h.Resources.CreateResource(ctx, application.Principal{UserID: owner.ID}, application.ResourceInput{
		HomeID: &home.ID,
		Name:   "Sauna",
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	if resource.Color != "#3788d8" {
		t.Errorf("Color = %q, want the default", resource.Color)
	}

	if _, err := h.Resources.CreateResource(ctx, application.Principal{UserID: outsider.ID}, application.ResourceInput{
		HomeID: &home.ID,
		Name:   "Grill",
	}); !errors.Is(err, application.ErrUnauthorized) {
		t.Errorf("outsider create: got %v, want ErrUnauthorized", err)
	}

	// Global resources are admin territory.
	if _, err := h.Resources.CreateResource(ctx, application.Principal{UserID: owner.ID}, application.ResourceInput{
		Name: "Shared van",
	}); !errors.Is(err, application.ErrUnauthorized) {
		t.Errorf("non-admin global create: got %v, want ErrUnauthorized", err)
	}
	if _, err := h.Resources.CreateResource(ctx, application.Principal{UserID: owner.ID, IsAdmin: true}, application.ResourceInput{
		Name: "Shared van",
	}); err != nil {
		t.Errorf("admin global create: %v", err)
	}

	// Names are unique per scope, so the same name is fine in another home.
	other := h.SeedHome(t, "Cabin", owner.ID)
	if _, err := h.Resources.CreateResource(ctx, application.Principal{UserID: owner.ID}, application.ResourceInput{
		HomeID: &other.ID,
		Name:   "Sauna",
	}); err != nil {
		t.Errorf("same name in another home: %v", err)
	}
	if _, err := h.Resources.CreateResource(ctx, application.Principal{UserID: owner.ID}, application.ResourceInput{
		HomeID: &home.ID,
		Name:   "Sauna",
	}); !errors.Is(err, application.ErrAlreadyExists) {
		t.Errorf("duplicate in same home: got %v, want ErrAlreadyExists", err)
	}
}

func TestResourceColorValidation(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)
	principal := application.Principal{UserID: owner.ID}

	var vErr *application.ValidationError
	if _, err := h.Resources.CreateResource(ctx, principal, application.ResourceInput{
		HomeID: &home.ID,
		Name:   "Sauna",
		Color:  "red",
	}); !errors.As(err, &vErr) {
		t.Fatalf("invalid color: got %v, want ValidationError", err)
	}
	if vErr.FieldErrors["color"] == "" {
		t.Errorf("FieldErrors = %v, want an entry for color", vErr.FieldErrors)
	}

	resource, err := h.Resources.CreateResource(ctx, principal, application.ResourceInput{
		HomeID: &home.ID,
		Name:   "Sauna",
		Color:  "#28A745",
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	if resource.Color != "#28a745" {
		t.Errorf("Color = %q, want lowercased", resource.Color)
	}
}

func TestDeleteResourceRefusedWhileBooked(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)
	resource := h.SeedResource(t, &home.ID, "Sauna")
	principal := application.Principal{UserID: owner.ID}

	start := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	reservation := h.SeedReservation(t, resource, owner.ID, "Blocking", start, start.Add(time.Hour), "")

	if err := h.Resources.DeleteResource(ctx, principal, resource.ID); !errors.Is(err, application.ErrResourceInUse) {
		t.Fatalf("delete while booked: got %v, want ErrResourceInUse", err)
	}

	if err := h.Bookings.DeleteBooking(ctx, principal, reservation.ID); err != nil {
		t.Fatalf("DeleteBooking: %v", err)
	}
	if err := h.Resources.DeleteResource(ctx, principal, resource.ID); err != nil {
		t.Fatalf("delete after freeing: %v", err)
	}
}
