package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hilloIsTheBest/Reservation-hub/internal/application"
	"github.com/hilloIsTheBest/Reservation-hub/internal/testfixtures"
)

func TestListOccurrencesExpandsWeeklySeries(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)
	resource := h.SeedResource(t, &home.ID, "Sauna")

	anchor := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	h.SeedReservation(t, resource, owner.ID, "Weekly", anchor, anchor.Add(time.Hour), "FREQ=WEEKLY")

	views, err := h.Calendar.ListOccurrences(ctx, application.Principal{UserID: owner.ID}, application.OccurrenceQuery{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ListOccurrences: %v", err)
	}

	if len(views) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(views))
	}
	for i, wantDay := range []int{1, 8, 15} {
		want := time.Date(2024, 1, wantDay, 10, 0, 0, 0, time.UTC)
		if !views[i].Start.Equal(want) {
			t.Errorf("occurrence %d starts %v, want %v", i, views[i].Start, want)
		}
		if got := views[i].End.Sub(views[i].Start); got != time.Hour {
			t.Errorf("occurrence %d duration %v, want 1h", i, got)
		}
		if !views[i].Recurring {
			t.Errorf("occurrence %d should be marked recurring", i)
		}
	}
}

func TestListOccurrencesMalformedRuleFallsBack(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)
	resource := h.SeedResource(t, &home.ID, "Sauna")

	start := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	h.SeedReservation(t, resource, owner.ID, "Broken rule", start, start.Add(time.Hour), "GARBAGE")

	views, err := h.Calendar.ListOccurrences(ctx, application.Principal{UserID: owner.ID}, application.OccurrenceQuery{
		Start: start.Add(-24 * time.Hour),
		End:   start.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("ListOccurrences: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d occurrences, want 1 fallback", len(views))
	}
	if views[0].Recurring {
		t.Error("fallback occurrence must not be marked recurring")
	}
}

func TestListOccurrencesCanDelete(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	member := h.SeedUser(t, "member@example.com", false)
	other := h.SeedUser(t, "other@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)
	resource := h.SeedResource(t, &home.ID, "Sauna")

	start := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	h.SeedReservation(t, resource, member.ID, "Member booking", start, start.Add(time.Hour), "")

	query := application.OccurrenceQuery{Start: start.Add(-time.Hour), End: start.Add(2 * time.Hour)}

	tests := []struct {
		name      string
		principal application.Principal
		want      bool
	}{
		{"creator", application.Principal{UserID: member.ID}, true},
		{"home owner", application.Principal{UserID: owner.ID}, true},
		{"other member", application.Principal{UserID: other.ID}, false},
		{"admin", application.Principal{UserID: other.ID, IsAdmin: true}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			views, err := h.Calendar.ListOccurrences(ctx, tt.principal, query)
			if err != nil {
				t.Fatalf("ListOccurrences: %v", err)
			}
			if len(views) != 1 {
				t.Fatalf("got %d occurrences, want 1", len(views))
			}
			if views[0].CanDelete != tt.want {
				t.Errorf("CanDelete = %v, want %v", views[0].CanDelete, tt.want)
			}
		})
	}
}

func TestBuildFeedMaterializesOccurrences(t *testing.T) {
	t.Parallel()

	h := testfixtures.NewHarness(t)
	ctx := context.Background()

	owner := h.SeedUser(t, "owner@example.com", false)
	home := h.SeedHome(t, "Lakehouse", owner.ID)
	sauna := h.SeedResource(t, &home.ID, "Sauna")
	boat := h.SeedResource(t, &home.ID, "Boat")

	now := h.Clock.Now()
	h.SeedReservation(t, sauna, owner.ID, "Evening session", now.Add(24*time.Hour), now.Add(25*time.Hour), "")
	h.SeedReservation(t, boat, owner.ID, "Weekly trip", now.Add(48*time.Hour), now.Add(50*time.Hour), "FREQ=WEEKLY;COUNT=4")

	feed, err := h.Calendar.BuildFeed(ctx, application.FeedScope{})
	if err != nil {
		t.Fatalf("BuildFeed: %v", err)
	}

	if !strings.Contains(feed, "SUMMARY:Sauna: Evening session") {
		t.Error("feed missing one-off summary")
	}
	if got := strings.Count(feed, "SUMMARY:Boat: Weekly trip"); got != 4 {
		t.Errorf("feed has %d weekly occurrences, want 4", got)
	}

	// Scoping to one resource drops the other.
	scoped, err := h.Calendar.BuildFeed(ctx, application.FeedScope{ResourceID: &sauna.ID})
	if err != nil {
		t.Fatalf("BuildFeed scoped: %v", err)
	}
	if strings.Contains(scoped, "Boat") {
		t.Error("scoped feed should not contain the other resource")
	}
}
