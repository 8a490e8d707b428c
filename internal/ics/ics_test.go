package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []FeedEvent{
		{
			TemplateID:   7,
			ResourceName: "Sauna",
			Title:        "Evening session",
			Description:  "Bring towels",
			Start:        time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
			End:          time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC),
		},
		{
			TemplateID:   9,
			ResourceName: "Boat",
			Title:        "Weekly trip",
			Start:        time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
			End:          time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC),
			Recurring:    true,
		},
	}

	feed := Export(events, stamp)

	if !strings.Contains(feed, "PRODID:-//Reservation Hub//EN") {
		t.Error("feed missing product identifier")
	}
	if !strings.Contains(feed, "UID:reservation-7@reservation-hub") {
		t.Error("feed missing one-off reservation UID")
	}
	if !strings.Contains(feed, "UID:occurrence-9-20250603T090000Z@reservation-hub") {
		t.Error("feed missing occurrence UID")
	}
	if !strings.Contains(feed, "SUMMARY:Sauna: Evening session") {
		t.Error("feed missing resource-prefixed summary")
	}

	parsed, err := Parse([]byte(feed))
	if err != nil {
		t.Fatalf("Parse exported feed: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed %d events, want 2", len(parsed))
	}
	if parsed[0].Summary != "Sauna: Evening session" {
		t.Errorf("Summary = %q", parsed[0].Summary)
	}
	if !parsed[0].Start.Equal(events[0].Start) || !parsed[0].End.Equal(events[0].End) {
		t.Errorf("times = %v..%v, want %v..%v", parsed[0].Start, parsed[0].End, events[0].Start, events[0].End)
	}
}

func TestParseSkipsEventsWithoutTimes(t *testing.T) {
	t.Parallel()

	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//EN",
		"BEGIN:VEVENT",
		"UID:no-times@test",
		"SUMMARY:Broken",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ok@test",
		"SUMMARY:Fine",
		"DTSTART:20250601T100000Z",
		"DTEND:20250601T110000Z",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	parsed, err := Parse([]byte(feed))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d events, want 1", len(parsed))
	}
	if parsed[0].UID != "ok@test" {
		t.Errorf("UID = %q, want ok@test", parsed[0].UID)
	}
}

func TestParseEmptyBody(t *testing.T) {
	t.Parallel()

	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestClientFetch(t *testing.T) {
	t.Parallel()

	feed := Export([]FeedEvent{{
		TemplateID:   1,
		ResourceName: "Sauna",
		Title:        "Session",
		Start:        time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC),
	}}, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resources":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"name":"Sauna","color":"#1e90ff"}]`))
		case "/ics/all.ics":
			w.Header().Set("Content-Type", "text/calendar")
			_, _ = w.Write([]byte(feed))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	ctx := context.Background()

	resources, err := client.FetchResources(ctx, server.URL)
	if err != nil {
		t.Fatalf("FetchResources: %v", err)
	}
	if len(resources) != 1 || resources[0].Name != "Sauna" || resources[0].Color != "#1e90ff" {
		t.Fatalf("FetchResources = %+v", resources)
	}

	events, err := client.FetchCalendar(ctx, server.URL)
	if err != nil {
		t.Fatalf("FetchCalendar: %v", err)
	}
	if len(events) != 1 || events[0].Summary != "Sauna: Session" {
		t.Fatalf("FetchCalendar = %+v", events)
	}

	if _, err := client.FetchResources(ctx, server.URL+"/missing"); err == nil {
		t.Fatal("expected error for non-OK status")
	}
}
