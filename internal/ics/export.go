package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

const (
	prodID    = "-//Reservation Hub//EN"
	uidDomain = "reservation-hub"
)

// uidLayout is the compact UTC form used to disambiguate expanded
// occurrences of the same template.
const uidLayout = "20060102T150405Z"

// FeedEvent is one calendar entry in an exported feed. Recurring
// templates are materialized into individual events before export.
type FeedEvent struct {
	TemplateID   int64
	ResourceName string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	Recurring    bool
}

// UID returns the stable identifier for the event. One-off reservations
// map to one UID per template; expanded occurrences append their start
// instant so each shows up as its own event.
func (e FeedEvent) UID() string {
	if e.Recurring {
		return fmt.Sprintf("occurrence-%d-%s@%s", e.TemplateID, e.Start.UTC().Format(uidLayout), uidDomain)
	}
	return fmt.Sprintf("reservation-%d@%s", e.TemplateID, uidDomain)
}

// Export serializes events into an iCalendar feed. The stamp is used as
// DTSTAMP for every event so feeds are reproducible in tests.
func Export(events []FeedEvent, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, event := range events {
		ve := cal.AddEvent(event.UID())
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(event.Start.UTC())
		ve.SetEndAt(event.End.UTC())
		ve.SetSummary(fmt.Sprintf("%s: %s", event.ResourceName, event.Title))
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
	}
	return cal.Serialize()
}
