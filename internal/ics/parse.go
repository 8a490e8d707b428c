package ics

import (
	"bytes"
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParsedEvent is the normalized representation of a VEVENT taken from a
// remote feed. Only the fields the importer needs are kept.
type ParsedEvent struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
}

// Parse reads an iCalendar payload into a list of ParsedEvent. Events
// without a usable DTSTART or DTEND are skipped rather than failing the
// whole feed.
func Parse(body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty calendar body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ve.GetEndAt()
		if err != nil {
			continue
		}

		var parsed ParsedEvent
		parsed.Start = start.UTC()
		parsed.End = end.UTC()
		if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
			parsed.UID = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			parsed.Summary = p.Value
		}
		events = append(events, parsed)
	}
	return events, nil
}
