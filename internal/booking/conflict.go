package booking

import "time"

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. An interval ending exactly when another begins
// does not overlap. This predicate is the single source of truth for
// conflict decisions; do not reimplement it elsewhere.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Template is the slice of a reservation the conflict checker needs.
type Template struct {
	ID             int64
	ResourceID     int64
	Start          time.Time
	End            time.Time
	RecurrenceRule string
}

// Policy names the conflict acceptance rules so they can be tuned without
// touching call sites.
//
// ExemptRecurring preserves the shipped behavior: existing templates that
// carry a recurrence rule never block a new booking, only literal one-off
// bookings do. Occurrences generated by a recurring series are not checked.
type Policy struct {
	ExemptRecurring bool
}

// DefaultPolicy is the acceptance policy the service ships with.
var DefaultPolicy = Policy{ExemptRecurring: true}

// Conflict identifies the existing template a candidate collides with.
type Conflict struct {
	WithTemplateID int64
	Start          time.Time
	End            time.Time
}

// DetectConflict tests a candidate's nominal interval against the nominal
// intervals of the existing templates for the same resource. The first hit
// wins; ordering follows the input slice.
func DetectConflict(existing []Template, candidate Template, policy Policy) (Conflict, bool) {
	for _, tpl := range existing {
		if tpl.ID == candidate.ID {
			continue
		}
		if policy.ExemptRecurring && tpl.RecurrenceRule != "" {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, tpl.Start, tpl.End) {
			return Conflict{WithTemplateID: tpl.ID, Start: tpl.Start, End: tpl.End}, true
		}
	}
	return Conflict{}, false
}
