package booking

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint", at(9), at(10), at(11), at(12), false},
		{"touching endpoints never overlap", at(9), at(10), at(10), at(11), false},
		{"partial overlap", at(9), at(11), at(10), at(12), true},
		{"containment", at(9), at(12), at(10), at(11), true},
		{"identical", at(9), at(10), at(9), at(10), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Symmetry holds for every pair.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectConflict_OneOffBlocksOverlap(t *testing.T) {
	t.Parallel()

	existing := []Template{
		{ID: 1, ResourceID: 7, Start: at(9), End: at(11)},
		{ID: 2, ResourceID: 7, Start: at(14), End: at(15)},
	}
	candidate := Template{ResourceID: 7, Start: at(10), End: at(12)}

	conflict, found := DetectConflict(existing, candidate, DefaultPolicy)
	if !found {
		t.Fatal("expected conflict")
	}
	if conflict.WithTemplateID != 1 {
		t.Errorf("conflict with template %d, want 1", conflict.WithTemplateID)
	}
}

func TestDetectConflict_TouchingEndpointsAccepted(t *testing.T) {
	t.Parallel()

	existing := []Template{{ID: 1, Start: at(9), End: at(10)}}
	candidate := Template{Start: at(10), End: at(11)}

	if _, found := DetectConflict(existing, candidate, DefaultPolicy); found {
		t.Error("touching endpoints must not conflict")
	}
}

func TestDetectConflict_RecurringTemplatesNeverBlock(t *testing.T) {
	t.Parallel()

	// A recurring series overlapping the candidate's window is skipped
	// entirely under the shipped policy. This asserts acceptance, not
	// rejection: the asymmetry is intentional, observable behavior.
	existing := []Template{
		{ID: 1, Start: at(9), End: at(11), RecurrenceRule: "FREQ=WEEKLY"},
	}
	candidate := Template{Start: at(9), End: at(10)}

	if _, found := DetectConflict(existing, candidate, DefaultPolicy); found {
		t.Error("recurring template blocked a new booking under the exempt policy")
	}

	// With the exemption turned off the same series conflicts.
	if _, found := DetectConflict(existing, candidate, Policy{ExemptRecurring: false}); !found {
		t.Error("expected conflict when the exemption is disabled")
	}
}
