package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizer_Parse(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load Europe/Berlin: %v", err)
	}
	n := NewNormalizer(berlin)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "z suffix is utc",
			input: "2024-01-01T10:00:00Z",
			want:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "explicit offset converts to utc",
			input: "2024-01-01T10:00:00+02:00",
			want:  time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "naive input uses configured zone",
			input: "2024-07-01T10:00:00",
			want:  time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), // CEST is UTC+2
		},
		{
			name:  "date only",
			input: "2024-01-15",
			want:  time.Date(2024, 1, 14, 23, 0, 0, 0, time.UTC), // CET is UTC+1
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := n.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("Parse(%q) location = %v, want UTC", tt.input, got.Location())
			}
		})
	}
}

func TestNormalizer_Parse_Invalid(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(time.UTC)
	for _, input := range []string{"", "   ", "yesterday", "2024-13-40T99:00:00Z"} {
		if _, err := n.Parse(input); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidTimestamp", input, err)
		}
	}
}

func TestFormat_AlwaysZSuffixed(t *testing.T) {
	t.Parallel()

	jst := time.FixedZone("JST", 9*60*60)
	got := Format(time.Date(2024, 3, 14, 9, 0, 0, 0, jst))
	if got != "2024-03-14T00:00:00Z" {
		t.Errorf("Format = %q, want 2024-03-14T00:00:00Z", got)
	}
}

func TestNormalizer_RoundTripIsStable(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(time.UTC)
	inputs := []string{
		"2024-01-01T10:00:00Z",
		"2024-01-01T10:00:00+05:30",
		"2024-01-01T10:00:00",
	}
	for _, input := range inputs {
		first, err := n.Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		second, err := n.Parse(Format(first))
		if err != nil {
			t.Fatalf("reparse of %q: %v", Format(first), err)
		}
		if !first.Equal(second) {
			t.Errorf("round trip of %q drifted: %s != %s", input, first, second)
		}
		if Format(first) != Format(second) {
			t.Errorf("formatted round trip of %q drifted", input)
		}
	}
}

func TestResolveLocation_PrefersExplicitSetting(t *testing.T) {
	loc := ResolveLocation("Asia/Tokyo")
	if loc.String() != "Asia/Tokyo" {
		t.Errorf("ResolveLocation = %v, want Asia/Tokyo", loc)
	}
}

func TestResolveLocation_FallsBackOnUnknownZone(t *testing.T) {
	// An unknown explicit zone must not fail resolution outright.
	if loc := ResolveLocation("Not/AZone"); loc == nil {
		t.Fatal("ResolveLocation returned nil")
	}
}
