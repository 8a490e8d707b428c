package timeutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrInvalidTimestamp indicates the input string is empty or not ISO 8601.
var ErrInvalidTimestamp = errors.New("timeutil: invalid timestamp")

// fallbackZone is consulted after the configured zone, the TZ environment
// variable and the system zone have all failed to resolve.
const fallbackZone = "Etc/UTC"

// naiveLayouts cover ISO 8601 forms without an offset. Fractional seconds
// are accepted by time.Parse without being present in the layout.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveLocation resolves the zone used for offset-less timestamps, once at
// process start. Resolution order: the explicit setting, the TZ environment
// variable, the system local zone, a fixed fallback zone, UTC.
func ResolveLocation(setting string) *time.Location {
	if name := strings.TrimSpace(setting); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if name := strings.TrimSpace(os.Getenv("TZ")); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if time.Local != nil {
		return time.Local
	}
	if loc, err := time.LoadLocation(fallbackZone); err == nil {
		return loc
	}
	return time.UTC
}

// Normalizer canonicalizes external timestamps to naive UTC: a time.Time in
// the UTC location with no offset information retained. All persisted and
// compared instants go through it.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer constructs a Normalizer interpreting offset-less input in loc.
// A nil loc falls back to UTC.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Location reports the zone used for offset-less input.
func (n *Normalizer) Location() *time.Location {
	if n == nil || n.loc == nil {
		return time.UTC
	}
	return n.loc
}

// Parse converts an ISO 8601 string to naive UTC. A trailing Z means UTC; an
// explicit offset is converted; input with no offset is interpreted in the
// configured zone and then converted.
func (n *Normalizer) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrInvalidTimestamp)
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, n.Location()); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// Format renders a naive UTC instant with an explicit Z suffix so consumers
// never have to guess the zone.
func Format(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
