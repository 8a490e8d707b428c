package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

const defaultMaxOccurrences = 5000

// Template is the reservation slice the expander operates on. Start and End
// are naive UTC; a non-empty Rule is an RRULE string anchored at Start.
type Template struct {
	ID         int64
	ResourceID int64
	Start      time.Time
	End        time.Time
	Rule       string
}

// Occurrence is one concrete interval materialized from a template.
type Occurrence struct {
	TemplateID int64
	ResourceID int64
	Start      time.Time
	End        time.Time
	Recurring  bool
}

// Outcome tags how an expansion was produced so telemetry can distinguish
// silent degradations from clean expansions.
type Outcome int

const (
	// OutcomeSingle means the template carries no rule.
	OutcomeSingle Outcome = iota
	// OutcomeExpanded means the rule parsed and generated the occurrences.
	OutcomeExpanded
	// OutcomeFallback means the rule failed to parse and the template was
	// degraded to its own single interval.
	OutcomeFallback
)

// Engine expands reservation templates into concrete occurrences.
type Engine struct {
	maxOccurrences int
}

// NewEngine constructs an Engine with the default expansion cap.
func NewEngine() *Engine {
	return &Engine{maxOccurrences: defaultMaxOccurrences}
}

// Expand materializes the occurrences of tpl intersecting the query window.
//
// A template without a rule yields exactly one occurrence equal to its own
// interval, regardless of the window; callers pre-filter one-off templates
// by their query. A recurring template yields one occurrence per generated
// start strictly within [windowStart, windowEnd), each keeping the
// template's duration. A malformed rule degrades to the single-occurrence
// fallback instead of failing the whole query.
func (e *Engine) Expand(tpl Template, windowStart, windowEnd time.Time) ([]Occurrence, Outcome) {
	if tpl.Rule == "" {
		return []Occurrence{e.single(tpl)}, OutcomeSingle
	}

	rule, err := rrule.StrToRRule(tpl.Rule)
	if err != nil {
		return []Occurrence{e.single(tpl)}, OutcomeFallback
	}
	rule.DTStart(tpl.Start.UTC())

	duration := tpl.End.Sub(tpl.Start)
	starts := rule.Between(windowStart.UTC(), windowEnd.UTC(), true)

	occurrences := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		// Between is boundary inclusive; the window end is exclusive.
		if !start.Before(windowEnd) {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			TemplateID: tpl.ID,
			ResourceID: tpl.ResourceID,
			Start:      start,
			End:        start.Add(duration),
			Recurring:  true,
		})
		if len(occurrences) >= e.cap() {
			break
		}
	}

	return occurrences, OutcomeExpanded
}

func (e *Engine) single(tpl Template) Occurrence {
	return Occurrence{
		TemplateID: tpl.ID,
		ResourceID: tpl.ResourceID,
		Start:      tpl.Start,
		End:        tpl.End,
		Recurring:  false,
	}
}

func (e *Engine) cap() int {
	if e == nil || e.maxOccurrences <= 0 {
		return defaultMaxOccurrences
	}
	return e.maxOccurrences
}
