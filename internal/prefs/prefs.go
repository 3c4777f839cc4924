// Package prefs holds the user's time-window preferences and decides whether
// a normalized slot is worth a notification.
//
// Preferences are modeled as data (a rule table keyed by day category) rather
// than branching logic, so new windows are a table edit and the matcher stays
// independently testable.
package prefs

import (
	"fmt"

	"github.com/hackneycourts/courtwatch/internal/slot"
)

// Interval is an allowed [Lo, Hi] window in minutes since midnight.
// A slot fits only when fully contained: Lo <= start and end <= Hi.
type Interval struct {
	Lo int
	Hi int
}

// Contains reports whether the [start, end) slot lies entirely inside the
// interval. Containment, not overlap: a slot spilling past either edge of
// every window is not bookable time the user wants.
func (iv Interval) Contains(start, end int) bool {
	return iv.Lo <= start && end <= iv.Hi
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s-%s", slot.MinutesToClock(iv.Lo), slot.MinutesToClock(iv.Hi))
}

// Rule is the preference entry for one day category.
type Rule struct {
	Category    slot.DayCategory
	Intervals   []Interval
	MaxDuration int // minutes; 0 means uncapped
}

// RuleSet is the full preference table, read-only after startup.
type RuleSet struct {
	rules map[slot.DayCategory]Rule
}

// NewRuleSet builds a rule set from explicit rules. Later rules for the same
// category replace earlier ones.
func NewRuleSet(rules ...Rule) *RuleSet {
	m := make(map[slot.DayCategory]Rule, len(rules))
	for _, r := range rules {
		m[r.Category] = r
	}
	return &RuleSet{rules: m}
}

// Default returns the standing preferences: Wednesday mornings and lunchtimes,
// weekday evenings, any weekend time up to two hours.
func Default() *RuleSet {
	return NewRuleSet(
		Rule{
			Category: slot.CategoryWednesday,
			Intervals: []Interval{
				{Lo: 8 * 60, Hi: 9 * 60},   // 08:00-09:00
				{Lo: 12 * 60, Hi: 14 * 60}, // 12:00-14:00
			},
			MaxDuration: 120,
		},
		Rule{
			Category:    slot.CategoryWeekday,
			Intervals:   []Interval{{Lo: 18 * 60, Hi: 22 * 60}}, // evenings
			MaxDuration: 120,
		},
		Rule{
			Category:    slot.CategoryWeekend,
			Intervals:   []Interval{{Lo: 8 * 60, Hi: 22 * 60}},
			MaxDuration: 120,
		},
	)
}

// Matches reports whether the slot satisfies any rule applicable to its day
// category. Wednesday slots are checked against the Wednesday rule first and
// the generic weekday rule as well, so an evening slot on a Wednesday still
// qualifies.
func (rs *RuleSet) Matches(s slot.NormalizedSlot) bool {
	for _, r := range rs.applicable(s.Category) {
		if r.matches(s) {
			return true
		}
	}
	return false
}

// applicable returns the rules to evaluate for a category, most specific
// first.
func (rs *RuleSet) applicable(cat slot.DayCategory) []Rule {
	var out []Rule
	if r, ok := rs.rules[cat]; ok {
		out = append(out, r)
	}
	if cat == slot.CategoryWednesday {
		if r, ok := rs.rules[slot.CategoryWeekday]; ok {
			out = append(out, r)
		}
	}
	return out
}

// matches applies one rule: the slot must sit inside some interval and, when
// the rule caps duration, not exceed the cap.
func (r Rule) matches(s slot.NormalizedSlot) bool {
	if r.MaxDuration > 0 && s.Duration > r.MaxDuration {
		return false
	}
	for _, iv := range r.Intervals {
		if iv.Contains(s.StartMinute, s.EndMinute) {
			return true
		}
	}
	return false
}
