package schedule

import (
	"fmt"
	"time"
)

// Status is the eligibility of a medicine for a given day
type Status struct {
	Active bool
	Badge  string
}

// BadgeToday marks a recurring medicine that is due on the evaluated day
const BadgeToday = "TODAY"

// CycleStatus evaluates whether a medicine is due on the given day and
// which countdown badge to show. It is pure: "today" always comes in as an
// argument so the caller can re-evaluate after midnight in a long-lived
// process instead of caching a stale answer.
func CycleStatus(m Medicine, today time.Time) Status {
	switch rec := m.Recurrence.(type) {
	case DayCycle:
		return dayCycleStatus(rec, today)
	case WeekdayCycle:
		return weekdayCycleStatus(rec, today)
	default:
		return Status{Active: true}
	}
}

// dayCycleStatus computes the D-n countdown for a fixed-period cycle.
// The remainder is normalized into [0, period) so a start date in the
// future counts down to the first dose instead of going negative.
func dayCycleStatus(c DayCycle, today time.Time) Status {
	diffDays := daysBetween(midnight(c.Start), midnight(today))

	remainder := diffDays % c.PeriodDays
	if remainder < 0 {
		remainder += c.PeriodDays
	}

	if remainder == 0 {
		return Status{Active: true, Badge: BadgeToday}
	}

	daysLeft := (c.PeriodDays - remainder) % c.PeriodDays
	return Status{Badge: fmt.Sprintf("D-%d", daysLeft)}
}

// weekdayCycleStatus computes the countdown to the next target weekday
func weekdayCycleStatus(c WeekdayCycle, today time.Time) Status {
	diff := (int(c.Target) - int(today.Weekday()) + 7) % 7
	if diff == 0 {
		return Status{Active: true, Badge: BadgeToday}
	}
	return Status{Badge: fmt.Sprintf("D-%d", diff)}
}

// midnight truncates t to the start of its calendar day
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b, negative when b
// precedes a. Both arguments must already be midnights; going through
// Date components keeps DST transitions from shaving hours off the count.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Round(24*time.Hour) / (24 * time.Hour))
}
